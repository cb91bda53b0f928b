package client

import (
	"context"
	"net/url"
)

// SearchService handles the autocomplete endpoints.
type SearchService struct {
	c *Client
}

// Localities completes locality names by prefix (minimum two characters).
func (s *SearchService) Localities(ctx context.Context, query string) ([]string, error) {
	return s.search(ctx, "/api/v1/search/localities", query)
}

// Tags completes tags by prefix.
func (s *SearchService) Tags(ctx context.Context, query string) ([]string, error) {
	return s.search(ctx, "/api/v1/search/tags", query)
}

// Countries completes country names by prefix.
func (s *SearchService) Countries(ctx context.Context, query string) ([]string, error) {
	return s.search(ctx, "/api/v1/search/countries", query)
}

func (s *SearchService) search(ctx context.Context, path, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	var results []string
	if err := s.c.get(ctx, path, params, &results); err != nil {
		return nil, err
	}
	return results, nil
}
