package client

import (
	"context"
	"net/url"
)

// StatsService handles the statistics endpoints.
type StatsService struct {
	c *Client
}

// Get returns aggregate statistics, optionally filtered by country and tag.
func (s *StatsService) Get(ctx context.Context, country, tag string) (*Statistics, error) {
	params := url.Values{}
	if country != "" {
		params.Set("country", country)
	}
	if tag != "" {
		params.Set("tag", tag)
	}
	var stats Statistics
	if err := s.c.get(ctx, "/api/v1/statistics", params, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Simple returns the lightweight count and completeness pair.
func (s *StatsService) Simple(ctx context.Context, country string) (*SimpleStatistic, error) {
	params := url.Values{}
	if country != "" {
		params.Set("country", country)
	}
	var stat SimpleStatistic
	if err := s.c.get(ctx, "/api/v1/statistics/simple", params, &stat); err != nil {
		return nil, err
	}
	return &stat, nil
}
