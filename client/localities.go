package client

import (
	"context"
	"net/url"
	"strconv"
)

// LocalityService handles locality reads, edits, and history.
type LocalityService struct {
	c *Client
}

// historyResponse wraps the paginated locality history response.
type historyResponse struct {
	History []LocalityArchive `json:"history"`
	HasMore bool              `json:"has_more"`
}

// valueHistoryResponse wraps the paginated value history response.
type valueHistoryResponse struct {
	History []ValueArchive `json:"history"`
	HasMore bool           `json:"has_more"`
}

// MapLayer returns clustered markers for a viewport. Zoom, BBox, and the
// icon dimensions are required by the server; unset icon dimensions fall
// back to the standard 48x46 marker footprint. Geoname switches the
// viewport to a named country polygon.
func (s *LocalityService) MapLayer(ctx context.Context, opts *MapLayerOptions) ([]Cluster, error) {
	params := url.Values{}
	if opts != nil {
		params.Set("zoom", strconv.Itoa(opts.Zoom))
		if opts.BBox != "" {
			params.Set("bbox", opts.BBox)
		}
		w, h := opts.IconWidth, opts.IconHeight
		if w <= 0 || h <= 0 {
			w, h = 48, 46
		}
		params.Set("iconsize", strconv.Itoa(w)+","+strconv.Itoa(h))
		if opts.Geoname != "" {
			params.Set("geoname", opts.Geoname)
		}
		if opts.Tag != "" {
			params.Set("tag", opts.Tag)
		}
	}
	var clusters []Cluster
	if err := s.c.get(ctx, "/api/v1/localities", params, &clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

// Get returns the full detail of one locality by uuid.
func (s *LocalityService) Get(ctx context.Context, localityUUID string) (*LocalityDetail, error) {
	var detail LocalityDetail
	if err := s.c.get(ctx, "/api/v1/localities/"+url.PathEscape(localityUUID), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create submits a new locality. Requires an API key.
func (s *LocalityService) Create(ctx context.Context, sub *LocalitySubmission) (*Locality, error) {
	var loc Locality
	if err := s.c.post(ctx, "/api/v1/localities", sub, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// Update edits an existing locality. Submitting the live state unchanged
// succeeds without creating a new version. Requires an API key.
func (s *LocalityService) Update(ctx context.Context, localityUUID string, sub *LocalitySubmission) (*Locality, error) {
	var loc Locality
	if err := s.c.put(ctx, "/api/v1/localities/"+url.PathEscape(localityUUID), sub, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// History returns locality version snapshots, newest first.
func (s *LocalityService) History(ctx context.Context, localityUUID string, limit, offset int) ([]LocalityArchive, bool, error) {
	params := pageParams(limit, offset)
	var resp historyResponse
	if err := s.c.get(ctx, "/api/v1/localities/"+url.PathEscape(localityUUID)+"/history", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.History, resp.HasMore, nil
}

// ValueHistory returns attribute value snapshots for a locality, optionally
// narrowed to one attribute key.
func (s *LocalityService) ValueHistory(ctx context.Context, localityUUID, key string, limit, offset int) ([]ValueArchive, bool, error) {
	params := pageParams(limit, offset)
	if key != "" {
		params.Set("key", key)
	}
	var resp valueHistoryResponse
	if err := s.c.get(ctx, "/api/v1/localities/"+url.PathEscape(localityUUID)+"/values/history", params, &resp); err != nil {
		return nil, false, err
	}
	return resp.History, resp.HasMore, nil
}

func pageParams(limit, offset int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	return params
}
