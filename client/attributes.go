package client

import "context"

// AttributeService handles the attribute registry endpoints.
type AttributeService struct {
	c *Client
}

// attributeListResponse wraps the attribute list response.
type attributeListResponse struct {
	Attributes []Specification `json:"attributes"`
}

// List returns all attribute specifications of the service domain.
func (s *AttributeService) List(ctx context.Context) ([]Specification, error) {
	var resp attributeListResponse
	if err := s.c.get(ctx, "/api/v1/attributes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Attributes, nil
}

// Ensure registers an attribute, or confirms an existing registration.
// Requires an API key.
func (s *AttributeService) Ensure(ctx context.Context, req *EnsureSpecificationRequest) (*Specification, error) {
	var spec Specification
	if err := s.c.post(ctx, "/api/v1/attributes", req, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}
