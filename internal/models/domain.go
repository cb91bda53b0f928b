package models

import "strings"

// Domain is a named deployment namespace (e.g. "Health"). Each domain owns
// its own set of attribute specifications.
type Domain struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Attribute is a global attribute key, created through the schema registry.
// Keys are stored lower-cased.
type Attribute struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	ChangesetID int64  `json:"changeset_id"`
}

// Specification binds an attribute to a domain with a required flag.
// At most one specification exists per (domain, attribute) pair.
type Specification struct {
	ID           int64  `json:"id"`
	DomainID     int64  `json:"-"`
	Domain       string `json:"domain"`
	AttributeKey string `json:"key"`
	Required     bool   `json:"required"`
	ChangesetID  int64  `json:"changeset_id"`
}

// EnsureSpecificationRequest is the payload of the administrative operation
// that registers an attribute within a domain. Schema evolution is itself
// a versioned, audited change.
type EnsureSpecificationRequest struct {
	Domain   string `json:"domain"`
	Key      string `json:"key"`
	Required bool   `json:"required"`
}

// Validate normalizes and checks the request.
func (r *EnsureSpecificationRequest) Validate() error {
	r.Key = strings.ToLower(strings.TrimSpace(r.Key))
	r.Domain = strings.TrimSpace(r.Domain)

	if r.Domain == "" {
		return &ValidationError{Key: "domain"}
	}

	if r.Key == "" {
		return &ValidationError{Key: "key"}
	}

	if len(r.Key) > 100 {
		return &ValidationError{Key: "key"}
	}

	return nil
}
