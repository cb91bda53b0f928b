package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/models"
)

// SchemaStore is the data-access interface SchemaService depends on.
type SchemaStore interface {
	EnsureSpecification(ctx context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error)
	ListSpecifications(ctx context.Context, domain string) ([]models.Specification, error)
	SpecificationCount(ctx context.Context, domain string) (int, error)
	RequiredAttributes(ctx context.Context, domain string) ([]string, error)
}

// SchemaService handles the audited attribute registry operations.
type SchemaService struct {
	store       SchemaStore
	auditWorker AuditEnqueuer
	domain      string
	log         *logrus.Logger
}

// NewSchemaService creates a SchemaService.
func NewSchemaService(store SchemaStore, auditWorker AuditEnqueuer, domain string, log *logrus.Logger) *SchemaService {
	return &SchemaService{store: store, auditWorker: auditWorker, domain: domain, log: log}
}

// Ensure registers an attribute within a domain. The default domain is
// assumed when the request names none.
func (s *SchemaService) Ensure(ctx context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error) {
	if req.Domain == "" {
		req.Domain = s.domain
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	spec, err := s.store.EnsureSpecification(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	auditAsync(s.auditWorker, "specification.ensure", "", actor, spec.ChangesetID, map[string]any{
		"domain":   spec.Domain,
		"key":      spec.AttributeKey,
		"required": spec.Required,
	})

	return spec, nil
}

// List returns the default domain's specifications.
func (s *SchemaService) List(ctx context.Context) ([]models.Specification, error) {
	return s.store.ListSpecifications(ctx, s.domain)
}

// RequiredAttributes exposes the required keys of the default domain.
func (s *SchemaService) RequiredAttributes(ctx context.Context) ([]string, error) {
	return s.store.RequiredAttributes(ctx, s.domain)
}
