package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/healthsites/localityd/internal/models"
)

// SchemaStore handles the attribute schema registry: domains, attribute
// keys, and per-domain specifications.
type SchemaStore struct {
	Base
}

// NewSchemaStore creates a new SchemaStore.
func NewSchemaStore(base Base) *SchemaStore {
	return &SchemaStore{Base: base}
}

// GetDomain looks up a domain by name.
func (s *SchemaStore) GetDomain(ctx context.Context, name string) (*models.Domain, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var d models.Domain

	err := s.Pool.QueryRow(ctx,
		"SELECT id, name, description FROM domains WHERE name = $1", name,
	).Scan(&d.ID, &d.Name, &d.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}

		return nil, fmt.Errorf("getting domain: %w", err)
	}

	return &d, nil
}

// getOrCreateAttribute resolves an attribute key to its id, creating the
// attribute under the caller's changeset when it does not exist yet.
// Keys are stored lower-cased; the caller normalizes before calling.
func getOrCreateAttribute(ctx context.Context, tx pgx.Tx, key string, changesetID int64) (int64, error) {
	var id int64

	err := tx.QueryRow(ctx, "SELECT id FROM attributes WHERE key = $1", key).Scan(&id)
	if err == nil {
		return id, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("looking up attribute: %w", err)
	}

	// Concurrent creators land on the same row via the upsert.
	err = tx.QueryRow(ctx,
		`INSERT INTO attributes (key, changeset_id) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		RETURNING id`,
		key, changesetID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating attribute: %w", err)
	}

	return id, nil
}

// EnsureSpecification registers an attribute within a domain, creating the
// attribute if needed. Schema evolution is itself an audited change: a new
// changeset is recorded unless the specification already exists with the
// requested required flag, in which case nothing is written.
func (s *SchemaStore) EnsureSpecification(
	ctx context.Context,
	req models.EnsureSpecificationRequest,
	actor string,
) (*models.Specification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensuring specification: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var domainID int64
	if err := tx.QueryRow(ctx, "SELECT id FROM domains WHERE name = $1", req.Domain).Scan(&domainID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}

		return nil, fmt.Errorf("looking up domain: %w", err)
	}

	existing := models.Specification{Domain: req.Domain, AttributeKey: req.Key, DomainID: domainID}

	err = tx.QueryRow(ctx,
		`SELECT s.id, s.required, s.changeset_id
		FROM specifications s JOIN attributes a ON a.id = s.attribute_id
		WHERE s.domain_id = $1 AND a.key = $2`,
		domainID, req.Key,
	).Scan(&existing.ID, &existing.Required, &existing.ChangesetID)

	switch {
	case err == nil:
		if existing.Required == req.Required {
			// Nothing changes, so no changeset is recorded.
			return &existing, nil
		}
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("looking up specification: %w", err)
	}

	changesetID, err := newChangeset(ctx, tx, actor)
	if err != nil {
		return nil, err
	}

	attributeID, err := getOrCreateAttribute(ctx, tx, req.Key, changesetID)
	if err != nil {
		return nil, err
	}

	spec := models.Specification{
		DomainID:     domainID,
		Domain:       req.Domain,
		AttributeKey: req.Key,
		Required:     req.Required,
		ChangesetID:  changesetID,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO specifications (domain_id, attribute_id, required, changeset_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (domain_id, attribute_id)
		DO UPDATE SET required = EXCLUDED.required, changeset_id = EXCLUDED.changeset_id
		RETURNING id`,
		domainID, attributeID, req.Required, changesetID,
	).Scan(&spec.ID)
	if err != nil {
		return nil, fmt.Errorf("upserting specification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing specification: %w", err)
	}

	return &spec, nil
}

// ListSpecifications returns all specifications of a domain, ordered by key.
func (s *SchemaStore) ListSpecifications(ctx context.Context, domain string) ([]models.Specification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT s.id, s.domain_id, d.name, a.key, s.required, s.changeset_id
		FROM specifications s
		JOIN domains d ON d.id = s.domain_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE d.name = $1
		ORDER BY a.key`,
		domain,
	)
	if err != nil {
		return nil, fmt.Errorf("querying specifications: %w", err)
	}
	defer rows.Close()

	specs := make([]models.Specification, 0, 16)

	for rows.Next() {
		var sp models.Specification
		if err := rows.Scan(&sp.ID, &sp.DomainID, &sp.Domain, &sp.AttributeKey, &sp.Required, &sp.ChangesetID); err != nil {
			return nil, fmt.Errorf("scanning specification row: %w", err)
		}

		specs = append(specs, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating specification rows: %w", err)
	}

	return specs, nil
}

// RequiredAttributes returns the keys of a domain's required specifications.
func (s *SchemaStore) RequiredAttributes(ctx context.Context, domain string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT a.key
		FROM specifications s
		JOIN domains d ON d.id = s.domain_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE d.name = $1 AND s.required
		ORDER BY a.key`,
		domain,
	)
	if err != nil {
		return nil, fmt.Errorf("querying required attributes: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0, 8)

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning required attribute: %w", err)
		}

		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating required attributes: %w", err)
	}

	return keys, nil
}

// SpecificationCount returns the live number of specifications in a domain.
// Locality completeness is computed against this count.
func (s *SchemaStore) SpecificationCount(ctx context.Context, domain string) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int

	err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM specifications s
		JOIN domains d ON d.id = s.domain_id
		WHERE d.name = $1`,
		domain,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting specifications: %w", err)
	}

	return count, nil
}
