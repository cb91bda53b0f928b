package store

import (
	"context"
	"fmt"

	"github.com/healthsites/localityd/internal/models"
)

// HistoryStore reads the immutable archive tables.
type HistoryStore struct {
	Base
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(base Base) *HistoryStore {
	return &HistoryStore{Base: base}
}

// clampPage normalizes limit and offset for archive pagination.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}

	if limit > maxListLimit {
		limit = maxListLimit
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// LocalityHistory returns a locality's archive snapshots, newest version
// first, with has_more pagination. Unknown uuids (no archive rows at all)
// are reported as not found so callers can distinguish an empty page from
// a missing locality.
func (s *HistoryStore) LocalityHistory(
	ctx context.Context,
	localityUUID string,
	limit, offset int,
) ([]models.LocalityArchive, bool, error) {
	limit, offset = clampPage(limit, offset)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT la.id, la.locality_uuid, la.version, la.mode, la.lon, la.lat,
			la.changeset_id, c.actor, la.changed_at
		FROM locality_archive la
		JOIN changesets c ON c.id = la.changeset_id
		WHERE la.locality_uuid = $1
		ORDER BY la.version DESC
		LIMIT $2 OFFSET $3`,
		localityUUID, limit+1, offset,
	)
	if err != nil {
		return nil, false, fmt.Errorf("querying locality history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LocalityArchive, 0, limit+1)

	for rows.Next() {
		var e models.LocalityArchive

		if err := rows.Scan(
			&e.ID, &e.LocalityUUID, &e.Version, &e.Mode, &e.Lon, &e.Lat,
			&e.ChangesetID, &e.Actor, &e.ChangedAt,
		); err != nil {
			return nil, false, fmt.Errorf("scanning locality history row: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating locality history rows: %w", err)
	}

	if len(entries) == 0 && offset == 0 {
		var exists bool
		if err := s.Pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM locality_archive WHERE locality_uuid = $1)", localityUUID,
		).Scan(&exists); err != nil {
			return nil, false, fmt.Errorf("checking locality history existence: %w", err)
		}

		if !exists {
			return nil, false, models.ErrLocalityNotFound
		}
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	return entries, hasMore, nil
}

// ValueHistory returns a locality's value archive snapshots with optional
// attribute key filter, newest first.
func (s *HistoryStore) ValueHistory(
	ctx context.Context,
	localityUUID, attributeKey string,
	limit, offset int,
) ([]models.ValueArchive, bool, error) {
	limit, offset = clampPage(limit, offset)

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT va.id, va.locality_uuid, va.attribute_key, va.version, va.mode,
			va.data, va.changeset_id, va.changed_at
		FROM value_archive va
		WHERE va.locality_uuid = $1`
	args := []any{localityUUID}
	argIdx := 2

	if attributeKey != "" {
		query += fmt.Sprintf(" AND va.attribute_key = $%d", argIdx)
		args = append(args, attributeKey)
		argIdx++
	}

	query += " ORDER BY va.changed_at DESC, va.attribute_key, va.version DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit+1, offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("querying value history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.ValueArchive, 0, limit+1)

	for rows.Next() {
		var e models.ValueArchive

		if err := rows.Scan(
			&e.ID, &e.LocalityUUID, &e.AttributeKey, &e.Version, &e.Mode,
			&e.Data, &e.ChangesetID, &e.ChangedAt,
		); err != nil {
			return nil, false, fmt.Errorf("scanning value history row: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterating value history rows: %w", err)
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	return entries, hasMore, nil
}
