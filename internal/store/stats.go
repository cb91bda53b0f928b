package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/metrics"
	"github.com/healthsites/localityd/internal/models"
)

// StatsStore runs the aggregate queries behind the statistics endpoints.
// All methods are pure reads. A nil id or uuid slice means the whole
// dataset; an empty non-nil slice means an empty locality set.
type StatsStore struct {
	Base
}

// NewStatsStore creates a new StatsStore.
func NewStatsStore(base Base) *StatsStore {
	return &StatsStore{Base: base}
}

// LocalityRef identifies one locality across the live and archive tables.
type LocalityRef struct {
	ID    int64
	UUID  string
	Point geo.Point
}

// LocalityRefs returns id, uuid, and point for every locality, optionally
// restricted to those carrying a tag, ordered by id.
func (s *StatsStore) LocalityRefs(ctx context.Context, tag string) ([]LocalityRef, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := "SELECT l.id, l.uuid, l.lon, l.lat FROM localities l"
	args := []any{}

	if tag != "" {
		query += " WHERE EXISTS (SELECT 1 FROM tags t WHERE t.locality_id = l.id AND t.tag = $1)"
		args = append(args, strings.ToLower(tag))
	}

	query += " ORDER BY l.id"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying locality refs: %w", err)
	}
	defer rows.Close()

	refs := make([]LocalityRef, 0, 256)

	for rows.Next() {
		var r LocalityRef
		if err := rows.Scan(&r.ID, &r.UUID, &r.Point.Lon, &r.Point.Lat); err != nil {
			return nil, fmt.Errorf("scanning locality ref: %w", err)
		}

		refs = append(refs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locality refs: %w", err)
	}

	return refs, nil
}

// CountLocalities returns the total number of localities.
func (s *StatsStore) CountLocalities(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM localities").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting localities: %w", err)
	}

	metrics.LocalityCount.Set(float64(count))

	return count, nil
}

// CategoryCounts counts localities per facility category, matching the
// "type" attribute value case-insensitively.
func (s *StatsStore) CategoryCounts(ctx context.Context, ids []int64) (models.CategoryCounts, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT lower(v.data), COUNT(*) FROM locality_values v
		JOIN specifications s ON s.id = v.specification_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE a.key = 'type'`
	args := []any{}

	if ids != nil {
		query += " AND v.locality_id = ANY($1)"
		args = append(args, ids)
	}

	query += " GROUP BY 1"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return models.CategoryCounts{}, fmt.Errorf("querying category counts: %w", err)
	}
	defer rows.Close()

	var counts models.CategoryCounts

	for rows.Next() {
		var (
			category string
			n        int
		)

		if err := rows.Scan(&category, &n); err != nil {
			return models.CategoryCounts{}, fmt.Errorf("scanning category count: %w", err)
		}

		switch category {
		case "hospital":
			counts.Hospital = n
		case "clinic":
			counts.MedicalClinic = n
		case "orthopaedic":
			counts.OrthopaedicClinic = n
		}
	}

	if err := rows.Err(); err != nil {
		return models.CategoryCounts{}, fmt.Errorf("iterating category counts: %w", err)
	}

	return counts, nil
}

// ValueCounts returns the non-empty value count per locality. Localities
// with no values at all are present with a zero count.
func (s *StatsStore) ValueCounts(ctx context.Context, ids []int64) (map[int64]int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT l.id, COUNT(v.id) FILTER (WHERE v.data <> '')
		FROM localities l
		LEFT JOIN locality_values v ON v.locality_id = l.id`
	args := []any{}

	if ids != nil {
		query += " WHERE l.id = ANY($1)"
		args = append(args, ids)
	}

	query += " GROUP BY l.id"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying value counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int, 256)

	for rows.Next() {
		var (
			id int64
			n  int
		)

		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning value count: %w", err)
		}

		counts[id] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating value counts: %w", err)
	}

	return counts, nil
}

// RecentUpdates returns the most recent distinct (changed_at, actor, mode)
// archive groups, newest first. When a group touches exactly one locality
// the entry carries that locality's uuid and name.
func (s *StatsStore) RecentUpdates(ctx context.Context, uuids []string, limit int) ([]models.RecentUpdate, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying recent updates: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	query := `SELECT changed_at, actor, mode, COUNT(*),
			CASE WHEN COUNT(DISTINCT locality_uuid) = 1 THEN MIN(locality_uuid) ELSE '' END
		FROM (
			SELECT la.changed_at, c.actor, la.mode, la.locality_uuid
			FROM locality_archive la JOIN changesets c ON c.id = la.changeset_id
			UNION ALL
			SELECT va.changed_at, c.actor, va.mode, va.locality_uuid
			FROM value_archive va JOIN changesets c ON c.id = va.changeset_id
		) u`
	args := []any{}
	argIdx := 1

	if uuids != nil {
		query += fmt.Sprintf(" WHERE locality_uuid = ANY($%d)", argIdx)
		args = append(args, uuids)
		argIdx++
	}

	query += fmt.Sprintf(" GROUP BY changed_at, actor, mode ORDER BY changed_at DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent update groups: %w", err)
	}

	updates := make([]models.RecentUpdate, 0, limit)

	for rows.Next() {
		var u models.RecentUpdate
		if err := rows.Scan(&u.DateApplied, &u.Actor, &u.Mode, &u.DataCount, &u.LocalityUUID); err != nil {
			rows.Close()

			return nil, fmt.Errorf("scanning recent update group: %w", err)
		}

		updates = append(updates, u)
	}

	if err := rows.Err(); err != nil {
		rows.Close()

		return nil, fmt.Errorf("iterating recent update groups: %w", err)
	}

	rows.Close()

	for i := range updates {
		if updates[i].LocalityUUID == "" {
			continue
		}

		name, err := localityName(ctx, tx, updates[i].LocalityUUID)
		if err != nil {
			return nil, err
		}

		updates[i].Locality = name
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing recent updates: %w", err)
	}

	return updates, nil
}

// localityName resolves a uuid to its live "name" attribute value, empty
// when the locality is gone or nameless.
func localityName(ctx context.Context, tx pgx.Tx, localityUUID string) (string, error) {
	var name string

	err := tx.QueryRow(ctx,
		`SELECT v.data FROM locality_values v
		JOIN localities l ON l.id = v.locality_id
		JOIN specifications s ON s.id = v.specification_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE l.uuid = $1 AND a.key = 'name'`,
		localityUUID,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("resolving locality name: %w", err)
	}

	return name, nil
}
