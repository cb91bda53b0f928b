package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
)

// recentUpdatesPerLocality caps the change feed on the detail endpoint.
const recentUpdatesPerLocality = 10

// maxSearchResults caps autocomplete result sets.
const maxSearchResults = 10

// GetLocality returns the full detail of a locality: current values, sorted
// tags, completeness against the domain's live specification count, and the
// most recent changes from the archives.
func (s *LocalityStore) GetLocality(ctx context.Context, localityUUID string) (*models.LocalityDetail, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting locality: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	detail := &models.LocalityDetail{}
	detail.UUID = localityUUID

	var domainID int64

	err = tx.QueryRow(ctx,
		`SELECT l.id, l.upstream_id, l.domain_id, d.name, l.lon, l.lat, l.changeset_id
		FROM localities l JOIN domains d ON d.id = l.domain_id
		WHERE l.uuid = $1`,
		localityUUID,
	).Scan(&detail.ID, &detail.UpstreamID, &domainID, &detail.Domain,
		&detail.Point.Lon, &detail.Point.Lat, &detail.ChangesetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrLocalityNotFound
		}

		return nil, fmt.Errorf("scanning locality: %w", err)
	}

	detail.Values, err = liveValues(ctx, tx, detail.ID)
	if err != nil {
		return nil, err
	}

	tagSet, err := liveTags(ctx, tx, detail.ID)
	if err != nil {
		return nil, err
	}

	detail.Tags = make([]string, 0, len(tagSet))
	for tag := range tagSet {
		detail.Tags = append(detail.Tags, tag)
	}

	sort.Strings(detail.Tags)

	var specCount int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM specifications WHERE domain_id = $1", domainID,
	).Scan(&specCount); err != nil {
		return nil, fmt.Errorf("counting specifications: %w", err)
	}

	nonEmpty := 0

	for _, data := range detail.Values {
		if data != "" {
			nonEmpty++
		}
	}

	detail.Completeness = models.Completeness(nonEmpty, specCount)

	detail.Updates, err = recentUpdates(ctx, tx, localityUUID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing get locality: %w", err)
	}

	return detail, nil
}

// recentUpdates returns the most recent archive change groups for one
// locality, newest first.
func recentUpdates(ctx context.Context, tx pgx.Tx, localityUUID string) ([]models.UpdateInfo, error) {
	rows, err := tx.Query(ctx,
		`SELECT changed_at, actor, mode FROM (
			SELECT la.changed_at, c.actor, la.mode
			FROM locality_archive la JOIN changesets c ON c.id = la.changeset_id
			WHERE la.locality_uuid = $1
			UNION ALL
			SELECT va.changed_at, c.actor, va.mode
			FROM value_archive va JOIN changesets c ON c.id = va.changeset_id
			WHERE va.locality_uuid = $1
		) u
		GROUP BY changed_at, actor, mode
		ORDER BY changed_at DESC
		LIMIT $2`,
		localityUUID, recentUpdatesPerLocality,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent updates: %w", err)
	}
	defer rows.Close()

	updates := make([]models.UpdateInfo, 0, recentUpdatesPerLocality)

	for rows.Next() {
		var u models.UpdateInfo
		if err := rows.Scan(&u.ChangedAt, &u.Actor, &u.Mode); err != nil {
			return nil, fmt.Errorf("scanning recent update: %w", err)
		}

		updates = append(updates, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent updates: %w", err)
	}

	return updates, nil
}

// PointsInBBox returns the map points inside a bounding box, optionally
// restricted to localities carrying a tag, ordered by locality id so
// clustering is deterministic.
func (s *LocalityStore) PointsInBBox(ctx context.Context, box geo.BBox, tag string) ([]geo.ClusterPoint, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT l.uuid, l.lon, l.lat FROM localities l
		WHERE l.lon BETWEEN $1 AND $2 AND l.lat BETWEEN $3 AND $4`
	args := []any{box.MinLon, box.MaxLon, box.MinLat, box.MaxLat}

	if tag != "" {
		query += " AND EXISTS (SELECT 1 FROM tags t WHERE t.locality_id = l.id AND t.tag = $5)"
		args = append(args, tag)
	}

	query += " ORDER BY l.id"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying points in bbox: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// PointsInPolygon returns the map points inside a polygon, optionally
// restricted by tag. The SQL query prefilters on the polygon's bounding
// box; exact containment runs in Go.
func (s *LocalityStore) PointsInPolygon(ctx context.Context, poly geo.Polygon, tag string) ([]geo.ClusterPoint, error) {
	candidates, err := s.PointsInBBox(ctx, poly.BBox(), tag)
	if err != nil {
		return nil, err
	}

	points := make([]geo.ClusterPoint, 0, len(candidates))

	for _, p := range candidates {
		if poly.Contains(p.Point) {
			points = append(points, p)
		}
	}

	return points, nil
}

// scanPoints collects (uuid, lon, lat) rows into cluster points.
func scanPoints(rows pgx.Rows) ([]geo.ClusterPoint, error) {
	points := make([]geo.ClusterPoint, 0, 256)

	for rows.Next() {
		var p geo.ClusterPoint
		if err := rows.Scan(&p.UUID, &p.Point.Lon, &p.Point.Lat); err != nil {
			return nil, fmt.Errorf("scanning point row: %w", err)
		}

		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating point rows: %w", err)
	}

	return points, nil
}

// SearchNames returns distinct locality names starting with the prefix,
// case-insensitively.
func (s *LocalityStore) SearchNames(ctx context.Context, prefix string) ([]string, error) {
	return s.searchStrings(ctx,
		`SELECT DISTINCT v.data FROM locality_values v
		JOIN specifications s ON s.id = v.specification_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE a.key = 'name' AND v.data ILIKE $1 || '%'
		ORDER BY v.data
		LIMIT $2`,
		prefix,
	)
}

// SearchTags returns distinct tags starting with the prefix. Tags are
// stored lower-cased so the prefix is lowered in SQL.
func (s *LocalityStore) SearchTags(ctx context.Context, prefix string) ([]string, error) {
	return s.searchStrings(ctx,
		`SELECT DISTINCT tag FROM tags
		WHERE tag LIKE lower($1) || '%'
		ORDER BY tag
		LIMIT $2`,
		prefix,
	)
}

// SearchCountries returns country names starting with the prefix.
func (s *LocalityStore) SearchCountries(ctx context.Context, prefix string) ([]string, error) {
	return s.searchStrings(ctx,
		`SELECT name FROM countries
		WHERE name ILIKE $1 || '%'
		ORDER BY name
		LIMIT $2`,
		prefix,
	)
}

// searchStrings runs a two-arg (prefix, limit) autocomplete query.
func (s *LocalityStore) searchStrings(ctx context.Context, query, prefix string) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, query, prefix, maxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("querying autocomplete: %w", err)
	}
	defer rows.Close()

	results := make([]string, 0, maxSearchResults)

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning autocomplete row: %w", err)
		}

		results = append(results, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating autocomplete rows: %w", err)
	}

	return results, nil
}
