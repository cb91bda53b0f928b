package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/healthsites/localityd/internal/models"
)

// LocalityStore handles locality create and update operations. Every edit
// is a single transaction covering the changeset, the live rows, and the
// archive snapshots.
type LocalityStore struct {
	Base
}

// NewLocalityStore creates a new LocalityStore.
func NewLocalityStore(base Base) *LocalityStore {
	return &LocalityStore{Base: base}
}

// newUUID returns a fresh locality uuid: 32 lower-case hex characters.
func newUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// loadSpecIDs returns the attribute key to specification id mapping for a
// domain, within the caller's transaction.
func loadSpecIDs(ctx context.Context, tx pgx.Tx, domainID int64) (map[string]int64, error) {
	rows, err := tx.Query(ctx,
		`SELECT a.key, s.id FROM specifications s
		JOIN attributes a ON a.id = s.attribute_id
		WHERE s.domain_id = $1`,
		domainID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying domain specifications: %w", err)
	}
	defer rows.Close()

	specIDs := make(map[string]int64, 32)

	for rows.Next() {
		var (
			key string
			id  int64
		)

		if err := rows.Scan(&key, &id); err != nil {
			return nil, fmt.Errorf("scanning specification id: %w", err)
		}

		specIDs[key] = id
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating specification ids: %w", err)
	}

	return specIDs, nil
}

// checkKnownKeys rejects submissions carrying attribute keys that have no
// specification in the target domain. Keys are checked in sorted order so
// the reported key is deterministic.
func checkKnownKeys(values map[string]string, specIDs map[string]int64) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if _, ok := specIDs[k]; !ok {
			return &models.ValidationError{Key: k}
		}
	}

	return nil
}

// isDuplicateKey reports whether err is a Postgres unique violation.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateLocality inserts a new locality with its values and tags, recording
// the version 1 archive snapshots, all under one fresh changeset.
func (s *LocalityStore) CreateLocality(
	ctx context.Context,
	domain string,
	sub *models.LocalitySubmission,
	actor string,
) (*models.Locality, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating locality: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	var domainID int64
	if err := tx.QueryRow(ctx, "SELECT id FROM domains WHERE name = $1", domain).Scan(&domainID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDomainNotFound
		}

		return nil, fmt.Errorf("looking up domain: %w", err)
	}

	specIDs, err := loadSpecIDs(ctx, tx, domainID)
	if err != nil {
		return nil, err
	}

	if err := checkKnownKeys(sub.Values, specIDs); err != nil {
		return nil, err
	}

	changesetID, err := newChangeset(ctx, tx, actor)
	if err != nil {
		return nil, err
	}

	loc := &models.Locality{
		UUID:        newUUID(),
		Domain:      domain,
		Point:       sub.Point(),
		ChangesetID: changesetID,
	}
	loc.UpstreamID = "web" + models.UpstreamSeparator + loc.UUID

	err = tx.QueryRow(ctx,
		`INSERT INTO localities (uuid, upstream_id, domain_id, lon, lat, changeset_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		loc.UUID, loc.UpstreamID, domainID, loc.Point.Lon, loc.Point.Lat, changesetID,
	).Scan(&loc.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, models.ErrDuplicateKey
		}

		return nil, fmt.Errorf("inserting locality: %w", err)
	}

	keys := make([]string, 0, len(sub.Values))
	for k := range sub.Values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, key := range keys {
		data := strings.TrimSpace(sub.Values[key])
		if data == "" {
			continue
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO locality_values (locality_id, specification_id, data, changeset_id)
			VALUES ($1, $2, $3, $4)`,
			loc.ID, specIDs[key], data, changesetID,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting value %q: %w", key, err)
		}

		if err := appendValueArchive(ctx, tx, loc.UUID, key, data, models.ModeCreate, changesetID); err != nil {
			return nil, err
		}
	}

	for _, tag := range sub.TagSet() {
		_, err := tx.Exec(ctx,
			"INSERT INTO tags (locality_id, tag, changeset_id) VALUES ($1, $2, $3)",
			loc.ID, tag, changesetID,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting tag %q: %w", tag, err)
		}
	}

	if err := appendLocalityArchive(ctx, tx, loc, domainID, models.ModeCreate, changesetID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing create locality: %w", err)
	}

	return loc, nil
}

// liveValues returns the current attribute data of a locality keyed by
// attribute key, within the caller's transaction.
func liveValues(ctx context.Context, tx pgx.Tx, localityID int64) (map[string]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT a.key, v.data FROM locality_values v
		JOIN specifications s ON s.id = v.specification_id
		JOIN attributes a ON a.id = s.attribute_id
		WHERE v.locality_id = $1`,
		localityID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying live values: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 32)

	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scanning live value: %w", err)
		}

		values[key] = data
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating live values: %w", err)
	}

	return values, nil
}

// liveTags returns a locality's current tags within the caller's transaction.
func liveTags(ctx context.Context, tx pgx.Tx, localityID int64) (map[string]bool, error) {
	rows, err := tx.Query(ctx, "SELECT tag FROM tags WHERE locality_id = $1", localityID)
	if err != nil {
		return nil, fmt.Errorf("querying live tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]bool, 8)

	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning live tag: %w", err)
		}

		tags[tag] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating live tags: %w", err)
	}

	return tags, nil
}

// valueChange is one pending value mutation computed by the dirty check.
type valueChange struct {
	key  string
	data string
	mode models.Mode
}

// diffValues computes the value mutations a submission implies: new keys
// insert, changed data updates, and submitted empty strings delete a live
// value. Keys absent from the submission are left untouched. Changes come
// back in sorted key order.
func diffValues(current, submitted map[string]string) []valueChange {
	keys := make([]string, 0, len(submitted))
	for k := range submitted {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	changes := make([]valueChange, 0, len(keys))

	for _, key := range keys {
		data := strings.TrimSpace(submitted[key])
		cur, exists := current[key]

		switch {
		case data == "" && exists:
			changes = append(changes, valueChange{key: key, data: cur, mode: models.ModeDelete})
		case data == "":
			// Empty value for a key that was never set: nothing to do.
		case !exists:
			changes = append(changes, valueChange{key: key, data: data, mode: models.ModeCreate})
		case cur != data:
			changes = append(changes, valueChange{key: key, data: data, mode: models.ModeUpdate})
		}
	}

	return changes
}

// UpdateLocality applies a submission to an existing locality: geometry,
// value upserts and deletes, and tag reconciliation, each archived under a
// single new changeset. A submission that changes nothing writes nothing,
// not even a changeset row; the second return value reports whether any
// write happened.
func (s *LocalityStore) UpdateLocality(
	ctx context.Context,
	localityUUID string,
	sub *models.LocalitySubmission,
	actor string,
) (*models.Locality, bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("updating locality: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	loc := &models.Locality{UUID: localityUUID}

	var domainID int64

	err = tx.QueryRow(ctx,
		`SELECT l.id, l.upstream_id, l.domain_id, d.name, l.lon, l.lat, l.changeset_id
		FROM localities l JOIN domains d ON d.id = l.domain_id
		WHERE l.uuid = $1
		FOR UPDATE OF l`,
		localityUUID,
	).Scan(&loc.ID, &loc.UpstreamID, &domainID, &loc.Domain, &loc.Point.Lon, &loc.Point.Lat, &loc.ChangesetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, models.ErrLocalityNotFound
		}

		return nil, false, fmt.Errorf("locking locality: %w", err)
	}

	specIDs, err := loadSpecIDs(ctx, tx, domainID)
	if err != nil {
		return nil, false, err
	}

	if err := checkKnownKeys(sub.Values, specIDs); err != nil {
		return nil, false, err
	}

	current, err := liveValues(ctx, tx, loc.ID)
	if err != nil {
		return nil, false, err
	}

	currentTags, err := liveTags(ctx, tx, loc.ID)
	if err != nil {
		return nil, false, err
	}

	point := sub.Point()
	geomChanged := point.Lon != loc.Point.Lon || point.Lat != loc.Point.Lat
	changes := diffValues(current, sub.Values)

	newTags := sub.TagSet()
	addTags := make([]string, 0, len(newTags))
	keep := make(map[string]bool, len(newTags))

	for _, tag := range newTags {
		keep[tag] = true

		if !currentTags[tag] {
			addTags = append(addTags, tag)
		}
	}

	removeTags := make([]string, 0, len(currentTags))

	for tag := range currentTags {
		if !keep[tag] {
			removeTags = append(removeTags, tag)
		}
	}

	sort.Strings(removeTags)

	if !geomChanged && len(changes) == 0 && len(addTags) == 0 && len(removeTags) == 0 {
		return loc, false, nil
	}

	changesetID, err := newChangeset(ctx, tx, actor)
	if err != nil {
		return nil, false, err
	}

	loc.Point = point
	loc.ChangesetID = changesetID

	if geomChanged {
		_, err = tx.Exec(ctx,
			"UPDATE localities SET lon = $1, lat = $2, changeset_id = $3 WHERE id = $4",
			point.Lon, point.Lat, changesetID, loc.ID,
		)
	} else {
		_, err = tx.Exec(ctx,
			"UPDATE localities SET changeset_id = $1 WHERE id = $2",
			changesetID, loc.ID,
		)
	}

	if err != nil {
		return nil, false, fmt.Errorf("updating locality row: %w", err)
	}

	for _, c := range changes {
		if err := s.applyValueChange(ctx, tx, loc, specIDs[c.key], c, changesetID); err != nil {
			return nil, false, err
		}
	}

	for _, tag := range addTags {
		_, err := tx.Exec(ctx,
			"INSERT INTO tags (locality_id, tag, changeset_id) VALUES ($1, $2, $3)",
			loc.ID, tag, changesetID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("inserting tag %q: %w", tag, err)
		}
	}

	for _, tag := range removeTags {
		_, err := tx.Exec(ctx, "DELETE FROM tags WHERE locality_id = $1 AND tag = $2", loc.ID, tag)
		if err != nil {
			return nil, false, fmt.Errorf("deleting tag %q: %w", tag, err)
		}
	}

	if err := appendLocalityArchive(ctx, tx, loc, domainID, models.ModeUpdate, changesetID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("committing update locality: %w", err)
	}

	return loc, true, nil
}

// applyValueChange writes one value mutation and its archive snapshot.
func (s *LocalityStore) applyValueChange(
	ctx context.Context,
	tx pgx.Tx,
	loc *models.Locality,
	specID int64,
	c valueChange,
	changesetID int64,
) error {
	var err error

	switch c.mode {
	case models.ModeCreate:
		_, err = tx.Exec(ctx,
			`INSERT INTO locality_values (locality_id, specification_id, data, changeset_id)
			VALUES ($1, $2, $3, $4)`,
			loc.ID, specID, c.data, changesetID,
		)
	case models.ModeUpdate:
		_, err = tx.Exec(ctx,
			`UPDATE locality_values SET data = $1, changeset_id = $2
			WHERE locality_id = $3 AND specification_id = $4`,
			c.data, changesetID, loc.ID, specID,
		)
	case models.ModeDelete:
		_, err = tx.Exec(ctx,
			"DELETE FROM locality_values WHERE locality_id = $1 AND specification_id = $2",
			loc.ID, specID,
		)
	}

	if err != nil {
		return fmt.Errorf("applying value change for %q: %w", c.key, err)
	}

	return appendValueArchive(ctx, tx, loc.UUID, c.key, c.data, c.mode, changesetID)
}
