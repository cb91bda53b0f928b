package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/healthsites/localityd/internal/models"
)

// newChangeset inserts one changeset row for a logical edit request.
// Every sub-write of the request references the returned id. Changeset
// rows are write-once. Package-level so every store can call it within
// its own transaction.
func newChangeset(ctx context.Context, tx pgx.Tx, actor string) (int64, error) {
	var id int64

	err := tx.QueryRow(ctx,
		"INSERT INTO changesets (actor) VALUES ($1) RETURNING id",
		actor,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting changeset: %w", err)
	}

	return id, nil
}

// appendLocalityArchive writes an immutable locality snapshot. The version
// is computed inside the caller's transaction so versions per uuid are
// strictly increasing and gapless from 1.
func appendLocalityArchive(
	ctx context.Context,
	tx pgx.Tx,
	loc *models.Locality,
	domainID int64,
	mode models.Mode,
	changesetID int64,
) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO locality_archive (locality_uuid, version, mode, lon, lat, domain_id, changeset_id)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, $3, $4, $5, $6
		FROM locality_archive WHERE locality_uuid = $1`,
		loc.UUID, mode, loc.Point.Lon, loc.Point.Lat, domainID, changesetID,
	)
	if err != nil {
		return fmt.Errorf("appending locality archive: %w", err)
	}

	return nil
}

// appendValueArchive writes an immutable snapshot of one attribute value.
// Versions per (uuid, key) are computed in-tx, same as the locality archive.
func appendValueArchive(
	ctx context.Context,
	tx pgx.Tx,
	localityUUID, attributeKey, data string,
	mode models.Mode,
	changesetID int64,
) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO value_archive (locality_uuid, attribute_key, version, mode, data, changeset_id)
		SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3, $4, $5
		FROM value_archive WHERE locality_uuid = $1 AND attribute_key = $2`,
		localityUUID, attributeKey, mode, data, changesetID,
	)
	if err != nil {
		return fmt.Errorf("appending value archive: %w", err)
	}

	return nil
}
