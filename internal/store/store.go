// Package store provides focused, single-concern data access stores
// for the locality platform.
//
// Each store owns one domain (localities, schema, statistics, history,
// countries) and embeds shared helpers (Pool, logger) via the Base
// struct. Stores never import each other. Shared transaction logic
// lives in this file or in changeset.go.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/dbpool"
	"github.com/healthsites/localityd/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// maxListLimit caps page sizes on history and search queries.
const maxListLimit = 200

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning read transaction: %w", err)
	}

	return tx, nil
}

// GetActorByAPIKey looks up an actor name by API key hash.
func (b *Base) GetActorByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	hash := sha256.Sum256([]byte(apiKey))
	apiKeyHash := hex.EncodeToString(hash[:])

	var actor string

	err := b.Pool.QueryRow(ctx, "SELECT name FROM actors WHERE api_key_hash = $1", apiKeyHash).Scan(&actor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", models.ErrActorNotFound
		}

		return "", fmt.Errorf("looking up actor by API key: %w", err)
	}

	return actor, nil
}
