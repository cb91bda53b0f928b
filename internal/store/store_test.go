package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/dbpool"
	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/store"
)

const testDomain = "Health"

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	sharedEnv = &testEnv{
		pool: pool,
		log:  log,
	}

	return sharedEnv
}

// setupTestBase returns a Base against the test database with the standard
// specifications ensured: required "name", optional "type".
func setupTestBase(t *testing.T) store.Base {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}

	schema := store.NewSchemaStore(base)
	ctx := context.Background()

	for _, spec := range []models.EnsureSpecificationRequest{
		{Domain: testDomain, Key: "name", Required: true},
		{Domain: testDomain, Key: "type", Required: false},
	} {
		if _, err := schema.EnsureSpecification(ctx, spec, "test-admin"); err != nil {
			t.Fatalf("ensuring specification %q: %v", spec.Key, err)
		}
	}

	return base
}

// cleanupLocality removes a test locality and its archive rows.
func cleanupLocality(t *testing.T, base store.Base, localityUUID string) {
	t.Helper()

	t.Cleanup(func() {
		ctx := context.Background()
		base.Pool.Exec(ctx, "DELETE FROM localities WHERE uuid = $1", localityUUID)                //nolint:errcheck // best-effort cleanup
		base.Pool.Exec(ctx, "DELETE FROM locality_archive WHERE locality_uuid = $1", localityUUID) //nolint:errcheck // best-effort cleanup
		base.Pool.Exec(ctx, "DELETE FROM value_archive WHERE locality_uuid = $1", localityUUID)    //nolint:errcheck // best-effort cleanup
	})
}

func floatPtr(v float64) *float64 { return &v }
