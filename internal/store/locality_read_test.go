package store_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/store"
)

func TestPointsInBBox(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	inside := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(100.5),
		Latitude:  floatPtr(50.5),
		Values:    map[string]string{"name": "Inside"},
		Tags:      "bboxtest",
	})
	createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(120),
		Latitude:  floatPtr(50.5),
		Values:    map[string]string{"name": "Outside"},
		Tags:      "bboxtest",
	})

	box := geo.BBox{MinLon: 100, MinLat: 50, MaxLon: 101, MaxLat: 51}

	points, err := localities.PointsInBBox(ctx, box, "bboxtest")
	if err != nil {
		t.Fatalf("querying bbox: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}

	if points[0].UUID != inside.UUID {
		t.Errorf("uuid = %q, want %q", points[0].UUID, inside.UUID)
	}
}

func TestPointsInPolygon(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	// Triangle covering (0..10, 0..10) below the diagonal.
	poly := geo.Polygon{Rings: [][]geo.Point{{
		{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 0},
	}}}

	inside := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(8),
		Latitude:  floatPtr(2),
		Values:    map[string]string{"name": "InTriangle"},
		Tags:      "polytest",
	})
	// Inside the bbox prefilter but outside the triangle.
	createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(2),
		Latitude:  floatPtr(8),
		Values:    map[string]string{"name": "OutTriangle"},
		Tags:      "polytest",
	})

	points, err := localities.PointsInPolygon(ctx, poly, "polytest")
	if err != nil {
		t.Fatalf("querying polygon: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}

	if points[0].UUID != inside.UUID {
		t.Errorf("uuid = %q, want %q", points[0].UUID, inside.UUID)
	}
}

func TestSearchTags(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(3),
		Latitude:  floatPtr(3),
		Values:    map[string]string{"name": "Tagged"},
		Tags:      "searchme|other",
	})

	tags, err := localities.SearchTags(ctx, "SEARCHM")
	if err != nil {
		t.Fatalf("searching tags: %v", err)
	}

	found := false

	for _, tag := range tags {
		if tag == "searchme" {
			found = true
		}
	}

	if !found {
		t.Errorf("tag searchme not found in %v", tags)
	}
}

func TestGetActorByAPIKey(t *testing.T) {
	base := setupTestBase(t)
	ctx := context.Background()

	apiKey := "test-key-" + uuid.NewString()
	hash := sha256.Sum256([]byte(apiKey))

	_, err := base.Pool.Exec(ctx,
		"INSERT INTO actors (name, api_key_hash) VALUES ($1, $2)",
		"actor-"+apiKey[len(apiKey)-8:], hex.EncodeToString(hash[:]),
	)
	if err != nil {
		t.Fatalf("inserting actor: %v", err)
	}

	t.Cleanup(func() {
		base.Pool.Exec(context.Background(), "DELETE FROM actors WHERE api_key_hash = $1", hex.EncodeToString(hash[:])) //nolint:errcheck // best-effort cleanup
	})

	actor, err := base.GetActorByAPIKey(ctx, apiKey)
	if err != nil {
		t.Fatalf("looking up actor: %v", err)
	}

	if actor == "" {
		t.Error("empty actor name")
	}

	_, err = base.GetActorByAPIKey(ctx, "wrong-key")
	if !errors.Is(err, models.ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}
