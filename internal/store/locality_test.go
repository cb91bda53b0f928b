package store_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/store"
)

func createTestLocality(t *testing.T, base store.Base, sub *models.LocalitySubmission) *models.Locality {
	t.Helper()

	localities := store.NewLocalityStore(base)

	loc, err := localities.CreateLocality(context.Background(), testDomain, sub, "tester")
	if err != nil {
		t.Fatalf("creating locality: %v", err)
	}

	cleanupLocality(t, base, loc.UUID)

	return loc
}

func TestCreateLocality_RoundTrip(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	sub := &models.LocalitySubmission{
		Longitude: floatPtr(36.82),
		Latitude:  floatPtr(-1.29),
		Values:    map[string]string{"name": "Nairobi West Hospital", "type": "Hospital"},
		Tags:      "Urgent|24h",
	}

	loc := createTestLocality(t, base, sub)

	if len(loc.UUID) != 32 {
		t.Errorf("uuid = %q, want 32 hex chars", loc.UUID)
	}

	if !strings.HasPrefix(loc.UpstreamID, "web"+models.UpstreamSeparator) {
		t.Errorf("upstream_id = %q, want web marker prefix", loc.UpstreamID)
	}

	detail, err := localities.GetLocality(ctx, loc.UUID)
	if err != nil {
		t.Fatalf("getting locality: %v", err)
	}

	if detail.Values["name"] != "Nairobi West Hospital" {
		t.Errorf("name = %q", detail.Values["name"])
	}

	wantTags := []string{"24h", "urgent"}
	if len(detail.Tags) != len(wantTags) {
		t.Fatalf("tags = %v, want %v", detail.Tags, wantTags)
	}

	for i, tag := range wantTags {
		if detail.Tags[i] != tag {
			t.Errorf("tags[%d] = %q, want %q", i, detail.Tags[i], tag)
		}
	}

	if len(detail.Updates) == 0 {
		t.Error("expected at least one recent update")
	}
}

func TestCreateLocality_UnknownKeyRejected(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)

	sub := &models.LocalitySubmission{
		Longitude: floatPtr(10),
		Latitude:  floatPtr(10),
		Values:    map[string]string{"name": "Somewhere", "no_such_key": "x"},
	}

	_, err := localities.CreateLocality(context.Background(), testDomain, sub, "tester")

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if verr.Key != "no_such_key" {
		t.Errorf("key = %q, want no_such_key", verr.Key)
	}
}

func TestUpdateLocality_GaplessVersions(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	history := store.NewHistoryStore(base)
	ctx := context.Background()

	loc := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(20),
		Latitude:  floatPtr(5),
		Values:    map[string]string{"name": "Clinic A"},
	})

	// Two geometry updates after the create.
	for i, lon := range []float64{21, 22} {
		_, _, err := localities.UpdateLocality(ctx, loc.UUID, &models.LocalitySubmission{
			Longitude: floatPtr(lon),
			Latitude:  floatPtr(5),
			Values:    map[string]string{"name": "Clinic A"},
		}, "tester")
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	entries, hasMore, err := history.LocalityHistory(ctx, loc.UUID, 50, 0)
	if err != nil {
		t.Fatalf("getting history: %v", err)
	}

	if hasMore {
		t.Error("unexpected has_more on small history")
	}

	if len(entries) != 3 {
		t.Fatalf("got %d archive entries, want 3", len(entries))
	}

	// Newest first: versions 3, 2, 1 without gaps.
	for i, e := range entries {
		if want := 3 - i; e.Version != want {
			t.Errorf("entries[%d].Version = %d, want %d", i, e.Version, want)
		}
	}

	if entries[len(entries)-1].Mode != models.ModeCreate {
		t.Errorf("first version mode = %v, want create", entries[len(entries)-1].Mode)
	}

	if entries[0].Mode != models.ModeUpdate {
		t.Errorf("latest version mode = %v, want update", entries[0].Mode)
	}
}

func TestUpdateLocality_NoOpLeavesNoTrace(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	history := store.NewHistoryStore(base)
	ctx := context.Background()

	sub := &models.LocalitySubmission{
		Longitude: floatPtr(30),
		Latitude:  floatPtr(-3),
		Values:    map[string]string{"name": "Clinic B"},
		Tags:      "urgent",
	}

	loc := createTestLocality(t, base, sub)

	updated, changed, err := localities.UpdateLocality(ctx, loc.UUID, sub, "tester")
	if err != nil {
		t.Fatalf("no-op update: %v", err)
	}

	if changed {
		t.Error("no-op update reported as changed")
	}

	if updated.ChangesetID != loc.ChangesetID {
		t.Errorf("changeset changed on no-op: %d -> %d", loc.ChangesetID, updated.ChangesetID)
	}

	entries, _, err := history.LocalityHistory(ctx, loc.UUID, 50, 0)
	if err != nil {
		t.Fatalf("getting history: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("got %d archive entries after no-op, want 1", len(entries))
	}
}

func TestUpdateLocality_TagReplace(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	loc := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(12),
		Latitude:  floatPtr(48),
		Values:    map[string]string{"name": "Clinic C"},
		Tags:      "urgent|24h",
	})

	_, _, err := localities.UpdateLocality(ctx, loc.UUID, &models.LocalitySubmission{
		Longitude: floatPtr(12),
		Latitude:  floatPtr(48),
		Values:    map[string]string{"name": "Clinic C"},
		Tags:      "urgent",
	}, "tester")
	if err != nil {
		t.Fatalf("updating tags: %v", err)
	}

	detail, err := localities.GetLocality(ctx, loc.UUID)
	if err != nil {
		t.Fatalf("getting locality: %v", err)
	}

	if len(detail.Tags) != 1 || detail.Tags[0] != "urgent" {
		t.Errorf("tags = %v, want [urgent]", detail.Tags)
	}
}

func TestUpdateLocality_ValueDelete(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	history := store.NewHistoryStore(base)
	ctx := context.Background()

	loc := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(7),
		Latitude:  floatPtr(7),
		Values:    map[string]string{"name": "Clinic D", "type": "Hospital"},
	})

	// Submitting an empty string deletes the live value.
	_, _, err := localities.UpdateLocality(ctx, loc.UUID, &models.LocalitySubmission{
		Longitude: floatPtr(7),
		Latitude:  floatPtr(7),
		Values:    map[string]string{"name": "Clinic D", "type": ""},
	}, "tester")
	if err != nil {
		t.Fatalf("deleting value: %v", err)
	}

	detail, err := localities.GetLocality(ctx, loc.UUID)
	if err != nil {
		t.Fatalf("getting locality: %v", err)
	}

	if _, ok := detail.Values["type"]; ok {
		t.Error("type value still live after delete")
	}

	entries, _, err := history.ValueHistory(ctx, loc.UUID, "type", 50, 0)
	if err != nil {
		t.Fatalf("getting value history: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d type archive entries, want 2", len(entries))
	}

	if entries[0].Mode != models.ModeDelete {
		t.Errorf("latest type mode = %v, want delete", entries[0].Mode)
	}
}

func TestGetLocality_NotFound(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)

	_, err := localities.GetLocality(context.Background(), "no-such-uuid")
	if !errors.Is(err, models.ErrLocalityNotFound) {
		t.Fatalf("expected ErrLocalityNotFound, got %v", err)
	}
}

func TestUpdateLocality_LastWriteWins(t *testing.T) {
	base := setupTestBase(t)
	localities := store.NewLocalityStore(base)
	ctx := context.Background()

	loc := createTestLocality(t, base, &models.LocalitySubmission{
		Longitude: floatPtr(1),
		Latitude:  floatPtr(1),
		Values:    map[string]string{"name": "Clinic E"},
	})

	for _, name := range []string{"Clinic E1", "Clinic E2"} {
		_, _, err := localities.UpdateLocality(ctx, loc.UUID, &models.LocalitySubmission{
			Longitude: floatPtr(1),
			Latitude:  floatPtr(1),
			Values:    map[string]string{"name": name},
		}, "tester")
		if err != nil {
			t.Fatalf("updating to %q: %v", name, err)
		}
	}

	detail, err := localities.GetLocality(ctx, loc.UUID)
	if err != nil {
		t.Fatalf("getting locality: %v", err)
	}

	if detail.Values["name"] != "Clinic E2" {
		t.Errorf("name = %q, want Clinic E2", detail.Values["name"])
	}
}
