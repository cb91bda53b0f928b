package service

import (
	"context"
	"sync"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/store"
	"github.com/healthsites/localityd/internal/ws"
)

// mockLocalityStore records calls and returns configured responses.
type mockLocalityStore struct {
	mu    sync.Mutex
	calls []string

	createLocality  func(ctx context.Context, domain string, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	updateLocality  func(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, bool, error)
	getLocality     func(ctx context.Context, localityUUID string) (*models.LocalityDetail, error)
	pointsInBBox    func(ctx context.Context, box geo.BBox, tag string) ([]geo.ClusterPoint, error)
	pointsInPolygon func(ctx context.Context, poly geo.Polygon, tag string) ([]geo.ClusterPoint, error)
}

func (m *mockLocalityStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockLocalityStore) CreateLocality(ctx context.Context, domain string, sub *models.LocalitySubmission, actor string) (*models.Locality, error) {
	m.record("CreateLocality")
	return m.createLocality(ctx, domain, sub, actor)
}

func (m *mockLocalityStore) UpdateLocality(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, bool, error) {
	m.record("UpdateLocality")
	return m.updateLocality(ctx, localityUUID, sub, actor)
}

func (m *mockLocalityStore) GetLocality(ctx context.Context, localityUUID string) (*models.LocalityDetail, error) {
	m.record("GetLocality")
	return m.getLocality(ctx, localityUUID)
}

func (m *mockLocalityStore) PointsInBBox(ctx context.Context, box geo.BBox, tag string) ([]geo.ClusterPoint, error) {
	m.record("PointsInBBox")
	return m.pointsInBBox(ctx, box, tag)
}

func (m *mockLocalityStore) PointsInPolygon(ctx context.Context, poly geo.Polygon, tag string) ([]geo.ClusterPoint, error) {
	m.record("PointsInPolygon")
	return m.pointsInPolygon(ctx, poly, tag)
}

func (m *mockLocalityStore) SearchNames(_ context.Context, _ string) ([]string, error) {
	m.record("SearchNames")
	return nil, nil
}

func (m *mockLocalityStore) SearchTags(_ context.Context, _ string) ([]string, error) {
	m.record("SearchTags")
	return nil, nil
}

func (m *mockLocalityStore) SearchCountries(_ context.Context, _ string) ([]string, error) {
	m.record("SearchCountries")
	return nil, nil
}

// mockSchema returns a fixed attribute schema.
type mockSchema struct {
	required  []string
	specCount int
}

func (m *mockSchema) RequiredAttributes(_ context.Context, _ string) ([]string, error) {
	return m.required, nil
}

func (m *mockSchema) SpecificationCount(_ context.Context, _ string) (int, error) {
	return m.specCount, nil
}

// mockCountryStore serves a fixed polygon per country name.
type mockCountryStore struct {
	polygons map[string]geo.Polygon
}

func (m *mockCountryStore) GetCountryPolygon(_ context.Context, name string) (geo.Polygon, error) {
	poly, ok := m.polygons[name]
	if !ok {
		return geo.Polygon{}, models.ErrCountryNotFound
	}

	return poly, nil
}

// mockAudit records enqueued audit jobs.
type mockAudit struct {
	mu   sync.Mutex
	jobs []*AuditJob
}

func (m *mockAudit) Enqueue(job *AuditJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func (m *mockAudit) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// mockHub records broadcast events.
type mockHub struct {
	mu     sync.Mutex
	events []string
	data   []ws.LocalityData
}

func (m *mockHub) BroadcastEvent(eventType string, data ws.LocalityData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	m.data = append(m.data, data)
}

// mockStatsStore serves fixed aggregate data.
type mockStatsStore struct {
	refs        []store.LocalityRef
	total       int
	categories  models.CategoryCounts
	valueCounts map[int64]int
	updates     []models.RecentUpdate
}

func (m *mockStatsStore) LocalityRefs(_ context.Context, tag string) ([]store.LocalityRef, error) {
	_ = tag
	return m.refs, nil
}

func (m *mockStatsStore) CountLocalities(_ context.Context) (int, error) {
	return m.total, nil
}

func (m *mockStatsStore) CategoryCounts(_ context.Context, _ []int64) (models.CategoryCounts, error) {
	return m.categories, nil
}

func (m *mockStatsStore) ValueCounts(_ context.Context, ids []int64) (map[int64]int, error) {
	if ids == nil {
		return m.valueCounts, nil
	}

	counts := make(map[int64]int, len(ids))
	for _, id := range ids {
		counts[id] = m.valueCounts[id]
	}

	return counts, nil
}

func (m *mockStatsStore) RecentUpdates(_ context.Context, _ []string, _ int) ([]models.RecentUpdate, error) {
	return m.updates, nil
}

// mockGeocoder serves fixed viewports.
type mockGeocoder struct {
	viewports map[string]models.Viewport
	err       error
}

func (m *mockGeocoder) Viewport(_ context.Context, place string) (models.Viewport, error) {
	if m.err != nil {
		return models.Viewport{}, m.err
	}

	return m.viewports[place], nil
}
