package api_test

import (
	"context"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
)

// mockLocalitySvc implements api.LocalityService for testing.
type mockLocalitySvc struct {
	createFn      func(ctx context.Context, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	updateFn      func(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	detailFn      func(ctx context.Context, localityUUID string) (*models.LocalityDetail, error)
	mapClustersFn func(ctx context.Context, box geo.BBox, zoom, iconWidth, iconHeight int, geoname, tag string) ([]geo.Cluster, error)
	searchFn      func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockLocalitySvc) Create(ctx context.Context, sub *models.LocalitySubmission, actor string) (*models.Locality, error) {
	return m.createFn(ctx, sub, actor)
}

func (m *mockLocalitySvc) Update(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, error) {
	return m.updateFn(ctx, localityUUID, sub, actor)
}

func (m *mockLocalitySvc) Detail(ctx context.Context, localityUUID string) (*models.LocalityDetail, error) {
	return m.detailFn(ctx, localityUUID)
}

func (m *mockLocalitySvc) MapClusters(ctx context.Context, box geo.BBox, zoom, iconWidth, iconHeight int, geoname, tag string) ([]geo.Cluster, error) {
	return m.mapClustersFn(ctx, box, zoom, iconWidth, iconHeight, geoname, tag)
}

func (m *mockLocalitySvc) SearchNames(ctx context.Context, prefix string) ([]string, error) {
	return m.searchFn(ctx, prefix)
}

func (m *mockLocalitySvc) SearchTags(ctx context.Context, prefix string) ([]string, error) {
	return m.searchFn(ctx, prefix)
}

func (m *mockLocalitySvc) SearchCountries(ctx context.Context, prefix string) ([]string, error) {
	return m.searchFn(ctx, prefix)
}

// mockStatsSvc implements api.StatsService for testing.
type mockStatsSvc struct {
	statsFn  func(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error)
	simpleFn func(ctx context.Context, country string) (*models.SimpleStatistic, error)
}

func (m *mockStatsSvc) GetStatistics(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error) {
	return m.statsFn(ctx, filter)
}

func (m *mockStatsSvc) GetSimpleStatistic(ctx context.Context, country string) (*models.SimpleStatistic, error) {
	return m.simpleFn(ctx, country)
}

// mockSchemaSvc implements api.SchemaService for testing.
type mockSchemaSvc struct {
	ensureFn func(ctx context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error)
	listFn   func(ctx context.Context) ([]models.Specification, error)
}

func (m *mockSchemaSvc) Ensure(ctx context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error) {
	return m.ensureFn(ctx, req, actor)
}

func (m *mockSchemaSvc) List(ctx context.Context) ([]models.Specification, error) {
	return m.listFn(ctx)
}

// mockHistorySvc implements api.HistoryService for testing.
type mockHistorySvc struct {
	localityFn func(ctx context.Context, localityUUID string, limit, offset int) ([]models.LocalityArchive, bool, error)
	valueFn    func(ctx context.Context, localityUUID, attributeKey string, limit, offset int) ([]models.ValueArchive, bool, error)
}

func (m *mockHistorySvc) LocalityHistory(ctx context.Context, localityUUID string, limit, offset int) ([]models.LocalityArchive, bool, error) {
	return m.localityFn(ctx, localityUUID, limit, offset)
}

func (m *mockHistorySvc) ValueHistory(ctx context.Context, localityUUID, attributeKey string, limit, offset int) ([]models.ValueArchive, bool, error) {
	return m.valueFn(ctx, localityUUID, attributeKey, limit, offset)
}
