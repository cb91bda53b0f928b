package api

import (
	"context"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
)

// LocalityService is the business-logic interface the locality handlers
// depend on.
type LocalityService interface {
	Create(ctx context.Context, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	Update(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	Detail(ctx context.Context, localityUUID string) (*models.LocalityDetail, error)
	MapClusters(ctx context.Context, box geo.BBox, zoom, iconWidth, iconHeight int, geoname, tag string) ([]geo.Cluster, error)
	SearchNames(ctx context.Context, prefix string) ([]string, error)
	SearchTags(ctx context.Context, prefix string) ([]string, error)
	SearchCountries(ctx context.Context, prefix string) ([]string, error)
}

// StatsService computes aggregate statistics.
type StatsService interface {
	GetStatistics(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error)
	GetSimpleStatistic(ctx context.Context, country string) (*models.SimpleStatistic, error)
}

// SchemaService manages the attribute registry.
type SchemaService interface {
	Ensure(ctx context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error)
	List(ctx context.Context) ([]models.Specification, error)
}

// HistoryService reads the immutable archives.
type HistoryService interface {
	LocalityHistory(ctx context.Context, localityUUID string, limit, offset int) ([]models.LocalityArchive, bool, error)
	ValueHistory(ctx context.Context, localityUUID, attributeKey string, limit, offset int) ([]models.ValueArchive, bool, error)
}
