package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/healthsites/localityd/internal/geocode"
	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/store"
)

// recentUpdateGroups is how many archive change groups statistics report.
const recentUpdateGroups = 5

// simpleCompleteThreshold is the non-empty value count at which a locality
// counts as complete for the simple per-country statistic.
const simpleCompleteThreshold = 15

// basicValueCeiling is the upper bound of the "basic" completeness bucket.
const basicValueCeiling = 3

// StatsStore is the aggregate-query interface StatsService depends on.
type StatsStore interface {
	LocalityRefs(ctx context.Context, tag string) ([]store.LocalityRef, error)
	CountLocalities(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context, ids []int64) (models.CategoryCounts, error)
	ValueCounts(ctx context.Context, ids []int64) (map[int64]int, error)
	RecentUpdates(ctx context.Context, uuids []string, limit int) ([]models.RecentUpdate, error)
}

// SpecCounter provides the live specification count of a domain.
type SpecCounter interface {
	SpecificationCount(ctx context.Context, domain string) (int, error)
}

// StatsService computes aggregate statistics over filtered locality sets.
type StatsService struct {
	stats     StatsStore
	schema    SpecCounter
	countries CountryStore
	geocoder  geocode.Geocoder
	domain    string
	log       *logrus.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(
	stats StatsStore,
	schema SpecCounter,
	countries CountryStore,
	geocoder geocode.Geocoder,
	domain string,
	log *logrus.Logger,
) *StatsService {
	return &StatsService{
		stats:     stats,
		schema:    schema,
		countries: countries,
		geocoder:  geocoder,
		domain:    domain,
		log:       log,
	}
}

// localitySet resolves the filter to the id and uuid sets the aggregate
// queries run over. Nil slices mean the whole dataset.
func (s *StatsService) localitySet(ctx context.Context, filter models.StatisticsFilter) (ids []int64, uuids []string, err error) {
	if filter.Country == "" && filter.Tag == "" {
		return nil, nil, nil
	}

	refs, err := s.stats.LocalityRefs(ctx, filter.Tag)
	if err != nil {
		return nil, nil, err
	}

	if filter.Country != "" {
		poly, err := s.countries.GetCountryPolygon(ctx, filter.Country)
		if err != nil {
			return nil, nil, err
		}

		box := poly.BBox()
		filtered := refs[:0]

		for _, r := range refs {
			if box.Contains(r.Point) && poly.Contains(r.Point) {
				filtered = append(filtered, r)
			}
		}

		refs = filtered
	}

	ids = make([]int64, len(refs))
	uuids = make([]string, len(refs))

	for i, r := range refs {
		ids[i] = r.ID
		uuids[i] = r.UUID
	}

	return ids, uuids, nil
}

// GetStatistics returns the aggregate summary for a filtered locality set.
// An unknown country is a hard failure. When a country is given, its map
// viewport is geocoded best-effort: geocoding failures degrade to a
// zero-filled viewport instead of failing the request.
func (s *StatsService) GetStatistics(ctx context.Context, filter models.StatisticsFilter) (*models.Statistics, error) {
	ids, uuids, err := s.localitySet(ctx, filter)
	if err != nil {
		return nil, err
	}

	specCount, err := s.schema.SpecificationCount(ctx, s.domain)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if ids != nil {
			stats.Localities = len(ids)

			return nil
		}

		n, err := s.stats.CountLocalities(gctx)
		if err != nil {
			return err
		}

		stats.Localities = n

		return nil
	})

	g.Go(func() error {
		counts, err := s.stats.CategoryCounts(gctx, ids)
		if err != nil {
			return err
		}

		stats.Numbers = counts

		return nil
	})

	g.Go(func() error {
		valueCounts, err := s.stats.ValueCounts(gctx, ids)
		if err != nil {
			return err
		}

		stats.Completeness = bucketize(valueCounts, specCount)

		return nil
	})

	g.Go(func() error {
		updates, err := s.stats.RecentUpdates(gctx, uuids, recentUpdateGroups)
		if err != nil {
			return err
		}

		stats.LastUpdates = updates

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if filter.Country != "" {
		stats.Viewport = s.viewport(ctx, filter.Country)
	}

	return stats, nil
}

// bucketize partitions per-locality value counts into completeness buckets.
func bucketize(valueCounts map[int64]int, specCount int) models.CompletenessBuckets {
	var buckets models.CompletenessBuckets

	for _, n := range valueCounts {
		switch {
		case specCount > 0 && n >= specCount:
			buckets.Complete++
		case n <= basicValueCeiling:
			buckets.Basic++
		default:
			buckets.Partial++
		}
	}

	return buckets
}

// viewport geocodes a country to its map viewport, zero-filled on failure.
func (s *StatsService) viewport(ctx context.Context, country string) *models.Viewport {
	vp, err := s.geocoder.Viewport(ctx, country)
	if err != nil {
		s.log.WithError(err).WithField("country", country).Warn("geocoding failed, returning empty viewport")

		return &models.Viewport{}
	}

	return &vp
}

// GetSimpleStatistic returns the lightweight per-country summary: locality
// count and the share of localities carrying at least
// simpleCompleteThreshold non-empty values.
func (s *StatsService) GetSimpleStatistic(ctx context.Context, country string) (*models.SimpleStatistic, error) {
	ids, _, err := s.localitySet(ctx, models.StatisticsFilter{Country: country})
	if err != nil {
		return nil, err
	}

	valueCounts, err := s.stats.ValueCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	stat := &models.SimpleStatistic{Completeness: "0.00%"}

	if ids != nil {
		stat.Number = len(ids)
	} else {
		stat.Number, err = s.stats.CountLocalities(ctx)
		if err != nil {
			return nil, err
		}
	}

	if stat.Number == 0 {
		return stat, nil
	}

	complete := 0

	for _, n := range valueCounts {
		if n >= simpleCompleteThreshold {
			complete++
		}
	}

	stat.Completeness = fmt.Sprintf("%.2f%%", float64(complete)/float64(stat.Number)*100)

	return stat, nil
}
