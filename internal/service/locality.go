// Package service provides business logic between API handlers and data stores.
package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/metrics"
	"github.com/healthsites/localityd/internal/models"
	"github.com/healthsites/localityd/internal/ws"
)

// LocalityStore is the data-access interface LocalityService depends on.
type LocalityStore interface {
	CreateLocality(ctx context.Context, domain string, sub *models.LocalitySubmission, actor string) (*models.Locality, error)
	UpdateLocality(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, bool, error)
	GetLocality(ctx context.Context, localityUUID string) (*models.LocalityDetail, error)
	PointsInBBox(ctx context.Context, box geo.BBox, tag string) ([]geo.ClusterPoint, error)
	PointsInPolygon(ctx context.Context, poly geo.Polygon, tag string) ([]geo.ClusterPoint, error)
	SearchNames(ctx context.Context, prefix string) ([]string, error)
	SearchTags(ctx context.Context, prefix string) ([]string, error)
	SearchCountries(ctx context.Context, prefix string) ([]string, error)
}

// RequiredAttributeLister provides the required keys of a domain.
type RequiredAttributeLister interface {
	RequiredAttributes(ctx context.Context, domain string) ([]string, error)
}

// CountryStore resolves country names to boundary polygons.
type CountryStore interface {
	GetCountryPolygon(ctx context.Context, name string) (geo.Polygon, error)
}

// Broadcaster pushes locality change events to map clients.
type Broadcaster interface {
	BroadcastEvent(eventType string, data ws.LocalityData)
}

// LocalityService wraps the locality store with validation, audit fan-out,
// and live event broadcasting.
type LocalityService struct {
	store       LocalityStore
	schema      RequiredAttributeLister
	countries   CountryStore
	auditWorker AuditEnqueuer
	hub         Broadcaster
	domain      string
	log         *logrus.Logger
}

// NewLocalityService creates a LocalityService editing the given domain.
func NewLocalityService(
	store LocalityStore,
	schema RequiredAttributeLister,
	countries CountryStore,
	auditWorker AuditEnqueuer,
	hub Broadcaster,
	domain string,
	log *logrus.Logger,
) *LocalityService {
	return &LocalityService{
		store:       store,
		schema:      schema,
		countries:   countries,
		auditWorker: auditWorker,
		hub:         hub,
		domain:      domain,
		log:         log,
	}
}

// Create validates a submission and creates the locality under a fresh
// changeset, then fans out the audit entry and the live event.
func (s *LocalityService) Create(ctx context.Context, sub *models.LocalitySubmission, actor string) (*models.Locality, error) {
	required, err := s.schema.RequiredAttributes(ctx, s.domain)
	if err != nil {
		return nil, err
	}

	if err := sub.Validate(required); err != nil {
		return nil, err
	}

	loc, err := s.store.CreateLocality(ctx, s.domain, sub, actor)
	if err != nil {
		return nil, err
	}

	metrics.EditsTotal.WithLabelValues("create").Inc()

	auditAsync(s.auditWorker, "locality.create", loc.UUID, actor, loc.ChangesetID, map[string]any{
		"values": len(sub.Values),
	})

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventLocalityCreated, ws.LocalityData{
			UUID:        loc.UUID,
			Longitude:   loc.Point.Lon,
			Latitude:    loc.Point.Lat,
			ChangesetID: loc.ChangesetID,
		})
	}

	return loc, nil
}

// Update validates a submission and applies it to an existing locality.
// No-op submissions skip the audit entry and the broadcast.
func (s *LocalityService) Update(ctx context.Context, localityUUID string, sub *models.LocalitySubmission, actor string) (*models.Locality, error) {
	required, err := s.schema.RequiredAttributes(ctx, s.domain)
	if err != nil {
		return nil, err
	}

	if err := sub.Validate(required); err != nil {
		return nil, err
	}

	loc, changed, err := s.store.UpdateLocality(ctx, localityUUID, sub, actor)
	if err != nil {
		return nil, err
	}

	if !changed {
		metrics.EditsTotal.WithLabelValues("noop").Inc()

		return loc, nil
	}

	metrics.EditsTotal.WithLabelValues("update").Inc()

	auditAsync(s.auditWorker, "locality.update", loc.UUID, actor, loc.ChangesetID, map[string]any{
		"values": len(sub.Values),
	})

	if s.hub != nil {
		s.hub.BroadcastEvent(ws.EventLocalityUpdated, ws.LocalityData{
			UUID:        loc.UUID,
			Longitude:   loc.Point.Lon,
			Latitude:    loc.Point.Lat,
			ChangesetID: loc.ChangesetID,
		})
	}

	return loc, nil
}

// Detail returns the full representation of a locality.
func (s *LocalityService) Detail(ctx context.Context, localityUUID string) (*models.LocalityDetail, error) {
	return s.store.GetLocality(ctx, localityUUID)
}

// MapClusters returns the clustered map layer for a viewport. A non-empty
// geoname restricts the set to that country's polygon; an unknown geoname
// degrades to the plain bbox query rather than an error so map searches
// keep working. The tag filter composes with either.
func (s *LocalityService) MapClusters(
	ctx context.Context,
	box geo.BBox,
	zoom, iconWidth, iconHeight int,
	geoname, tag string,
) ([]geo.Cluster, error) {
	var (
		points []geo.ClusterPoint
		err    error
	)

	switch poly, perr := s.countryPolygon(ctx, geoname); {
	case perr != nil:
		return nil, perr
	case poly != nil:
		points, err = s.store.PointsInPolygon(ctx, *poly, tag)
	default:
		points, err = s.store.PointsInBBox(ctx, box, tag)
	}

	if err != nil {
		return nil, err
	}

	metrics.ClusteredPoints.Observe(float64(len(points)))

	return geo.ClusterPoints(points, zoom, iconWidth, iconHeight), nil
}

// countryPolygon resolves a geoname to its polygon. An empty or unknown
// name returns nil so the caller falls back to the unfiltered query.
func (s *LocalityService) countryPolygon(ctx context.Context, geoname string) (*geo.Polygon, error) {
	if geoname == "" {
		return nil, nil
	}

	poly, err := s.countries.GetCountryPolygon(ctx, geoname)
	if err != nil {
		if errors.Is(err, models.ErrCountryNotFound) {
			s.log.WithField("geoname", geoname).Debug("unknown country, dropping filter")

			return nil, nil
		}

		return nil, err
	}

	return &poly, nil
}

// SearchNames returns locality name autocompletions.
func (s *LocalityService) SearchNames(ctx context.Context, prefix string) ([]string, error) {
	return s.store.SearchNames(ctx, prefix)
}

// SearchTags returns tag autocompletions.
func (s *LocalityService) SearchTags(ctx context.Context, prefix string) ([]string, error) {
	return s.store.SearchTags(ctx, prefix)
}

// SearchCountries returns country name autocompletions.
func (s *LocalityService) SearchCountries(ctx context.Context, prefix string) ([]string, error) {
	return s.store.SearchCountries(ctx, prefix)
}
