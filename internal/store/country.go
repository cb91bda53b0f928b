package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/healthsites/localityd/internal/geo"
	"github.com/healthsites/localityd/internal/models"
)

// CountryStore resolves country names to their boundary polygons.
type CountryStore struct {
	Base
}

// NewCountryStore creates a new CountryStore.
func NewCountryStore(base Base) *CountryStore {
	return &CountryStore{Base: base}
}

// geoJSONGeometry is the stored boundary shape. Coordinates follow GeoJSON
// ordering: [lon, lat] pairs, rings, then (for MultiPolygon) polygons.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// GetCountryPolygon looks up a country boundary by name, case-insensitive
// exact match. Both Polygon and MultiPolygon geometries are flattened to a
// single ring set; even-odd containment handles disjoint parts and holes.
func (s *CountryStore) GetCountryPolygon(ctx context.Context, name string) (geo.Polygon, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var raw []byte

	err := s.Pool.QueryRow(ctx,
		"SELECT polygon FROM countries WHERE lower(name) = lower($1)", name,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return geo.Polygon{}, models.ErrCountryNotFound
		}

		return geo.Polygon{}, fmt.Errorf("getting country polygon: %w", err)
	}

	poly, err := parseGeometry(raw)
	if err != nil {
		return geo.Polygon{}, fmt.Errorf("parsing country %q polygon: %w", name, err)
	}

	return poly, nil
}

// parseGeometry decodes a stored GeoJSON geometry into a polygon.
func parseGeometry(raw []byte) (geo.Polygon, error) {
	var g geoJSONGeometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return geo.Polygon{}, fmt.Errorf("decoding geometry: %w", err)
	}

	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return geo.Polygon{}, fmt.Errorf("decoding polygon coordinates: %w", err)
		}

		return ringsToPolygon(rings)

	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return geo.Polygon{}, fmt.Errorf("decoding multipolygon coordinates: %w", err)
		}

		var all [][][]float64
		for _, p := range polys {
			all = append(all, p...)
		}

		return ringsToPolygon(all)

	default:
		return geo.Polygon{}, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

// ringsToPolygon converts GeoJSON coordinate rings to geo points.
func ringsToPolygon(rings [][][]float64) (geo.Polygon, error) {
	poly := geo.Polygon{Rings: make([][]geo.Point, 0, len(rings))}

	for _, ring := range rings {
		points := make([]geo.Point, 0, len(ring))

		for _, pair := range ring {
			if len(pair) < 2 {
				return geo.Polygon{}, errors.New("coordinate pair too short")
			}

			points = append(points, geo.Point{Lon: pair[0], Lat: pair[1]})
		}

		poly.Rings = append(poly.Rings, points)
	}

	return poly, nil
}
