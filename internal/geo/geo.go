// Package geo provides pure geospatial math for the locality platform:
// bounding boxes, polygon containment, Web Mercator projection, and
// grid-based map clustering. Everything here is stateless and free of
// store access so callers can validate before touching the database.
package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a geographic coordinate in WGS84.
type Point struct {
	Lon float64 `json:"long"`
	Lat float64 `json:"lat"`
}

// BBox is a geographic bounding box.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Contains reports whether p lies within the box, borders inclusive.
func (b BBox) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat". Exactly four floats are
// required, coordinates must be in range, and min must not exceed max.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox must be 4 comma-separated floats, got %d fields", len(parts))
	}

	vals := make([]float64, 4)

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox field %d: %w", i+1, err)
		}

		vals[i] = v
	}

	b := BBox{MinLon: vals[0], MinLat: vals[1], MaxLon: vals[2], MaxLat: vals[3]}

	if b.MinLon < -180 || b.MaxLon > 180 || b.MinLat < -90 || b.MaxLat > 90 {
		return BBox{}, fmt.Errorf("bbox out of coordinate range")
	}

	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return BBox{}, fmt.Errorf("bbox min exceeds max")
	}

	return b, nil
}

// Polygon is a closed ring of coordinates. The first and last vertex may
// but need not coincide.
type Polygon struct {
	Rings [][]Point `json:"rings"`
}

// BBox returns the polygon's bounding box.
func (pg Polygon) BBox() BBox {
	b := BBox{MinLon: 180, MinLat: 90, MaxLon: -180, MaxLat: -90}

	for _, ring := range pg.Rings {
		for _, p := range ring {
			if p.Lon < b.MinLon {
				b.MinLon = p.Lon
			}
			if p.Lon > b.MaxLon {
				b.MaxLon = p.Lon
			}
			if p.Lat < b.MinLat {
				b.MinLat = p.Lat
			}
			if p.Lat > b.MaxLat {
				b.MaxLat = p.Lat
			}
		}
	}

	return b
}

// Contains reports whether p lies inside the polygon using even-odd ray
// casting. A point inside an inner ring (a hole) is outside the polygon.
func (pg Polygon) Contains(p Point) bool {
	inside := false

	for _, ring := range pg.Rings {
		if ringContains(ring, p) {
			inside = !inside
		}
	}

	return inside
}

// ringContains runs the even-odd rule against a single ring.
func ringContains(ring []Point, p Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1

	for i := 0; i < n; i++ {
		a, b := ring[i], ring[j]

		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := (b.Lon-a.Lon)*(p.Lat-a.Lat)/(b.Lat-a.Lat) + a.Lon
			if p.Lon < x {
				inside = !inside
			}
		}

		j = i
	}

	return inside
}

// Zoom limits for map requests.
const (
	MinZoom = 0
	MaxZoom = 20
)

// ValidZoom reports whether z is a usable map zoom level.
func ValidZoom(z int) bool {
	return z >= MinZoom && z <= MaxZoom
}
