// Package geocode resolves place names to map viewports via an external
// geocoding service. Geocoding is best-effort: callers degrade to a
// zero-filled viewport when it fails.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/healthsites/localityd/internal/config"
	"github.com/healthsites/localityd/internal/models"
)

const geocodeTimeout = 10 * time.Second

// ErrNoMatch is returned when the geocoder has no result for a place.
var ErrNoMatch = errors.New("no geocoder match")

// Geocoder resolves a place name to a bounding viewport.
type Geocoder interface {
	Viewport(ctx context.Context, place string) (models.Viewport, error)
}

// HTTPGeocoder speaks the Nominatim search API.
type HTTPGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGeocoder creates a geocoder against the given Nominatim-style
// endpoint.
func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: geocodeTimeout},
	}
}

// nominatimResult is one search hit. The bounding box comes back as four
// decimal strings ordered minLat, maxLat, minLon, maxLon.
type nominatimResult struct {
	BoundingBox []string `json:"boundingbox"`
}

// Viewport resolves a place to its bounding viewport.
func (g *HTTPGeocoder) Viewport(ctx context.Context, place string) (models.Viewport, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return models.Viewport{}, fmt.Errorf("creating geocode request: %w", err)
	}

	req.Header.Set("User-Agent", "localityd/"+config.Version)

	resp, err := g.client.Do(req)
	if err != nil {
		return models.Viewport{}, fmt.Errorf("calling geocoder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain body so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort drain before close.
		return models.Viewport{}, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult

	limited := io.LimitReader(resp.Body, 1<<20)
	if err := json.NewDecoder(limited).Decode(&results); err != nil {
		return models.Viewport{}, fmt.Errorf("decoding geocoder response: %w", err)
	}

	if len(results) == 0 || len(results[0].BoundingBox) < 4 {
		return models.Viewport{}, ErrNoMatch
	}

	return parseBoundingBox(results[0].BoundingBox)
}

// parseBoundingBox converts the Nominatim string box to a viewport.
func parseBoundingBox(box []string) (models.Viewport, error) {
	vals := make([]float64, 4)

	for i := range vals {
		v, err := strconv.ParseFloat(box[i], 64)
		if err != nil {
			return models.Viewport{}, fmt.Errorf("parsing bounding box value %q: %w", box[i], err)
		}

		vals[i] = v
	}

	return models.Viewport{
		SouthwestLat: vals[0],
		NortheastLat: vals[1],
		SouthwestLng: vals[2],
		NortheastLng: vals[3],
	}, nil
}

// Noop is a Geocoder that never matches. Used when no geocoder endpoint is
// configured.
type Noop struct{}

// Viewport always reports no match.
func (Noop) Viewport(context.Context, string) (models.Viewport, error) {
	return models.Viewport{}, ErrNoMatch
}
