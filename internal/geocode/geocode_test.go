package geocode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/healthsites/localityd/internal/geocode"
)

func TestHTTPGeocoder_Viewport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Kenya" {
			t.Errorf("q = %q, want Kenya", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"boundingbox":["-4.68","5.51","33.91","41.91"]}]`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	g := geocode.NewHTTPGeocoder(srv.URL)

	vp, err := g.Viewport(context.Background(), "Kenya")
	if err != nil {
		t.Fatalf("geocoding: %v", err)
	}

	if vp.SouthwestLat != -4.68 || vp.NortheastLat != 5.51 {
		t.Errorf("latitudes = %v/%v", vp.SouthwestLat, vp.NortheastLat)
	}

	if vp.SouthwestLng != 33.91 || vp.NortheastLng != 41.91 {
		t.Errorf("longitudes = %v/%v", vp.SouthwestLng, vp.NortheastLng)
	}
}

func TestHTTPGeocoder_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`)) //nolint:errcheck // test handler
	}))
	defer srv.Close()

	g := geocode.NewHTTPGeocoder(srv.URL)

	_, err := g.Viewport(context.Background(), "Atlantis")
	if !errors.Is(err, geocode.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestNoop(t *testing.T) {
	_, err := geocode.Noop{}.Viewport(context.Background(), "anywhere")
	if !errors.Is(err, geocode.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
