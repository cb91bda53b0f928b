package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithAPIKey("test-key"))
	return srv, c
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func f(v float64) *float64 { return &v }

func TestHealth(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0"})
		},
	})
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("got status %q, want ok", resp.Status)
	}
}

func TestLocalityEdits(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/localities": func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				jsonResponse(w, 401, map[string]string{"code": "unauthorized", "message": "missing key"})
				return
			}
			var sub LocalitySubmission
			json.NewDecoder(r.Body).Decode(&sub) //nolint:errcheck
			jsonResponse(w, 201, Locality{UUID: "deadbeef", Geom: Point{Long: *sub.Long, Lat: *sub.Lat}, ChangesetID: 1})
		},
		"PUT /api/v1/localities/deadbeef": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, Locality{UUID: "deadbeef", ChangesetID: 2})
		},
		"GET /api/v1/localities/deadbeef": func(w http.ResponseWriter, _ *http.Request) {
			d := LocalityDetail{Values: map[string]string{"name": "Kijabe Hospital"}, Completeness: "50.00%"}
			d.UUID = "deadbeef"
			jsonResponse(w, 200, d)
		},
	})

	sub := &LocalitySubmission{Long: f(36.8), Lat: f(-1.28), Values: map[string]string{"name": "Kijabe Hospital"}}
	loc, err := c.Localities.Create(context.Background(), sub)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if loc.UUID != "deadbeef" || loc.Geom.Long != 36.8 {
		t.Errorf("unexpected locality: %+v", loc)
	}

	if _, err := c.Localities.Update(context.Background(), "deadbeef", sub); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	detail, err := c.Localities.Get(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if detail.Values["name"] != "Kijabe Hospital" {
		t.Errorf("unexpected detail: %+v", detail)
	}
}

func TestMapLayerParams(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/localities": func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("zoom") != "7" || q.Get("bbox") != "-1,-1,1,1" || q.Get("iconsize") != "48,46" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			jsonResponse(w, 200, []Cluster{{Geom: Point{Long: 0.5, Lat: 0.5}, Count: 3}})
		},
	})

	clusters, err := c.Localities.MapLayer(context.Background(), &MapLayerOptions{
		BBox:       "-1,-1,1,1",
		Zoom:       7,
		IconWidth:  48,
		IconHeight: 46,
	})
	if err != nil {
		t.Fatalf("MapLayer() error: %v", err)
	}
	if len(clusters) != 1 || clusters[0].Count != 3 {
		t.Errorf("unexpected clusters: %+v", clusters)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/localities/missing": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 404, map[string]string{"code": "not_found", "message": "locality not found"})
		},
		"POST /api/v1/localities": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 400, map[string]string{"code": "validation_error", "message": "missing name", "key": "name"})
		},
	})

	_, err := c.Localities.Get(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	_, err = c.Localities.Create(context.Background(), &LocalitySubmission{Long: f(1), Lat: f(1)})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	apiErr := err.(*APIError)
	if apiErr.Key != "name" {
		t.Errorf("expected key 'name', got %q", apiErr.Key)
	}
}

func TestStatistics(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/statistics": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("country") != "Kenya" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			jsonResponse(w, 200, Statistics{Localities: 42, Completeness: CompletenessBuckets{Basic: 40, Partial: 2}})
		},
		"GET /api/v1/statistics/simple": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, SimpleStatistic{Number: 42, Completeness: "4.76%"})
		},
	})

	stats, err := c.Stats.Get(context.Background(), "Kenya", "")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if stats.Localities != 42 {
		t.Errorf("got %d localities, want 42", stats.Localities)
	}

	simple, err := c.Stats.Simple(context.Background(), "Kenya")
	if err != nil {
		t.Fatalf("Simple() error: %v", err)
	}
	if simple.Completeness != "4.76%" {
		t.Errorf("unexpected completeness %q", simple.Completeness)
	}
}

func TestAttributes(t *testing.T) {
	_, c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/attributes": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, map[string]any{"attributes": []Specification{{ID: 1, Key: "name", Required: true}}})
		},
		"POST /api/v1/attributes": func(w http.ResponseWriter, r *http.Request) {
			var req EnsureSpecificationRequest
			json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
			jsonResponse(w, 200, Specification{ID: 2, Key: req.Key, Required: req.Required})
		},
	})

	specs, err := c.Attributes.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(specs) != 1 || specs[0].Key != "name" {
		t.Errorf("unexpected specs: %+v", specs)
	}

	spec, err := c.Attributes.Ensure(context.Background(), &EnsureSpecificationRequest{Key: "ownership"})
	if err != nil {
		t.Fatalf("Ensure() error: %v", err)
	}
	if spec.Key != "ownership" {
		t.Errorf("unexpected spec: %+v", spec)
	}
}
