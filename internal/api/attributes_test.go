package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/healthsites/localityd/internal/api"
	"github.com/healthsites/localityd/internal/models"
)

func TestAttributeList(t *testing.T) {
	t.Parallel()

	svc := &mockSchemaSvc{
		listFn: func(_ context.Context) ([]models.Specification, error) {
			return []models.Specification{
				{ID: 1, Domain: "Health", AttributeKey: "name", Required: true},
				{ID: 2, Domain: "Health", AttributeKey: "type", Required: false},
			}, nil
		},
	}

	h := api.NewAttributeHandler(svc, testLogger())
	r := newPublicRouter()
	r.GET("/attributes", h.List)

	w := doRequest(r, http.MethodGet, "/attributes", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Attributes []models.Specification `json:"attributes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if len(resp.Attributes) != 2 || resp.Attributes[0].AttributeKey != "name" {
		t.Errorf("unexpected attributes: %+v", resp.Attributes)
	}
}

func TestAttributeEnsure_Valid(t *testing.T) {
	t.Parallel()

	var gotReq models.EnsureSpecificationRequest
	var gotActor string
	svc := &mockSchemaSvc{
		ensureFn: func(_ context.Context, req models.EnsureSpecificationRequest, actor string) (*models.Specification, error) {
			gotReq, gotActor = req, actor

			return &models.Specification{ID: 3, Domain: "Health", AttributeKey: req.Key, Required: req.Required, ChangesetID: 9}, nil
		},
	}

	h := api.NewAttributeHandler(svc, testLogger())
	r := newTestRouter()
	r.POST("/attributes", h.Ensure)

	w := doRequest(r, http.MethodPost, "/attributes", `{"key":"ownership","required":false}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if gotReq.Key != "ownership" || gotActor != testActor {
		t.Errorf("unexpected call: req=%+v actor=%q", gotReq, gotActor)
	}

	var spec models.Specification
	if err := json.Unmarshal(w.Body.Bytes(), &spec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if spec.ID != 3 || spec.ChangesetID != 9 {
		t.Errorf("unexpected specification: %+v", spec)
	}
}

func TestAttributeEnsure_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &mockSchemaSvc{
		ensureFn: func(_ context.Context, _ models.EnsureSpecificationRequest, _ string) (*models.Specification, error) {
			return nil, &models.ValidationError{Key: "key"}
		},
	}

	h := api.NewAttributeHandler(svc, testLogger())
	r := newTestRouter()
	r.POST("/attributes", h.Ensure)

	w := doRequest(r, http.MethodPost, "/attributes", `{"key":""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAttributeEnsure_OverlongKey(t *testing.T) {
	t.Parallel()

	svc := &mockSchemaSvc{
		ensureFn: func(_ context.Context, req models.EnsureSpecificationRequest, _ string) (*models.Specification, error) {
			if err := req.Validate(); err != nil {
				return nil, err
			}

			t.Fatal("overlong key passed validation")
			return nil, nil
		},
	}

	h := api.NewAttributeHandler(svc, testLogger())
	r := newTestRouter()
	r.POST("/attributes", h.Ensure)

	body := `{"domain":"Health","key":"` + strings.Repeat("k", 101) + `"}`
	w := doRequest(r, http.MethodPost, "/attributes", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp["key"] != "key" {
		t.Errorf("failing key = %q, want %q", resp["key"], "key")
	}
}

func TestAttributeEnsure_MissingActor(t *testing.T) {
	t.Parallel()

	h := api.NewAttributeHandler(&mockSchemaSvc{}, testLogger())
	r := newPublicRouter()
	r.POST("/attributes", h.Ensure)

	w := doRequest(r, http.MethodPost, "/attributes", `{"key":"ownership"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}
