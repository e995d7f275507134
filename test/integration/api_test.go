package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/stowage-planner/internal/api"
	"github.com/eugenenazirov/stowage-planner/internal/catalog"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := catalog.NewMemoryStore()
	handler := api.NewHandler(store)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	catalogPayload := map[string]any{
		"containers": []map[string]any{
			{
				"name": "40GP", "category": "standard",
				"innerLengthCm": 1203.2, "innerWidthCm": 235.2, "innerHeightCm": 239.3,
				"maxPayloadKg": 26700.0, "tareWeightKg": 3800.0, "cost": 1.0,
			},
			{
				"name": "40OT", "category": "open-top",
				"innerLengthCm": 1202.9, "innerWidthCm": 234.2, "innerHeightCm": 270.0,
				"maxPayloadKg": 26600.0, "tareWeightKg": 4200.0, "cost": 2.5,
			},
		},
	}
	payload, _ := json.Marshal(catalogPayload)
	rec = performRequest(t, handler, http.MethodPut, "/api/catalog", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from catalog update, got %d", rec.Code)
	}

	packagingPayload := map[string]any{
		"synonyms": map[string]string{"case": "CS", "wooden case": "CS", "drum": "DR", "pallet": "PL"},
	}
	payload, _ = json.Marshal(packagingPayload)
	rec = performRequest(t, handler, http.MethodPut, "/api/packaging-codes", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from packaging update, got %d", rec.Code)
	}

	planPayload := map[string]any{
		"items": []map[string]any{
			{"id": "PUMP", "description": "centrifugal pump", "lengthCm": 300.0, "widthCm": 200.0, "heightCm": 200.0, "weightKg": 1500.0, "quantity": 4, "packaging": "Wooden Case"},
			{"id": "FRAME", "description": "press frame", "lengthCm": 1200.0, "widthCm": 220.0, "heightCm": 255.0, "weightKg": 8000.0, "quantity": 1, "packaging": "case"},
		},
	}
	payload, _ = json.Marshal(planPayload)
	rec = performRequest(t, handler, http.MethodPost, "/api/plan", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from plan, got %d", rec.Code)
	}

	var response struct {
		Containers []struct {
			Type  string   `json:"type"`
			Units []string `json:"units"`
		} `json:"containers"`
		Infeasible []string `json:"infeasible"`
		OOG        []struct {
			ItemID   string `json:"itemId"`
			Override string `json:"override"`
		} `json:"oog"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(response.Infeasible) != 0 {
		t.Fatalf("unexpected infeasible units: %v", response.Infeasible)
	}
	if len(response.OOG) != 1 || response.OOG[0].ItemID != "FRAME" || response.OOG[0].Override != "open-top" {
		t.Fatalf("unexpected OOG entries: %+v", response.OOG)
	}

	var frameContainer string
	var totalUnits int
	for _, container := range response.Containers {
		totalUnits += len(container.Units)
		for _, unit := range container.Units {
			if unit == "FRAME#1" {
				frameContainer = container.Type
			}
		}
	}
	if totalUnits != 5 {
		t.Fatalf("expected 5 packed units, got %d", totalUnits)
	}
	if frameContainer != "40OT" {
		t.Fatalf("expected the frame in the open-top container, got %q", frameContainer)
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/plan/export", payload, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from export, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv, got %s", got)
	}
	if !strings.Contains(rec.Body.String(), "FRAME#1") {
		t.Fatalf("expected exported CSV to list the frame unit")
	}
}
