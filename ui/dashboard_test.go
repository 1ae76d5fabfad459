package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plaquerisk/internal"
	"plaquerisk/internal/testkit"
	"plaquerisk/ports"
)

func seedReport(t *testing.T, store *testkit.InMemoryStore) {
	t.Helper()
	err := store.SaveReport(context.Background(), ports.ReportRecord{
		RunID:           "0198b2c0-0000-7000-8000-000000000001",
		ModelName:       "adverse_outcome",
		Iterations:      300,
		Degenerate:      12,
		Seed:            42,
		OptimismMode:    "full",
		ApparentROCAUC:  0.91,
		OptimismROCAUC:  0.07,
		CorrectedROCAUC: 0.84,
		ApparentPRAUC:   0.78,
		OptimismPRAUC:   0.06,
		CorrectedPRAUC:  0.72,
		IterationDetail: []byte("[]"),
		CreatedAt:       time.Now(),
	})
	if err != nil {
		t.Fatalf("seed report: %v", err)
	}
}

func TestDashboard_EmptyState(t *testing.T) {
	dash, err := NewDashboard(testkit.NewInMemoryStore(), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	w := httptest.NewRecorder()
	dash.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("dashboard returned %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No validation runs recorded yet") {
		t.Error("empty state message missing")
	}
}

func TestDashboard_RendersLatestReport(t *testing.T) {
	store := testkit.NewInMemoryStore()
	seedReport(t, store)
	dash, err := NewDashboard(store, internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	w := httptest.NewRecorder()
	dash.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("dashboard returned %d", w.Code)
	}
	body := w.Body.String()
	for _, fragment := range []string{"adverse_outcome", "0.8400", "0.7200", "seed 42"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("dashboard missing %q", fragment)
		}
	}
}

func TestDashboard_ModelCard(t *testing.T) {
	store := testkit.NewInMemoryStore()
	seedReport(t, store)
	dash, err := NewDashboard(store, internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	w := httptest.NewRecorder()
	dash.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/modelcard", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("model card returned %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<h1") {
		t.Error("markdown headings should render as HTML")
	}
	if !strings.Contains(body, "Not a medical device") {
		t.Error("model card must carry the intended-use caveat")
	}
}

func TestDashboard_ModelCardWithoutReports(t *testing.T) {
	dash, err := NewDashboard(testkit.NewInMemoryStore(), internal.NewLogger(internal.LogLevelError))
	if err != nil {
		t.Fatalf("NewDashboard failed: %v", err)
	}

	w := httptest.NewRecorder()
	dash.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/modelcard", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without reports, got %d", w.Code)
	}
}
