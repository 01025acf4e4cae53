package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordRunExposedOnHandler(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("enrichment", "completed", 3, 250*time.Millisecond)
	m.RecordDocumentReload("ok")
	m.SetPipelinesLoaded(2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		`fluxion_runs_total{outcome="completed",pipeline="enrichment"} 1`,
		`fluxion_run_emissions_total{pipeline="enrichment"} 3`,
		`fluxion_document_reloads_total{status="ok"} 1`,
		`fluxion_pipelines_loaded 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in scrape output, got:\n%s", want, body)
		}
	}
}

func TestPrivateRegistryIsolation(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.RecordRun("p", "failed", 0, time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), `outcome="failed"`) {
		t.Fatalf("expected b's registry to be independent of a's")
	}
}
