package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordAlgorithmRun(t *testing.T) {
	r := NewRegistry()

	r.RecordAlgorithmRun("pagerank", "success", 120*time.Millisecond, 500)
	r.RecordAlgorithmRun("pagerank", "error", 5*time.Millisecond, 0)

	body := scrape(t, r)
	if !strings.Contains(body, `graphalgo_algorithm_runs_total{algorithm="pagerank",status="success"} 1`) {
		t.Errorf("Missing success counter in output")
	}
	if !strings.Contains(body, `graphalgo_algorithm_runs_total{algorithm="pagerank",status="error"} 1`) {
		t.Errorf("Missing error counter in output")
	}
}

func TestRecordGraphBuild(t *testing.T) {
	r := NewRegistry()

	r.RecordGraphBuild(50*time.Millisecond, 100, 250)

	body := scrape(t, r)
	if !strings.Contains(body, "graphalgo_graph_nodes 100") {
		t.Errorf("Missing node gauge in output")
	}
	if !strings.Contains(body, "graphalgo_graph_edges 250") {
		t.Errorf("Missing edge gauge in output")
	}
}

func TestRecordWriteBatch(t *testing.T) {
	r := NewRegistry()

	r.RecordWriteBatch("louvain", "success", 100)
	r.RecordWriteBatch("louvain", "success", 50)

	body := scrape(t, r)
	if !strings.Contains(body, `graphalgo_write_batches_total{algorithm="louvain",status="success"} 2`) {
		t.Errorf("Missing batch counter in output")
	}
	if !strings.Contains(body, "graphalgo_write_mutations_total 150") {
		t.Errorf("Missing mutation counter in output")
	}
}

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}
