package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"aether-sim/internal/cas"
	"aether-sim/internal/config"
	"aether-sim/internal/observability"
	"aether-sim/internal/scenario"
	"aether-sim/internal/sim"
)

func newTestServer(t *testing.T, rounds int) (*Server, *sim.Pipeline) {
	t.Helper()
	collector, err := observability.NewDecisionCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("collector: %v", err)
	}
	p, err := sim.NewPipeline(config.Default(), sim.WithMetrics(collector), sim.WithRunID("run-test"))
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	sc := scenario.BuiltIn()["corridor"]
	snaps, err := sc.Snapshots()
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	for _, snap := range snaps[:rounds] {
		if _, err := p.Round(context.Background(), snap); err != nil {
			t.Fatalf("round: %v", err)
		}
	}
	return NewServer(p, collector.Handler()), p
}

func TestHandleLatestBeforeFirstRound(t *testing.T) {
	server, _ := newTestServer(t, 0)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/latest", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %v", w.Code)
	}
}

func TestHandleLatest(t *testing.T) {
	server, _ := newTestServer(t, 2)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/latest", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	var got struct {
		RunID    string `json:"run_id"`
		Round    int    `json:"round"`
		Clusters []struct {
			ClusterID int    `json:"cluster_id"`
			Mode      string `json:"mode"`
		} `json:"clusters"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "run-test" || got.Round != 2 {
		t.Errorf("unexpected decision header %+v", got)
	}
	if len(got.Clusters) != 5 {
		t.Errorf("Expected 5 clusters, got %d", len(got.Clusters))
	}
}

func TestHandleClusterState(t *testing.T) {
	server, p := newTestServer(t, 1)
	handler := server.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clusters/0/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	var st cas.State
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want, _ := p.SelectorState(0)
	if st.LastMode != want.LastMode || !st.HasLast {
		t.Errorf("Expected state %+v, got %+v", want, st)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clusters/99/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown cluster, got %v", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clusters/abc/state", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid id, got %v", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server, _ := newTestServer(t, 0)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"run_id":"run-test"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestHandleMetrics(t *testing.T) {
	server, _ := newTestServer(t, 3)

	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "aether_rounds_total 3") {
		t.Errorf("Expected round counter in metrics output, got:\n%s", body)
	}
}

func TestHandleIndex(t *testing.T) {
	server, _ := newTestServer(t, 1)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Run run-test") || !strings.Contains(body, "Round 1") {
		t.Errorf("index missing run details: %s", body)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	server, _ := newTestServer(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Start(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start returned %v", err)
	}
}
