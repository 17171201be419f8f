package admin

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"aether-sim/internal/cas"
	"aether-sim/internal/sim"
)

// DecisionSource is the read side of a running pipeline.
type DecisionSource interface {
	RunID() string
	Latest() *sim.RoundDecision
	SelectorState(clusterID int) (cas.State, bool)
}

// Server exposes the latest routing decision, per-cluster selector state and
// Prometheus metrics over HTTP.
type Server struct {
	Source  DecisionSource
	Metrics http.Handler
	tpl     *template.Template
}

var indexTemplate = `<!DOCTYPE html>
<html>
<head><title>aether-sim</title></head>
<body>
<h1>Run {{.RunID}}</h1>
{{with .Latest}}
<p>Round {{.Round}} &middot; far ratio {{printf "%.2f" .FarRatio}} &middot; LQI {{printf "%.3f" .LQI.Mean}}{{if .SafetyActive}} &middot; <strong>safety fallback active</strong>{{end}}</p>
<p>Gateways {{.Gateways}} &middot; backbone {{.Backbone}}</p>
<table border="1" cellpadding="4">
<tr><th>Cluster</th><th>Head</th><th>Members</th><th>Mode</th><th>Confidence</th><th>Uplink</th><th>Planned J</th></tr>
{{range .Clusters}}
<tr><td>{{.ClusterID}}</td><td>{{.HeadID}}</td><td>{{len .Members}}</td><td>{{.Mode}}{{if .Forced}} (forced){{end}}</td><td>{{printf "%.2f" .Confidence}}</td><td>{{.UplinkID}}</td><td>{{printf "%.3g" .PlannedEnergyJ}}</td></tr>
{{end}}
</table>
{{else}}
<p>No rounds processed yet.</p>
{{end}}
</body>
</html>
`

func NewServer(src DecisionSource, metrics http.Handler) *Server {
	tpl := template.Must(template.New("index").Parse(indexTemplate))
	return &Server{Source: src, Metrics: metrics, tpl: tpl}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /latest", s.handleLatest)
	mux.HandleFunc("GET /clusters/{id}/state", s.handleClusterState)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}
	return mux
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[Admin] listening on %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		RunID  string
		Latest *sim.RoundDecision
	}{
		RunID:  s.Source.RunID(),
		Latest: s.Source.Latest(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		log.Printf("[Admin] render index: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "run_id": s.Source.RunID()})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	d := s.Source.Latest()
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleClusterState(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid cluster id", http.StatusBadRequest)
		return
	}
	st, ok := s.Source.SelectorState(id)
	if !ok {
		http.Error(w, "unknown cluster", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Admin] encode response: %v", err)
	}
}
