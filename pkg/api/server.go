// Package api exposes the analytics pipeline over HTTP. Runs are triggered
// with POSTs and execute synchronously: the response carries the full run
// report.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/algorithms"
	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
	"github.com/dd0wney/cluso-graph-analytics/pkg/store"
)

const version = "1.0.0"

// Server is the HTTP front end over one pipeline.
type Server struct {
	pipeline  *pipeline.Pipeline
	store     store.Store
	metrics   *metrics.Registry
	logger    logging.Logger
	startTime time.Time

	host string
	port int
}

// NewServer creates a server. The metrics registry may be nil, in which case
// /metrics is not served. A nil logger disables logging.
func NewServer(p *pipeline.Pipeline, s store.Store, m *metrics.Registry, logger logging.Logger, host string, port int) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		pipeline:  p,
		store:     s,
		metrics:   m,
		logger:    logger.With(logging.Component("api")),
		startTime: time.Now(),
		host:      host,
		port:      port,
	}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/algorithms", s.handleAlgorithms)
	mux.HandleFunc("/statistics", s.handleStatistics)
	mux.HandleFunc("/centrality/run", s.handleRunCentrality)
	mux.HandleFunc("/community/run", s.handleRunCommunity)
	mux.HandleFunc("/algorithms/run", s.handleRunAlgorithm)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return s.loggingMiddleware(mux)
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // runs are synchronous and can be long
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server starting", logging.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// IndexResponse describes the service.
type IndexResponse struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse reports service and store health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// AlgorithmsResponse lists the enabled algorithms by family.
type AlgorithmsResponse struct {
	Centrality []string `json:"centrality"`
	Community  []string `json:"community"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.respondJSON(w, http.StatusOK, IndexResponse{
		Service: "graph-analytics",
		Version: version,
		Endpoints: []string{
			"GET /health",
			"GET /algorithms",
			"GET /statistics",
			"GET /metrics",
			"POST /centrality/run",
			"POST /community/run",
			"POST /algorithms/run",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	health := HealthResponse{
		Status:    "healthy",
		Store:     "ok",
		Timestamp: time.Now().UTC(),
		Version:   version,
		Uptime:    time.Since(s.startTime).String(),
	}
	if err := s.store.Ping(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		health.Status = "degraded"
		health.Store = "unreachable"
	}
	s.respondJSON(w, status, health)
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	centrality, community := s.pipeline.Names()
	s.respondJSON(w, http.StatusOK, AlgorithmsResponse{
		Centrality: centrality,
		Community:  community,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "use GET")
		return
	}
	s.respondJSON(w, http.StatusOK, s.pipeline.Statistics())
}

// GraphParameters overrides graph construction for one request.
type GraphParameters struct {
	EntityType       *string `json:"entity_type,omitempty"`
	Limit            *int    `json:"limit,omitempty"`
	Directed         *bool   `json:"directed,omitempty"`
	IncludeSelfLoops *bool   `json:"include_self_loops,omitempty"`
	MinDegree        *int    `json:"min_degree,omitempty"`
}

// RunRequest is the optional body of a family run. An empty body (or
// Algorithm "all") runs every enabled algorithm with the configured options.
type RunRequest struct {
	Algorithm       string                       `json:"algorithm,omitempty"`
	Parameters      map[string]algorithms.Params `json:"parameters,omitempty"`
	WriteBack       *bool                        `json:"write_back,omitempty"`
	GraphParameters *GraphParameters             `json:"graph_parameters,omitempty"`
}

func (s *Server) handleRunCentrality(w http.ResponseWriter, r *http.Request) {
	s.runFamily(w, r, func(p *pipeline.Pipeline, ctx context.Context) (*pipeline.RunReport, error) {
		return p.RunCentrality(ctx)
	})
}

func (s *Server) handleRunCommunity(w http.ResponseWriter, r *http.Request) {
	s.runFamily(w, r, func(p *pipeline.Pipeline, ctx context.Context) (*pipeline.RunReport, error) {
		return p.RunCommunity(ctx)
	})
}

func (s *Server) runFamily(w http.ResponseWriter, r *http.Request, runAll func(*pipeline.Pipeline, context.Context) (*pipeline.RunReport, error)) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	p := s.pipeline.WithOptions(req.apply(s.pipeline.Options()))

	var report *pipeline.RunReport
	var err error
	if req.Algorithm != "" && req.Algorithm != "all" {
		report, err = p.RunAlgorithm(r.Context(), req.Algorithm)
	} else {
		report, err = runAll(p, r.Context())
	}
	if err != nil {
		if errors.Is(err, algorithms.ErrAlgorithmNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown algorithm %q", req.Algorithm))
			return
		}
		s.logger.Error("run failed", logging.Error(err))
		s.respondError(w, http.StatusBadGateway, "pipeline run failed")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

// apply layers request overrides over the configured options.
func (req *RunRequest) apply(opts pipeline.Options) pipeline.Options {
	if req.Parameters != nil {
		opts.Params = req.Parameters
	}
	if req.WriteBack != nil {
		opts.WriteBack = *req.WriteBack
	}
	if gp := req.GraphParameters; gp != nil {
		if gp.EntityType != nil {
			opts.EntityType = *gp.EntityType
		}
		if gp.Limit != nil {
			opts.FetchLimit = *gp.Limit
		}
		if gp.Directed != nil {
			opts.Build.Directed = *gp.Directed
		}
		if gp.IncludeSelfLoops != nil {
			opts.Build.IncludeSelfLoops = *gp.IncludeSelfLoops
		}
		if gp.MinDegree != nil {
			opts.Build.MinDegree = *gp.MinDegree
		}
	}
	return opts
}

// RunAlgorithmRequest names a single algorithm to execute.
type RunAlgorithmRequest struct {
	Algorithm string `json:"algorithm"`
}

func (s *Server) handleRunAlgorithm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	var req RunAlgorithmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Algorithm == "" {
		s.respondError(w, http.StatusBadRequest, "algorithm is required")
		return
	}

	report, err := s.pipeline.RunAlgorithm(r.Context(), req.Algorithm)
	if err != nil {
		if errors.Is(err, algorithms.ErrAlgorithmNotFound) {
			s.respondError(w, http.StatusNotFound, fmt.Sprintf("unknown algorithm %q", req.Algorithm))
			return
		}
		s.logger.Error("run failed", logging.Algorithm(req.Algorithm), logging.Error(err))
		s.respondError(w, http.StatusBadGateway, "pipeline run failed")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", time.Since(start)),
		)
	})
}
