// Package webui serves the simulator's JSON API.
package webui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mandrykarina/GC/internal/metrics"
	"github.com/mandrykarina/GC/internal/scenario"
	"github.com/mandrykarina/GC/internal/service"
	"github.com/mandrykarina/GC/pkg/config"
	apperrors "github.com/mandrykarina/GC/pkg/errors"
	"github.com/mandrykarina/GC/pkg/model"
	"github.com/mandrykarina/GC/pkg/utils"
)

// maxBodyBytes bounds simulate request bodies.
const maxBodyBytes = 1 << 20

// Backend is the part of the service the API exposes.
type Backend interface {
	Simulate(ctx context.Context, req service.SimulateRequest) (*model.Comparison, error)
	History(ctx context.Context, limit int) ([]*model.Comparison, error)
	GetRun(ctx context.Context, runID string) (*model.Comparison, error)
	DeleteRun(ctx context.Context, runID string) error
	HealthCheck(ctx context.Context) error
	Config() *config.Config
	Metrics() *metrics.Metrics
}

// Server represents the API server
type Server struct {
	backend Backend
	port    int
	logger  utils.Logger
	server  *http.Server
}

// NewServer creates a new API server
func NewServer(backend Backend, port int, logger utils.Logger) *Server {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Server{
		backend: backend,
		port:    port,
		logger:  logger,
	}
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("DELETE /api/runs/{id}", s.handleDeleteRun)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.backend.Metrics().Handler())

	return s.logRequests(mux)
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	s.logger.Info("Starting API server at http://localhost:%d", s.port)
	s.logger.Info("Press Ctrl+C to stop")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("%s %s -> %d (%v)", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type configResponse struct {
	Scenarios []string       `json:"scenarios"`
	Defaults  map[string]any `json:"defaults"`
	Limits    map[string]any `json:"limits"`
}

// handleConfig returns the accepted scenarios, defaults and limits
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := s.backend.Config()
	writeJSON(w, http.StatusOK, configResponse{
		Scenarios: scenario.Presets(),
		Defaults: map[string]any{
			"heap_size":   cfg.Simulation.HeapSize,
			"num_objects": cfg.Simulation.NumObjects,
			"object_size": cfg.Simulation.ObjectSize,
			"scenario":    cfg.Simulation.Scenario,
		},
		Limits: map[string]any{
			"min_heap_size":   cfg.Limits.MinHeapSize,
			"max_heap_size":   cfg.Limits.MaxHeapSize,
			"min_num_objects": cfg.Limits.MinObjects,
			"max_num_objects": cfg.Limits.MaxObjects,
			"min_object_size": cfg.Limits.MinObjectSize,
			"max_object_size": cfg.Limits.MaxObjectSize,
		},
	})
}

type simulateResponse struct {
	Success    bool                    `json:"success"`
	RunID      string                  `json:"run_id"`
	Parameters service.SimulateRequest `json:"parameters"`
	Agree      bool                    `json:"agree"`
	RC         *model.GCResult         `json:"rc,omitempty"`
	MS         *model.GCResult         `json:"ms,omitempty"`
	Results    []model.GCResult        `json:"results"`
}

// handleSimulate runs a generated scenario against the collectors
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req service.SimulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid request body", err))
		return
	}

	cmp, err := s.backend.Simulate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := simulateResponse{
		Success:    true,
		RunID:      cmp.RunID,
		Parameters: req,
		Agree:      cmp.Agree,
		Results:    cmp.Results,
	}
	resp.Parameters.ScenarioType = cmp.ScenarioName
	resp.Parameters.HeapSize = cmp.HeapSize
	if rc, ok := cmp.Result("reference_counting"); ok {
		resp.RC = rc
	}
	if ms, ok := cmp.Result("mark_sweep"); ok {
		resp.MS = ms
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory lists recent runs, newest first
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, apperrors.Newf(apperrors.CodeInvalidInput, "invalid limit %q", raw))
			return
		}
		limit = n
	}

	runs, err := s.backend.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*model.Comparison{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": runs,
		"total":   len(runs),
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.backend.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteRun(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func statusFor(err error) int {
	switch apperrors.GetErrorCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeParseError:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("API error: %v", err)
	}
	writeJSON(w, status, map[string]any{
		"success": false,
		"code":    apperrors.GetErrorCode(err),
		"error":   apperrors.GetErrorMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
