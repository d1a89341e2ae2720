// Package httpapi exposes the analysis API: submit a run, fetch a stored
// result, and liveness/readiness probes.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/cache"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/db"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/metrics"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
	"github.com/SayantanXBTC/AnalysisPlatform/internal/workflows"
)

// Server routes analysis requests into Temporal and serves stored results.
type Server struct {
	temporal  client.Client
	taskQueue string
	template  workflows.PlanTemplate
	results   *cache.ResultCache
	store     *db.Store
	logger    *zap.Logger
}

// NewServer wires the API. results and store may be nil; idempotent
// replay and the fetch endpoint then degrade gracefully.
func NewServer(tc client.Client, taskQueue string, template workflows.PlanTemplate, results *cache.ResultCache, store *db.Store, logger *zap.Logger) *Server {
	return &Server{
		temporal:  tc,
		taskQueue: taskQueue,
		template:  template,
		results:   results,
		store:     store,
		logger:    logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /analyses/{id}", s.handleGetAnalysis)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	return mux
}

type analyzeRequest struct {
	RequestID string `json:"request_id,omitempty"`
	Subject   string `json:"subject"`
	Context   string `json:"context"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req := models.AnalysisRequest{
		RequestID: body.RequestID,
		Subject:   body.Subject,
		Context:   body.Context,
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A replayed request ID returns the stored result instead of running
	// the analysis again.
	if s.results != nil {
		if cached, found, err := s.results.Get(r.Context(), req.RequestID); err == nil && found {
			s.logger.Info("serving cached analysis",
				zap.String("request_id", req.RequestID))
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	plan := s.template.For(req)
	start := time.Now()

	run, err := s.temporal.ExecuteWorkflow(r.Context(), client.StartWorkflowOptions{
		ID:        "analysis-" + req.RequestID,
		TaskQueue: s.taskQueue,
	}, workflows.AnalysisWorkflow, plan)
	if err != nil {
		s.logger.Error("failed to start analysis workflow",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start analysis")
		return
	}

	var result models.AnalysisResult
	if err := run.Get(r.Context(), &result); err != nil {
		s.logger.Error("analysis workflow failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("analysis served",
		zap.String("request_id", req.RequestID),
		zap.String("subject", req.Subject),
		zap.Float64("composite", result.Composite.Score))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing analysis id")
		return
	}

	if s.results != nil {
		if cached, found, err := s.results.Get(r.Context(), id); err == nil && found {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}
	if s.store == nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	res, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to load analysis",
			zap.String("request_id", id),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if s.results != nil {
		if err := s.results.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, checks)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
