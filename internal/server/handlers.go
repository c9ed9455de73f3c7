package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codeatlas/codeatlas/internal/config"
	"github.com/codeatlas/codeatlas/pkg/errors"
	"github.com/codeatlas/codeatlas/pkg/graph"
	"github.com/codeatlas/codeatlas/pkg/jobs"
	"github.com/codeatlas/codeatlas/pkg/layout"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
	"github.com/codeatlas/codeatlas/pkg/render"
	"github.com/codeatlas/codeatlas/pkg/snapshot"
)

// =============================================================================
// Analysis Endpoints
// =============================================================================

type parseRequest struct {
	FolderPath string `json:"folder_path"`
	Refresh    bool   `json:"refresh,omitempty"`
}

// handleParse submits a folder for analysis. In async mode it queues a job
// and answers 202; in sync mode it blocks and answers 200 with the graph.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body must be JSON"))
		return
	}
	if err := errors.ValidateFolderPath(req.FolderPath); err != nil {
		s.respondError(w, err)
		return
	}

	if s.cfg.Server.AsyncMode {
		job := jobs.New(req.FolderPath)
		if err := s.store.Create(r.Context(), job); err != nil {
			s.respondError(w, err)
			return
		}
		if !s.jobRunner.Enqueue(r.Context(), job.ID) {
			s.respondError(w, errors.New(errors.ErrCodeInternal, "job queue is full"))
			return
		}
		s.respondJSON(w, http.StatusAccepted, map[string]string{
			"job_id": job.ID,
			"status": string(jobs.StatusQueued),
		})
		return
	}

	g, err := s.runner.Analyze(r.Context(), pipeline.Options{
		FolderPath: req.FolderPath,
		Refresh:    req.Refresh,
	})
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, g)
}

// handleStatus reports the state of an analysis job. Failed jobs answer 500
// with the job body so clients can distinguish job failure from transport
// failure by the status field.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := s.store.Get(r.Context(), jobID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	body := map[string]any{
		"job_id": job.ID,
		"status": string(job.Status),
	}
	status := http.StatusOK
	switch job.Status {
	case jobs.StatusCompleted:
		body["result"] = job.Result
	case jobs.StatusFailed:
		body["error"] = job.Error
		status = http.StatusInternalServerError
	}
	s.respondJSON(w, status, body)
}

// handleHealth reports liveness and the server's execution mode.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"service":    serviceName,
		"async_mode": s.cfg.Server.AsyncMode,
	})
}

// =============================================================================
// Layout and Render Endpoints
// =============================================================================

type layoutRequest struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	// Optional layout overrides; zero values use the server's configuration.
	LevelHeight   float64 `json:"level_height,omitempty"`
	NodeSpacing   float64 `json:"node_spacing,omitempty"`
	GroupSpacing  float64 `json:"group_spacing,omitempty"`
	Margin        float64 `json:"margin,omitempty"`
	FallbackLevel int     `json:"fallback_level,omitempty"`
}

func (req *layoutRequest) config(defaults config.Layout) layout.Config {
	cfg := layout.Config{
		LevelHeight:   req.LevelHeight,
		NodeSpacing:   req.NodeSpacing,
		GroupSpacing:  req.GroupSpacing,
		Margin:        req.Margin,
		FallbackLevel: req.FallbackLevel,
	}
	if cfg.LevelHeight == 0 {
		cfg.LevelHeight = defaults.LevelHeight
	}
	if cfg.NodeSpacing == 0 {
		cfg.NodeSpacing = defaults.NodeSpacing
	}
	if cfg.GroupSpacing == 0 {
		cfg.GroupSpacing = defaults.GroupSpacing
	}
	if cfg.Margin == 0 {
		cfg.Margin = defaults.Margin
	}
	if cfg.FallbackLevel == 0 {
		cfg.FallbackLevel = defaults.FallbackLevel
	}
	return cfg
}

// handleLayout computes placements for an arbitrary node/edge set. Clients
// use this to re-layout filtered views without re-analyzing.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body must be JSON"))
		return
	}

	res := layout.Compute(req.Nodes, req.Edges, req.config(s.cfg.Layout))
	positioned := layout.Decorate(req.Nodes, res)

	s.respondJSON(w, http.StatusOK, map[string]any{
		"nodes": positioned,
		"edges": req.Edges,
	})
}

type renderRequest struct {
	layoutRequest
	ShowEdges   bool `json:"show_edges,omitempty"`
	Interactive bool `json:"interactive,omitempty"`
}

// handleRenderSVG lays out and renders a node/edge set as SVG.
func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body must be JSON"))
		return
	}

	res := layout.Compute(req.Nodes, req.Edges, req.config(s.cfg.Layout))
	positioned := layout.Decorate(req.Nodes, res)

	var opts []render.SVGOption
	if req.ShowEdges {
		opts = append(opts, render.WithEdges())
	}
	if req.Interactive {
		opts = append(opts, render.WithInteraction())
	}
	svg := render.SVG(positioned, req.Edges, opts...)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// =============================================================================
// Snapshot Endpoints
// =============================================================================

type snapshotSaveRequest struct {
	FolderPath string      `json:"folder_path,omitempty"`
	Graph      graph.Graph `json:"graph"`
}

func (s *Server) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	var req snapshotSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, errors.New(errors.ErrCodeInvalidInput, "request body must be JSON"))
		return
	}

	snap := &snapshot.Snapshot{
		Name:       chi.URLParam(r, "name"),
		FolderPath: req.FolderPath,
		Graph:      req.Graph,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.snapshots.Save(r.Context(), snap); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"name": snap.Name})
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.snapshots.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"snapshots": infos})
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

// respondError maps domain error codes to HTTP statuses and emits the
// message in the {"error": ...} shape clients expect.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeJobNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeAnalyzerUnavailable:
		status = http.StatusBadGateway
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	s.respondJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}
