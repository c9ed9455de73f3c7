// Package server implements the codeatlas HTTP API.
//
// The API mirrors the analyzer backend's job protocol so existing clients
// work unchanged:
//
//	POST /parse          submit a folder for analysis (202 + job in async
//	                     mode, 200 + graph in sync mode)
//	GET  /status/{id}    poll an analysis job
//	GET  /health         liveness probe
//
// and adds layout and rendering endpoints on top:
//
//	POST /layout         compute placements for a node/edge set
//	POST /render/svg     render a node/edge set to SVG
//	PUT  /snapshots/{name}, GET /snapshots, GET/DELETE /snapshots/{name}
//
// The layout endpoint accepts arbitrary node subsets, so a UI can re-layout
// a filtered view without re-analyzing the codebase.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/codeatlas/codeatlas/internal/config"
	"github.com/codeatlas/codeatlas/pkg/jobs"
	"github.com/codeatlas/codeatlas/pkg/pipeline"
	"github.com/codeatlas/codeatlas/pkg/snapshot"
)

const (
	serviceName     = "codeatlas"
	shutdownTimeout = 10 * time.Second
	requestTimeout  = 5 * time.Minute
)

// Server wires the HTTP API to the pipeline, job store, and snapshot store.
type Server struct {
	cfg       config.Config
	logger    *log.Logger
	runner    *pipeline.Runner
	store     jobs.Store
	jobRunner *jobs.Runner
	snapshots snapshot.Store
}

// New assembles a server from its dependencies. jobRunner may be nil in
// synchronous mode.
func New(cfg config.Config, runner *pipeline.Runner, store jobs.Store, jobRunner *jobs.Runner, snaps snapshot.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		runner:    runner,
		store:     store,
		jobRunner: jobRunner,
		snapshots: snaps,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Post("/parse", s.handleParse)
	r.Get("/status/{jobID}", s.handleStatus)
	r.Get("/health", s.handleHealth)

	r.Post("/layout", s.handleLayout)
	r.Post("/render/svg", s.handleRenderSVG)

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleSnapshotList)
		r.Put("/{name}", s.handleSnapshotSave)
		r.Get("/{name}", s.handleSnapshotGet)
		r.Delete("/{name}", s.handleSnapshotDelete)
	})

	return r
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully. In
// async mode it also runs the job worker pool for the lifetime of ctx.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Server.AsyncMode && s.jobRunner != nil {
		go s.jobRunner.Run(ctx)
	}

	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Server.Addr, "async", s.cfg.Server.AsyncMode)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// logRequests logs one line per request in the charm logger format.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
