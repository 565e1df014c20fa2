// Package server exposes a prepared routing engine over HTTP.
//
// Endpoints:
//
//	GET  /healthz          liveness and version
//	GET  /v1/graph         graph and preparation statistics
//	GET  /v1/cells         cells as GeoJSON, optionally clipped to ?bbox=
//	POST /v1/route         route one request (?format=geojson for GeoJSON)
//	POST /v1/route/batch   route an array of requests
//
// Errors are JSON objects carrying the error code of pkg/errors and the
// request ID.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/regionroute/pkg/pipeline"
)

const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"

	// DefaultTimeout bounds the time spent on one routing request.
	DefaultTimeout = 30 * time.Second

	// MaxBatch is the largest accepted batch.
	MaxBatch = 100

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server answers routing requests against one engine.
type Server struct {
	runner  *pipeline.Runner
	eng     *pipeline.Engine
	opts    pipeline.Options
	logger  *log.Logger
	timeout time.Duration
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout sets the per-request routing timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server. opts supplies the default mode and cache settings
// for every request.
func New(runner *pipeline.Runner, eng *pipeline.Engine, opts pipeline.Options, logger *log.Logger, options ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		eng:     eng,
		opts:    opts,
		logger:  logger,
		timeout: DefaultTimeout,
	}
	for _, o := range options {
		o(s)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/cells", s.handleCells)
		r.Post("/route", s.handleRoute)
		r.Post("/route/batch", s.handleBatch)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "cells", len(s.eng.Cells))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
