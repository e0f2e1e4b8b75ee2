// Package server exposes pipeline views over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /api/v1/pipelines
//	GET /api/v1/pipelines/{name}/view?cloudProvider=AWS
//	GET /api/v1/pipelines/{name}/graph.svg?cloudProvider=AWS
//	GET /api/v1/pipelines/{name}/history?cloudProvider=AWS
//
// View and SVG responses are produced by [pipeline.Runner] and cached by it.
// Passing refresh=true bypasses the API cache and records the run in the
// history store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/costgraph/pkg/config"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves pipeline views.
type Server struct {
	runner    *pipeline.Runner
	pipelines []config.Pipeline
	logger    *log.Logger
	version   string
	now       func() time.Time
	router    chi.Router
}

// New creates a server backed by runner. The pipeline catalogue is what
// /api/v1/pipelines lists; views can be requested for any pipeline name.
func New(runner *pipeline.Runner, catalogue []config.Pipeline, logger *log.Logger, version string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:    runner,
		pipelines: catalogue,
		logger:    logger,
		version:   version,
		now:       time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/pipelines", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/view", s.handleView)
			r.Get("/graph.svg", s.handleSVG)
			r.Get("/history", s.handleHistory)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
