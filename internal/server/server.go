// Package server exposes the lensing pipeline over HTTP: image uploads,
// lensed previews, and asynchronous animated exports.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gravitymirage/gravitymirage/pkg/cache"
	"github.com/gravitymirage/gravitymirage/pkg/config"
	"github.com/gravitymirage/gravitymirage/pkg/lens"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 32 << 20

// Server wires the render engine, storage and caches behind the HTTP API.
type Server struct {
	cfg      config.Config
	logger   *log.Logger
	renderer *lens.Renderer

	store   *ImageStore
	exports *ExportStore
	jobs    *JobManager

	artifacts cache.Cache
	keyer     cache.Keyer
	backend   string
}

// New assembles a server from its parts. artifacts caches encoded render
// output; backend names it for log and metrics labels.
func New(ctx context.Context, cfg config.Config, logger *log.Logger, renderer *lens.Renderer, artifacts cache.Cache, backend string) (*Server, error) {
	store, err := NewImageStore(cfg.Storage.UploadsDir)
	if err != nil {
		return nil, err
	}
	exports, err := NewExportStore(cfg.Storage.ExportsDir)
	if err != nil {
		return nil, err
	}
	if artifacts == nil {
		artifacts = cache.NewNullCache()
		backend = "null"
	}
	keyer := cache.Keyer(cache.NewDefaultKeyer())
	if backend == "redis" {
		// A shared Redis instance may serve other applications.
		keyer = cache.NewScopedKeyer(keyer, "gravitymirage:")
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		renderer:  renderer,
		store:     store,
		exports:   exports,
		jobs:      NewJobManager(ctx, logger),
		artifacts: artifacts,
		keyer:     keyer,
		backend:   backend,
	}, nil
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Get("/", s.handleListImages)
			r.Post("/", s.handleUpload)
			r.Get("/{filename}", s.handleGetImage)
			r.Delete("/{filename}", s.handleDeleteImage)
		})
		r.Get("/render/{filename}", s.handleRender)
		r.Post("/export/{filename}", s.handleExport)
		r.Get("/jobs/{id}", s.handleJobStatus)
		r.Get("/exports/{filename}", s.handleGetExport)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully with a deadline.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.jobs.Wait()
	return nil
}

// Close releases the artifact cache backend.
func (s *Server) Close() error {
	return s.artifacts.Close()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logRequests logs one line per request in the structured format the rest
// of the process uses.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
