// Package server provides the HTTP surface: the download endpoint,
// the history listing, and a health check.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fractalqualia/video-downloader-api/internal/history"
	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
	// ShutdownTimeout is the maximum duration to wait for active
	// connections to close on Shutdown.
	ShutdownTimeout time.Duration
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Pipeline *pipeline.Pipeline
	TempRoot string       // parent for per-request scratch directories
	History  *history.Log // nil disables the history endpoint
	FFmpegOK func() bool  // liveness probe for the remux engine
	Logger   *slog.Logger
}

// Server is the HTTP server.
type Server struct {
	config     Config
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates the server and registers all routes.
func New(config Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(chimiddleware.Recoverer)

	h := &handlers{deps: deps, logger: logger}
	router.Get("/api/downloadVideo", h.downloadVideo)
	router.Get("/api/history", h.listHistory)
	router.Get("/healthz", h.health)

	return &Server{
		config: config,
		router: router,
		logger: logger,
	}
}

// Router exposes the mux, mainly for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the server until it fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     s.router,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: a download response is only written after the
		// remux completes, which can legitimately take many minutes.
		IdleTimeout: 120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per completed request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
