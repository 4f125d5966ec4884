// Package server serves an assembled visualization directory together
// with a small JSON API over the invocation history.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/me/seqqc/internal/qc"
	"github.com/me/seqqc/internal/store"
)

// shutdownTimeout bounds how long Serve waits for open requests.
const shutdownTimeout = 5 * time.Second

// Server is the report viewer.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	startTime time.Time
	reportDir string
	store     store.Store  // optional; nil serves an empty history
	registry  *qc.Registry // optional; nil serves an empty action list
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithStore serves invocation history from st.
func WithStore(st store.Store) Option {
	return func(s *Server) {
		s.store = st
	}
}

// WithRegistry lists the actions of reg under /api/v1/actions.
func WithRegistry(reg *qc.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New creates a Server for the visualization in reportDir.
func New(reportDir string, logger *slog.Logger, opts ...Option) (*Server, error) {
	info, err := os.Stat(reportDir)
	if err != nil {
		return nil, fmt.Errorf("report dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("report dir %s is not a directory", reportDir)
	}

	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		startTime: time.Now(),
		reportDir: reportDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "report_dir", s.reportDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Get("/actions", s.handleListActions)
		r.Route("/invocations", func(r chi.Router) {
			r.Get("/", s.handleListInvocations)
			r.Get("/{id}", s.handleGetInvocation)
		})
	})

	// Everything else is the visualization itself.
	r.Handle("/*", http.FileServer(http.Dir(s.reportDir)))
}
