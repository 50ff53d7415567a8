// Package server exposes the engine over a small JSON HTTP API: the
// external request-handling layer in front of the retrieval engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phuslu/log"

	"aigist/internal/domain"
)

// Server manages the HTTP listener and routes.
type Server struct {
	engine domain.Engine
	mux    *http.ServeMux
	srv    *http.Server
	logger log.Logger
}

func New(engine domain.Engine, host string, port int, logger log.Logger) *Server {
	s := &Server{engine: engine, logger: logger}
	s.mux = http.NewServeMux()
	s.routes()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: s.withLogging(s.mux),
		// completion calls dominate response time
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/documents", s.handleIngest)
	s.mux.HandleFunc("GET /api/documents", s.handleList)
	s.mux.HandleFunc("DELETE /api/documents/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /api/ask", s.handleAsk)
	s.mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info().Str("address", s.srv.Addr).Msg("HTTP server starting")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}
