// Package api implements the bt-sync HTTP server: signup, API-key auth,
// and the per-user record endpoints clients reconcile against.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jstrand/bt/internal/serverdb"
)

// Server is the HTTP API server for bt-sync.
type Server struct {
	config      Config
	http        *http.Server
	store       *serverdb.ServerDB
	metrics     *Metrics
	rateLimiter *RateLimiter
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *serverdb.ServerDB) (*Server, error) {
	s := &Server{
		config:      cfg,
		store:       store,
		metrics:     NewMetrics(),
		rateLimiter: NewRateLimiter(),
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the fully wired route tree, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health & metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metricz", s.handleMetrics)

	// Auth
	mux.HandleFunc("POST /v1/auth/signup", s.handleSignup)
	mux.HandleFunc("GET /v1/me", s.requireAuth(s.withRateLimit(s.handleMe, s.config.RateLimitOther)))

	// Records
	mux.HandleFunc("GET /v1/users/{id}/records", s.requireUserAuth(s.withRateLimit(s.handleListRecords, s.config.RateLimitRead)))
	mux.HandleFunc("GET /v1/users/{id}/records/{kind}", s.requireUserAuth(s.withRateLimit(s.handleGetRecord, s.config.RateLimitRead)))
	mux.HandleFunc("PUT /v1/users/{id}/records/{kind}", s.requireUserAuth(s.withRateLimit(s.handlePutRecord, s.config.RateLimitWrite)))
	mux.HandleFunc("DELETE /v1/users/{id}/records/{kind}", s.requireUserAuth(s.withRateLimit(s.handleDeleteRecord, s.config.RateLimitWrite)))

	return chain(mux, recoveryMiddleware, traceMiddleware(s.metrics), maxBytesMiddleware(1<<20), signupRateLimitMiddleware(s.rateLimiter, s.config.RateLimitSignup))
}

// handleHealth returns a health check response, pinging the server DB.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a snapshot of server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}
