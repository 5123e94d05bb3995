// Package rest exposes the graph authoring and compile-trigger API:
// CRUD over draft graphs, a compile endpoint that runs the pipeline
// and persists its result, and read endpoints over past compile runs.
// Live progress for a running compile goes out over the websocket
// package instead of this one.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowgraph/core/internal/infrastructure/storage"
	"github.com/flowgraph/core/internal/infrastructure/websocket"
	"github.com/flowgraph/core/pkg/compiler"
)

type Server struct {
	store     storage.GraphStore
	registry  *compiler.Registry
	broadcast websocket.Broadcaster
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
}

// ServerConfig controls the optional middleware chain wrapped around
// the routed mux. Every field is off by default; flowgraphd turns
// them on from its command-line flags.
type ServerConfig struct {
	EnableCORS      bool
	EnableRateLimit bool
	RateLimitMax    int
	RateLimitWindow time.Duration
	APIKeys         []string
}

func NewServer(store storage.GraphStore, registry *compiler.Registry, broadcast websocket.Broadcaster, logger *slog.Logger, cfg ServerConfig) *Server {
	s := &Server{
		store:     store,
		registry:  registry,
		broadcast: broadcast,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.routes()

	var h http.Handler = s.mux
	if len(cfg.APIKeys) > 0 {
		h = newAuthMiddleware(cfg.APIKeys).middleware(h)
	}
	if cfg.EnableRateLimit {
		limit, window := cfg.RateLimitMax, cfg.RateLimitWindow
		if limit <= 0 {
			limit = 100
		}
		if window <= 0 {
			window = time.Minute
		}
		h = newRateLimiter(limit, window).middleware(h)
	}
	if cfg.EnableCORS {
		h = corsMiddleware(h)
	}
	h = recoveryMiddleware(logger, h)
	h = loggingMiddleware(logger, h)
	s.handler = h

	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/graphs", s.handleCreateGraph)
	s.mux.HandleFunc("GET /api/v1/graphs", s.handleListGraphs)
	s.mux.HandleFunc("GET /api/v1/graphs/{id}", s.handleGetGraph)
	s.mux.HandleFunc("DELETE /api/v1/graphs/{id}", s.handleDeleteGraph)

	s.mux.HandleFunc("POST /api/v1/graphs/{id}/compiles", s.handleCompileGraph)
	s.mux.HandleFunc("GET /api/v1/graphs/{id}/compiles", s.handleListCompiles)
	s.mux.HandleFunc("GET /api/v1/compiles/{id}", s.handleGetCompile)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
