// Command flowgraphd is the reference HTTP+WebSocket front door for the
// graph compiler: REST endpoints to author draft graphs and trigger
// compiles, and a WebSocket endpoint streaming fixpoint-loop progress
// to whoever is watching a graph or a specific compile run.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flowgraph/core/internal/infrastructure/api/rest"
	"github.com/flowgraph/core/internal/infrastructure/config"
	"github.com/flowgraph/core/internal/infrastructure/logger"
	"github.com/flowgraph/core/internal/infrastructure/storage"
	"github.com/flowgraph/core/internal/infrastructure/websocket"
	"github.com/flowgraph/core/pkg/compiler"
)

func main() {
	var (
		port          = flag.String("port", "", "Server port (overrides config)")
		enableCORS    = flag.Bool("cors", true, "Enable CORS")
		enableRL      = flag.Bool("rate-limit", false, "Enable request rate limiting")
		apiKeys       = flag.String("api-keys", "", "Comma-separated API keys for REST authentication")
		requireWSAuth = flag.Bool("ws-auth", false, "Require a JWT on the WebSocket endpoint")
	)
	flag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}

	log := logger.Setup(cfg.LogLevel)
	log.Info("starting flowgraphd",
		"port", cfg.Port,
		"cors", *enableCORS,
		"rate_limit", *enableRL,
	)

	var store storage.GraphStore
	if cfg.DatabaseDSN != "" {
		bunStore := storage.NewBunGraphStore(cfg.DatabaseDSN)
		if err := bunStore.InitSchema(context.Background()); err != nil {
			log.Error("failed to initialize database schema", "error", err)
			os.Exit(1)
		}
		store = bunStore
		log.Info("using BunGraphStore (PostgreSQL)", "dsn", maskDSN(cfg.DatabaseDSN))
	} else {
		store = storage.NewMemoryGraphStore()
		log.Info("using MemoryGraphStore (no DATABASE_DSN configured)")
	}

	registry, err := compiler.NewRegistry()
	if err != nil {
		log.Error("failed to build block registry", "error", err)
		os.Exit(1)
	}

	hub := websocket.NewHub(log)
	go hub.Run()

	var auth websocket.Authenticator = websocket.NewNoAuth()
	if *requireWSAuth {
		if cfg.JWTSecret == "" {
			log.Error("ws-auth requires JWT_SECRET to be set")
			os.Exit(1)
		}
		auth = websocket.NewJWTAuth(cfg.JWTSecret)
	}
	wsHandler := websocket.NewHandler(hub, auth, log)

	var apiKeysList []string
	for _, key := range strings.Split(*apiKeys, ",") {
		if key = strings.TrimSpace(key); key != "" {
			apiKeysList = append(apiKeysList, key)
		}
	}
	if len(apiKeysList) > 0 {
		log.Info("api key authentication enabled", "count", len(apiKeysList))
	}

	serverCfg := rest.ServerConfig{
		EnableCORS:      *enableCORS,
		EnableRateLimit: *enableRL,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
		APIKeys:         apiKeysList,
	}
	apiServer := rest.NewServer(store, registry, hub, log, serverCfg)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiServer)
	mux.Handle("/ws", wsHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("available endpoints",
		"health", "GET /health",
		"ready", "GET /ready",
		"graphs", "GET /api/v1/graphs",
		"create_graph", "POST /api/v1/graphs",
		"compile", "POST /api/v1/graphs/{id}/compiles",
		"progress", "GET /ws",
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := store.Close(); err != nil {
		log.Error("failed to close store", "error", err)
	}

	log.Info("server exited gracefully")
}

// maskDSN masks the password portion of a DSN string for safe logging.
func maskDSN(dsn string) string {
	if len(dsn) == 0 {
		return ""
	}

	start, end := -1, -1
	for i := 0; i < len(dsn); i++ {
		if dsn[i] == ':' && start == -1 {
			if i+1 < len(dsn) && dsn[i+1] != '/' {
				start = i + 1
			}
		}
		if dsn[i] == '@' && start != -1 {
			end = i
			break
		}
	}

	if start != -1 && end != -1 && end > start {
		return dsn[:start] + "***" + dsn[end:]
	}
	return dsn
}
