package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tobilg/otlp-langfuse-bridge/internal/config"
	"github.com/tobilg/otlp-langfuse-bridge/internal/handlers"
	"github.com/tobilg/otlp-langfuse-bridge/internal/langfuse"
	"github.com/tobilg/otlp-langfuse-bridge/internal/logger"
	appMiddleware "github.com/tobilg/otlp-langfuse-bridge/internal/middleware"
	"github.com/tobilg/otlp-langfuse-bridge/internal/session"
	"github.com/tobilg/otlp-langfuse-bridge/internal/websocket"
	"github.com/tobilg/otlp-langfuse-bridge/pkg/compression"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// sweeperInterval drives the periodic idle-session sweep
const sweeperInterval = 60 * time.Second

type Server struct {
	router   chi.Router
	registry *session.Registry
	wsHub    *websocket.Hub
	config   *config.Config

	// HTTP server for graceful shutdown
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg *config.Config) *Server {
	sink := langfuse.NewClient(cfg.LangfuseHost, cfg.LangfusePublicKey, cfg.LangfuseSecretKey)

	hub := websocket.NewHub()
	go hub.Run()

	registry := session.NewRegistry(sink, websocket.NewNotifier(hub), cfg.SessionTimeout)
	registry.StartSweeper(sweeperInterval)

	s := &Server{
		router:   chi.NewRouter(),
		registry: registry,
		wsHub:    hub,
		config:   cfg,
	}

	langfuseConfigured := cfg.LangfusePublicKey != "" && cfg.LangfuseSecretKey != ""
	h := handlers.New(registry, hub, langfuseConfigured)

	s.setupMiddleware(h)
	s.setupRoutes(h)

	return s
}

func (s *Server) setupMiddleware(h *handlers.Handlers) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(RequestLogger)
	s.router.Use(middleware.Recoverer)

	// OTLP clients may compress payloads
	s.router.Use(compression.GzipDecompressMiddleware)

	// Requests rejected for size still count toward the /health counters
	s.router.Use(appMiddleware.PayloadLimitMiddleware(s.config.MaxRequestSize, h.CountRejected))

	// CORS for browser-based health and live-feed consumers
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Encoding", "Authorization"},
		MaxAge:         300,
	}))
}

func (s *Server) ListenAndServe() error {
	log := logger.Logger()

	addr := fmt.Sprintf(":%d", s.config.OTLPPort)
	h2s := &http2.Server{}
	handler := h2c.NewHandler(s.router, h2s)

	s.mu.Lock()
	// WriteTimeout stays disabled so WebSocket connections can persist
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}
	s.mu.Unlock()

	log.Info("OTLP receiver starting",
		"addr", addr,
		"protocol", "HTTP/1.1 + h2c",
		"endpoints", "POST /v1/traces, /v1/metrics, /v1/logs; GET /health, /ws",
	)

	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests, finalizes every live session, and
// flushes the backend sink, all bounded by the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down server")

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	var errs []error
	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
		}
	}

	if err := s.registry.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("finalizing sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
