// Package server exposes the read API, the admin API, and the live-activity
// WebSocket over a single HTTP listener.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Akanimoh12/iPredict/internal/domain"
	"github.com/Akanimoh12/iPredict/internal/server/handler"
	"github.com/Akanimoh12/iPredict/internal/server/middleware"
	"github.com/Akanimoh12/iPredict/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	AdminAPIKey string // if empty, admin authentication is disabled

	// RateLimit caps requests per client IP per RateWindow; zero disables.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
// Admin may be nil when the process runs without a signing wallet, and
// Archive may be nil when no cold storage is configured; the corresponding
// routes are then not registered.
type Handlers struct {
	Health      *handler.HealthHandler
	Platform    *handler.PlatformHandler
	Markets     *handler.MarketHandler
	Users       *handler.UserHandler
	Leaderboard *handler.LeaderboardHandler
	Activity    *handler.ActivityHandler
	Archive     *handler.ArchiveHandler
	Admin       *handler.AdminHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, rate limiting) and attaches the
// WebSocket hub. Only the /api/admin subtree sits behind the auth middleware;
// everything else is public reads.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Platform state.
	mux.HandleFunc("GET /api/platform", handlers.Platform.GetPlatform)

	// Market endpoints.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)
	mux.HandleFunc("GET /api/markets/{id}/odds", handlers.Markets.GetOdds)
	mux.HandleFunc("GET /api/markets/{id}/return", handlers.Markets.GetPotentialReturn)
	mux.HandleFunc("GET /api/markets/{id}/activity", handlers.Activity.ListByMarket)

	// User endpoints.
	mux.HandleFunc("GET /api/users/{address}", handlers.Users.GetProfile)
	mux.HandleFunc("GET /api/users/{address}/bets/{id}", handlers.Users.GetBet)
	mux.HandleFunc("GET /api/users/{address}/markets", handlers.Users.GetMarkets)
	mux.HandleFunc("GET /api/users/{address}/claimable", handlers.Users.GetClaimable)
	mux.HandleFunc("GET /api/users/{address}/activity", handlers.Activity.ListByUser)

	// Leaderboard endpoints.
	mux.HandleFunc("GET /api/leaderboard", handlers.Leaderboard.List)
	mux.HandleFunc("GET /api/leaderboard/{address}", handlers.Leaderboard.GetRank)

	// Activity feed, with cold-storage history when configured.
	mux.HandleFunc("GET /api/activity", handlers.Activity.ListRecent)
	if handlers.Archive != nil {
		mux.HandleFunc("GET /api/activity/archive", handlers.Archive.List)
		mux.HandleFunc("GET /api/activity/archive/{key...}", handlers.Archive.Download)
	}

	// Admin endpoints, behind the API-key auth middleware. The contract-side
	// admin check in the service still applies on top.
	if handlers.Admin != nil {
		auth := middleware.Auth(cfg.AdminAPIKey)
		mux.Handle("POST /api/admin/markets", auth(http.HandlerFunc(handlers.Admin.CreateMarket)))
		mux.Handle("POST /api/admin/markets/{id}/resolve", auth(http.HandlerFunc(handlers.Admin.ResolveMarket)))
		mux.Handle("POST /api/admin/markets/{id}/cancel", auth(http.HandlerFunc(handlers.Admin.CancelMarket)))
		mux.Handle("POST /api/admin/pause", auth(http.HandlerFunc(handlers.Admin.Pause)))
		mux.Handle("POST /api/admin/unpause", auth(http.HandlerFunc(handlers.Admin.Unpause)))
		mux.Handle("POST /api/admin/withdraw-fees", auth(http.HandlerFunc(handlers.Admin.WithdrawFees)))
	}

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	// Admin writes block until the transaction is mined, so the write
	// timeout must cover a few block intervals.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
