package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tank-arena/internal/lobby"
)

// ControlRouterConfig carries the dependencies of the control-plane router.
// Designed for dependency injection: tests construct it with a fresh
// directory and a permissive rate limit.
type ControlRouterConfig struct {
	// Dir is the lobby directory (required).
	Dir *lobby.Directory

	// RateLimiter is an optional pre-configured limiter. If nil one is built
	// from RateLimitConfig, falling back to DefaultRateLimitConfig.
	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig

	// DisableLogging drops the request logger middleware (tests, benchmarks).
	DisableLogging bool
}

// NewControlRouter constructs the control-plane router: lobby listing,
// creation, status patching and the arena frame renderer.
//
// The function is pure - no goroutines, no listeners - so it is safe to wrap
// in httptest.NewServer.
func NewControlRouter(cfg ControlRouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	h := &controlHandlers{dir: cfg.Dir}

	r.Get("/lobbies", h.handleListLobbies)
	r.Post("/lobbies", h.handleCreateLobby)
	r.Patch("/lobbies/{lobbyID}", h.handlePatchLobby)
	r.Get("/lobbies/{lobbyID}/frame.png", h.handleLobbyFrame)

	return r
}
