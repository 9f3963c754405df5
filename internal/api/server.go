// Package api exposes the reading log over HTTP with huma on a chi router.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookkeeperapp/bookkeeper-server/internal/http/response"
	"github.com/bookkeeperapp/bookkeeper-server/internal/ratelimit"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
	// AuthRateLimit is login/register attempts per minute per client.
	AuthRateLimit int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger

	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a configured server with all routes registered.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 10
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		services:        services,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: newAuthRateLimiter(opts.AuthRateLimit),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RateLimitMiddleware(s.authRateLimiter, authPathPrefix, logger))
	s.router.Use(authMiddleware(services.Auth))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "Method not allowed", logger)
	})

	s.api = humachi.New(s.router, newHumaConfig())
	RegisterErrorHandler()
	s.registerRoutes()

	return s
}

func newHumaConfig() huma.Config {
	cfg := huma.DefaultConfig("Bookkeeper API", Version)
	cfg.Info.Description = "Daily reading log, timeline and statistics"
	cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	cfg.Transformers = append(cfg.Transformers, EnvelopeTransformer)
	return cfg
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerTimelineRoutes()
	s.registerBackupRoutes()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Shutdown stops background workers owned by the server.
func (s *Server) Shutdown(_ context.Context) error {
	s.authRateLimiter.Stop()
	return nil
}

// bearerAuth marks an operation as requiring a token.
var bearerAuth = []map[string][]string{{"bearer": {}}}
