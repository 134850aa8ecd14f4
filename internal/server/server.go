package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/areddy/alphaseeker/internal/modules/analyst"
	"github.com/areddy/alphaseeker/internal/modules/auth"
	"github.com/areddy/alphaseeker/internal/modules/discovery"
	"github.com/areddy/alphaseeker/internal/modules/portfolio"
	"github.com/areddy/alphaseeker/internal/modules/screener"
	"github.com/areddy/alphaseeker/internal/modules/search"
)

// Config holds server configuration and the handler set to mount
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger

	Auth      *auth.Handler
	AuthMW    func(http.Handler) http.Handler
	Portfolio *portfolio.Handler
	Screener  *screener.Handler
	Discovery *discovery.Handler
	Search    *search.Handler
	Analyst   *analyst.Handler
}

// Server is the HTTP front of the engine
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	limiter *rate.Limiter
}

// New creates the HTTP server and mounts all routes
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		// Provider calls dominate request cost; cap the inbound rate well
		// below what would trip upstream throttling.
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimitMiddleware)
	// Scans of a full region universe can run past a minute
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/signup", cfg.Auth.HandleSignup)
		r.Post("/auth/login", cfg.Auth.HandleLogin)
		r.Get("/screen", cfg.Screener.HandleScreen)
		r.Get("/search", cfg.Search.HandleSearch)
		r.Post("/analyze", cfg.Analyst.HandleAnalyze)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthMW)

			r.Get("/me", cfg.Auth.HandleMe)

			r.Get("/discovery/scan", cfg.Discovery.HandleScan)

			r.Route("/portfolio", func(r chi.Router) {
				r.Get("/", cfg.Portfolio.HandleList)
				r.Post("/add", cfg.Portfolio.HandleAdd)
				r.Get("/history", cfg.Portfolio.HandleHistory)
				r.Delete("/delete/{ticker}", cfg.Portfolio.HandleDelete)
			})

			r.Route("/broker", func(r chi.Router) {
				r.Get("/login-url", cfg.Portfolio.HandleBrokerLoginURL)
				r.Post("/exchange", cfg.Portfolio.HandleBrokerExchange)
				r.Post("/sync", cfg.Portfolio.HandleBrokerSync)
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, `{"error":"too many requests"}`, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request")
	})
}
