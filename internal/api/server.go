// Package api serves the betting tracker's JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/betting-tracker/internal/auth"
	"github.com/yourusername/betting-tracker/internal/config"
	"github.com/yourusername/betting-tracker/internal/service"
)

// Deps are the services the API is built on
type Deps struct {
	Auth     *auth.Service
	Ledger   *service.LedgerService
	Analysis *service.AnalysisService
	Profiles *service.ProfileService
	Logger   *logrus.Logger
}

// Server is the public HTTP API
type Server struct {
	auth     *auth.Service
	ledger   *service.LedgerService
	analysis *service.AnalysisService
	profiles *service.ProfileService
	logger   *logrus.Logger
	cfg      config.ServerConfig
	cookie   cookieSettings
	server   *http.Server
}

// NewServer creates the API server
func NewServer(deps Deps, serverCfg config.ServerConfig, authCfg config.AuthConfig) *Server {
	return &Server{
		auth:     deps.Auth,
		ledger:   deps.Ledger,
		analysis: deps.Analysis,
		profiles: deps.Profiles,
		logger:   deps.Logger,
		cfg:      serverCfg,
		cookie: cookieSettings{
			secure: authCfg.CookieSecure,
			maxAge: deps.Auth.Tokens().TTL(),
		},
	}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.observe)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.authenticate).Get("/me", s.handleMe)
		})

		r.Post("/demo/summary", s.handleDemoSummary)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/bets", func(r chi.Router) {
				r.Get("/", s.handleListBets)
				r.Post("/", s.handleCreateBet)
				r.Delete("/", s.handleDeleteAllBets)
				r.Put("/{id}", s.handleUpdateBet)
				r.Delete("/{id}", s.handleDeleteBet)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireAdmin).Get("/", s.handleListUsers)
				r.Get("/me", s.handleProfile)
				r.Patch("/me/username", s.handleChangeUsername)
			})

			r.Route("/ai", func(r chi.Router) {
				r.Get("/context", s.handleAIContext)
				r.Get("/facets", s.handleAIFacets)
				r.Post("/analyze", s.handleAnalyze)
				r.Get("/ws", s.handleAnalyzeWebSocket)
			})
		})
	})

	return r
}

// Start serves the API until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("API server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	s.logger.Info("API server shutting down")
	return s.server.Shutdown(shutdownCtx)
}
