// Package server provides the FlowMind HTTP API: account endpoints, the
// per-user flow session endpoints and the WebSocket event feed.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/raphaelgruber/flowmind/internal/auth"
	"github.com/raphaelgruber/flowmind/internal/config"
	"github.com/raphaelgruber/flowmind/internal/flow"
	"github.com/raphaelgruber/flowmind/internal/metrics"
	"github.com/raphaelgruber/flowmind/internal/models"
	"github.com/raphaelgruber/flowmind/internal/service"
)

// Accounts is the account surface the handlers need.
// *service.AccountService implements it.
type Accounts interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, login, password string) (*service.Session, error)
	Refresh(ctx context.Context, rawRefresh string) (*service.Session, error)
	Logout(ctx context.Context, rawRefresh string) error
	VerifyEmail(ctx context.Context, rawToken string) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Server wires the HTTP API with its dependencies and lifecycle management.
type Server struct {
	cfg       config.Config
	log       *slog.Logger
	accounts  Accounts
	sessions  *flow.Sessions
	tokens    *auth.Tokens
	collector *metrics.Collector
	hub       *Hub

	router chi.Router
}

// New creates the HTTP server. The sessions registry must have been created
// with the hub's Broadcast as its event callback for the WebSocket feed to
// carry store events.
func New(cfg config.Config, log *slog.Logger, accounts Accounts, sessions *flow.Sessions, tokens *auth.Tokens, collector *metrics.Collector, hub *Hub) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log,
		accounts:  accounts,
		sessions:  sessions,
		tokens:    tokens,
		collector: collector,
		hub:       hub,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(s.log, s.collector))
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.cfg.AuthRateLimit, s.cfg.AuthRateWindow))

			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/logout", s.handleLogout)
			r.Post("/verify-email", s.handleVerifyEmail)
			r.Post("/forgot-password", s.handleForgotPassword)
			r.Post("/reset-password", s.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(s.tokens))
				r.Get("/me", s.handleMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.tokens))

			r.Route("/flow", func(r chi.Router) {
				r.Post("/entries", s.handleAddEntry)
				r.Get("/entries", s.handleListEntries)
				r.Get("/entries/{id}", s.handleGetEntry)
				r.Post("/entries/{id}/toggle", s.handleToggleEntry)
				r.Delete("/entries/{id}", s.handleDeleteEntry)
				r.Post("/entries/{id}/details", s.handleAddDetail)

				r.Get("/drafts", s.handleListDrafts)
				r.Post("/drafts/{id}/promote", s.handlePromoteDraft)
				r.Delete("/drafts/{id}", s.handleDiscardDraft)

				r.Post("/tasks", s.handleAddTasks)
				r.Get("/tasks", s.handleListTasks)
				r.Post("/tasks/{id}/toggle", s.handleToggleTask)
				r.Delete("/tasks/{id}", s.handleDeleteTask)

				r.Get("/connections", s.handleListConnections)
				r.Get("/suggestions", s.handleSuggestions)
				r.Get("/stats", s.handleSessionStats)
			})

			r.Get("/stats", s.handleServerStats)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", "addr", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleServerStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.collector.Snapshot())
}
