// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and
// routes, and decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes (auth, roles)
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go opens the database and hands it over; New builds the rest:
//
//	database.DB → sqlstore.Store (Transactor) → services → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired in
// one place (New/routes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/database"
	"github.com/sakif/todo-api/internal/handler"
	"github.com/sakif/todo-api/internal/i18n"
	"github.com/sakif/todo-api/internal/middleware"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository/sqlstore"
	"github.com/sakif/todo-api/internal/service"
)

// Config holds what the server needs from the outside world.
type Config struct {
	App *config.Config
	DB  *database.DB
	// Passwords overrides the bcrypt service; tests pass a low cost.
	Passwords *auth.PasswordService
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database handle it was given. Start closes it after
// the HTTP server has drained, so no request ever sees a closed pool.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	db     *database.DB
	logger *slog.Logger

	auth *service.AuthService
}

// New wires services and handlers over cfg.DB and builds the router.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.App == nil || cfg.DB == nil {
		return nil, errors.New("server: config and database are required")
	}

	tokens, err := auth.NewTokenService(cfg.App.JWT.SecretKey, cfg.App.JWT.Issuer, cfg.App.JWT.AccessTokenTTL())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	passwords := cfg.Passwords
	if passwords == nil {
		passwords = auth.NewPasswordService()
	}
	bundle, err := i18n.New()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	// === DEPENDENCY CHAIN ===
	// The store is the only repository.Transactor; every service opens its
	// own units of work on it. Handlers get services, never the store.
	store := sqlstore.New(cfg.DB)
	users := service.NewUserService(store, passwords, logger)
	authSvc := service.NewAuthService(store, users, tokens, passwords, logger)

	bind := handler.NewBinder(bundle)
	h := handlers{
		health:   handler.NewHealthHandler(store),
		auth:     handler.NewAuthHandler(authSvc, bind, logger),
		users:    handler.NewUserHandler(users, bind),
		profiles: handler.NewProfileHandler(service.NewProfileService(store, logger), bind),
		todos:    handler.NewTodoHandler(service.NewTodoService(store, logger), bind),
		tags:     handler.NewTagHandler(service.NewTagService(store, logger), bind),
		products: handler.NewProductHandler(service.NewProductService(store, logger), bind),
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg.App,
		db:     cfg.DB,
		logger: logger,
		auth:   authSvc,
	}
	s.routes(h, tokens, bundle)
	return s, nil
}

type handlers struct {
	health   *handler.HealthHandler
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	profiles *handler.ProfileHandler
	todos    *handler.TodoHandler
	tags     *handler.TagHandler
	products *handler.ProductHandler
}

// routes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
//  1. RequestID: assigns a unique id to each request (for tracing)
//  2. RealIP: extracts the client IP from proxy headers
//  3. Logger: logs each request with timing info and the request id
//  4. Recover: turns panics into a JSON 500 (after Logger, so it's logged)
//  5. Locale: picks the response language for error messages
//
// Per-route middleware then adds authentication:
//   - requireAuth:  bearer token required (401 otherwise)
//   - optionalAuth: token used when present
//   - adminOnly:    token with role ADMIN required (403 otherwise)
func (s *Server) routes(h handlers, tokens *auth.TokenService, bundle *i18n.Bundle) {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Recover(s.logger))
	r.Use(middleware.Locale(bundle))

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)
	adminOnly := chi.Chain(requireAuth, auth.RequireRole(model.RoleAdmin))

	r.Get("/healthz", h.health.HandleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.auth.HandleRegister)
		r.Post("/token", h.auth.HandleToken)
		r.Post("/login", h.auth.HandleToken)
		r.Post("/logout", h.auth.HandleLogout)
		r.With(requireAuth).Get("/me", h.auth.HandleMe)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.users.HandleList)
		r.With(adminOnly...).Post("/", h.users.HandleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.users.HandleGet)
			r.Get("/todos", h.users.HandleTodos)
			r.Get("/profile", h.users.HandleProfile)
			r.With(requireAuth).Put("/", h.users.HandleUpdate)
			r.With(requireAuth).Patch("/", h.users.HandleUpdate)
			r.With(adminOnly...).Delete("/", h.users.HandleDelete)
		})
	})

	r.Route("/userprofiles", func(r chi.Router) {
		r.Get("/", h.profiles.HandleList)
		r.Get("/{id}", h.profiles.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.profiles.HandleCreate)
			r.Put("/{id}", h.profiles.HandleUpdate)
			r.Patch("/{id}", h.profiles.HandleUpdate)
			r.Delete("/{id}", h.profiles.HandleDelete)
		})
	})

	r.Route("/todos", func(r chi.Router) {
		r.With(optionalAuth).Get("/", h.todos.HandleList)
		r.Get("/{id}", h.todos.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", h.todos.HandleCreate)
			r.Put("/{id}", h.todos.HandleUpdate)
			r.Patch("/{id}", h.todos.HandleUpdate)
			r.Delete("/{id}", h.todos.HandleDelete)
		})
	})

	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.tags.HandleList)
		r.Get("/{id}", h.tags.HandleGet)
		r.With(requireAuth).Post("/", h.tags.HandleCreate)
		r.With(requireAuth).Put("/{id}", h.tags.HandleUpdate)
		r.With(requireAuth).Patch("/{id}", h.tags.HandleUpdate)
		r.With(adminOnly...).Delete("/{id}", h.tags.HandleDelete)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.products.HandleList)
		r.Get("/{id}", h.products.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly...)
			r.Post("/", h.products.HandleCreate)
			r.Put("/{id}", h.products.HandleUpdate)
			r.Patch("/{id}", h.products.HandleUpdate)
			r.Delete("/{id}", h.products.HandleDelete)
		})
	})
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SeedAdmin creates or promotes the configured admin account.
func (s *Server) SeedAdmin(ctx context.Context) error {
	_, err := s.auth.EnsureAdmin(ctx, s.cfg.Admin)
	return err
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database (flushes the sqlite WAL, releases pool connections)
func (s *Server) Start() error {
	// Runs AFTER everything else in this function finishes.
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.cfg.Server.Port)),
			slog.String("database", s.db.Dialect().Name()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
