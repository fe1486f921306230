// Package web serves the HTML interface: routing, sessions, flashes and
// page rendering on top of the account and run services.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/runlog/internal/auth"
	"github.com/mmynk/runlog/internal/forms"
	"github.com/mmynk/runlog/internal/middleware"
	"github.com/mmynk/runlog/internal/service"
	"github.com/mmynk/runlog/internal/storage"
)

// Config holds the dependencies of a Server.
type Config struct {
	Store    storage.Store
	Accounts *service.AccountService
	Runs     *service.RunService
	JWT      *auth.JWTManager
	Metrics  *middleware.Metrics
	Logger   *slog.Logger

	// CookieName names the session cookie.
	CookieName string

	// CookieSecure marks the session, flash and CSRF cookies Secure.
	CookieSecure bool
}

// Server is the HTTP front end.
type Server struct {
	store    storage.Store
	lookup   forms.UserLookup
	accounts *service.AccountService
	runs     *service.RunService
	jwt      *auth.JWTManager
	metrics  *middleware.Metrics
	logger   *slog.Logger
	pages    *pages

	cookieName   string
	cookieSecure bool
}

// New parses the embedded templates and returns a ready Server.
func New(cfg Config) (*Server, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	if cfg.Metrics == nil {
		cfg.Metrics = middleware.NewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Server{
		store:        cfg.Store,
		lookup:       cfg.Store,
		accounts:     cfg.Accounts,
		runs:         cfg.Runs,
		jwt:          cfg.JWT,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		pages:        p,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
	}, nil
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.metrics.Middleware)
	r.Use(middleware.Authenticate(s.jwt, s.accounts, s.cookieName))
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(s.recoverer)
	r.Use(s.flashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(s.cookieSecure, http.HandlerFunc(s.handleCSRFFailure)))

		r.Get("/about", s.handleAbout)
		r.Get("/run/{id:[0-9]+}", s.handleRun)
		r.Get("/login", s.handleLogin)
		r.Post("/login", s.handleLogin)
		r.Get("/register", s.handleRegister)
		r.Post("/register", s.handleRegister)
		r.Get("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth("/login", s.loginRequired))

			r.Get("/", s.handleHome)
			r.Post("/", s.handleHome)
			r.Get("/home", s.handleHome)
			r.Post("/home", s.handleHome)
			r.Get("/current_run", s.handleCurrentRun)
			r.Get("/user_runs", s.handleUserRuns)
			r.Post("/run/{id:[0-9]+}/delete", s.handleDeleteRun)
			r.Get("/account", s.handleAccount)
			r.Post("/account", s.handleAccount)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("Health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// recoverer turns a panic into a logged 500 page.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.Error("Panic serving request", "path", r.URL.Path, "panic", rec)
				s.renderError(w, r, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loginRequired(w http.ResponseWriter, r *http.Request) {
	s.flash(w, r, categoryInfo, "Please log in to access this page.")
}

func (s *Server) handleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("CSRF check failed", "method", r.Method, "path", r.URL.Path)
	s.renderError(w, r, http.StatusBadRequest)
}
