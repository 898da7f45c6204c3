// Package web serves the news page and its JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/newsdesk/internal/article"
	"github.com/JonMunkholm/newsdesk/internal/poller"
	"github.com/JonMunkholm/newsdesk/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Source is the snapshot provider the handlers read from.
type Source interface {
	Snapshot() *poller.Snapshot
	Latest() (*poller.Snapshot, error)
	Status() poller.Status
	Refresh(ctx context.Context) (*poller.Snapshot, error)
}

// Options configures a Server.
type Options struct {
	Source   Source
	Builder  *article.Builder
	Location *time.Location // display location for the page's updated time
	Title    string

	TrustedProxies []string
	EnableCSP      bool
	RequestTimeout time.Duration // default: 45s

	RateLimitEnabled  bool
	RequestsPerMinute int
	RefreshPerMinute  int

	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the HTTP server for the news widget.
type Server struct {
	opts   Options
	source Source
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server. ctx bounds the rate limiter cleanup goroutines.
func NewServer(ctx context.Context, opts Options) *Server {
	if opts.Builder == nil {
		opts.Builder = article.NewBuilder(nil)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 45 * time.Second
	}

	s := &Server{
		opts:   opts,
		source: opts.Source,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes(ctx)
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders(s.opts.EnableCSP))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(ctx context.Context) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Group(func(r chi.Router) {
		if s.opts.RateLimitEnabled {
			r.Use(newRateLimiter(ctx, s.opts.RequestsPerMinute).middleware)
		}

		r.Get("/", s.handleIndex)
		r.Get("/api/articles", s.handleArticles)
		r.Get("/api/status", s.handleStatus)

		// Manual refresh hits the upstream sheet, so it gets its own bucket.
		r.Group(func(r chi.Router) {
			if s.opts.RateLimitEnabled {
				r.Use(newRateLimiter(ctx, s.opts.RefreshPerMinute).middleware)
			}
			r.Post("/refresh", s.handleRefreshForm)
			r.Post("/api/refresh", s.handleRefresh)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.opts.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

const contentSecurityPolicy = "default-src 'self'; style-src 'self'; img-src 'self' https: data:; script-src 'none'; form-action 'self'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}

			// Article links open in new tabs; don't leak the widget URL
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
