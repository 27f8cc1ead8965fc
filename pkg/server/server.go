// Package server exposes an editor over a JSON HTTP API.
//
// Every request locks the editor for its whole duration, so handlers see
// the same single-threaded editor the CLI does. Editor failures map to
// HTTP statuses by error code:
//
//   - NOT_FOUND, UNKNOWN_TREE, UNKNOWN_NODE_TYPE, UNKNOWN_BLOCK: 404
//   - DUPLICATE_NAME: 409
//   - INVALID_*, MALFORMED_DOCUMENT: 400
//   - anything else: 500
//
// Error bodies are {"code": "...", "error": "..."} with the user-facing
// message.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/bteditor/pkg/cache"
	"github.com/matzehuels/bteditor/pkg/editor"
	"github.com/matzehuels/bteditor/pkg/observability"
)

// Server serves one editor.
type Server struct {
	mu     sync.Mutex
	ed     *editor.Editor
	log    *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	gather prometheus.Gatherer
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithCache caches rendered SVGs in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) { s.cache, s.ttl = c, ttl }
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) { s.keyer = k }
}

// WithMetrics serves the metrics of g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gather = g }
}

// New creates a server for ed.
func New(ed *editor.Editor, opts ...Option) *Server {
	s := &Server{ed: ed}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.gather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.lock)

		r.Route("/trees", func(r chi.Router) {
			r.Get("/", s.listTrees)
			r.Post("/", s.createTree)
			r.Put("/{id}/active", s.selectTree)
			r.Delete("/{id}", s.removeTree)
			r.Get("/{id}/document", s.exportTree)
		})

		r.Route("/document", func(r chi.Router) {
			r.Get("/", s.exportDocument)
			r.Put("/", s.importDocument)
			r.Get("/dot", s.dot)
			r.Get("/svg", s.svg)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.listNodes)
			r.Post("/", s.registerNode)
			r.Patch("/{name}", s.editNode)
			r.Delete("/{name}", s.removeNode)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Middleware
// =============================================================================

func (s *Server) lock(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// instrument logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.log.Debug("request", "method", r.Method, "route", route, "status", status, "took", time.Since(start))
	})
}
