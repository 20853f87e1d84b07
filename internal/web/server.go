package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/faultchar/internal/storage"
)

// Server serves the session browsing API.
type Server struct {
	handlers *Handlers
	mux      *http.ServeMux
	logger   *zap.Logger
	metrics  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler exposes h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new web server
func NewServer(store storage.Storage, opts ...Option) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handlers = NewHandlers(store, s.logger)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Trailing slash enables prefix matching for all /api/sessions/* paths
	s.mux.HandleFunc("/api/sessions/", s.corsMiddleware(s.routeSessions))

	if s.metrics != nil {
		s.mux.Handle("/metrics", s.metrics)
	}

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexHTML))
	})
}

// routeSessions routes requests to the appropriate handler based on the path
func (s *Server) routeSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	switch {
	case path == "" || path == "/":
		s.handlers.ListSessions(w, r)
	case strings.HasSuffix(path, "/timeline"):
		s.handlers.GetTimeline(w, r)
	default:
		s.handlers.GetSession(w, r)
	}
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", zap.String("addr", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>faultchar</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 800px; margin: 60px auto; color: #333; }
        h1 { color: #2563eb; }
        code { background: #f3f4f6; padding: 2px 8px; border-radius: 4px; }
    </style>
</head>
<body>
    <h1>faultchar sessions</h1>
    <ul>
        <li><code>GET /api/sessions/?status=COMPLETE&amp;algorithm=idd&amp;limit=10</code></li>
        <li><code>GET /api/sessions/{id}</code></li>
        <li><code>GET /api/sessions/{id}/timeline</code></li>
        <li><code>GET /metrics</code></li>
    </ul>
</body>
</html>
`
