package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/harshdoesdev/instance-monitor/internal/telemetry"
)

// Greeting is served at the root path.
const Greeting = "A Simple Instance Monitor."

const shutdownTimeout = 5 * time.Second

var (
	// ErrBind is returned when the listener cannot be opened.
	ErrBind = errors.New("failed to bind the listener")

	// ErrServe is returned when the server stops unexpectedly.
	ErrServe = errors.New("failed to start the server")
)

// Exporter renders the current metric set as exposition text.
type Exporter interface {
	Export() (string, error)
}

// Server provides the HTTP scrape endpoint.
type Server struct {
	addr      string
	path      string
	server    *http.Server
	mux       *http.ServeMux
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTelemetry records scrapes and, when path is non-empty, serves the
// self metrics there.
func WithTelemetry(t *telemetry.Telemetry, path string) Option {
	return func(s *Server) {
		s.telemetry = t
		if t != nil && path != "" {
			s.mux.Handle("GET "+path, loggingMiddleware(s.logger, "internal scrape", t.Handler()))
		}
	}
}

// New creates a new HTTP server serving exporter output at path.
func New(addr, path string, exporter Exporter, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:   addr,
		path:   path,
		mux:    http.NewServeMux(),
		logger: logger,
	}

	s.mux.HandleFunc("GET /{$}", handleRoot)
	for _, opt := range opts {
		opt(s)
	}
	s.mux.Handle("GET "+path, loggingMiddleware(logger, "scrape", s.metricsHandler(exporter)))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins serving HTTP requests and blocks until ctx is cancelled or
// the server fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBind, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "addr", ln.Addr().String(), "path", s.path)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("%w: %w", ErrServe, err)
	case <-ctx.Done():
		return s.shutdown()
	}
}

// shutdown gracefully stops the server.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.server.Shutdown(ctx)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Greeting))
}

// metricsHandler renders the full body before writing so a render failure
// can still become a 500.
func (s *Server) metricsHandler(exporter Exporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			s.telemetry.ObserveScrape(time.Since(start))
		}()

		body, err := exporter.Export()
		if err != nil {
			s.logger.Error("failed to export metrics", "error", err)
			http.Error(w, "Failed to retrieve metrics", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	})
}

// loggingMiddleware logs requests when debug logging is enabled
func loggingMiddleware(logger *slog.Logger, msg string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug(msg, "remote", r.RemoteAddr, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
