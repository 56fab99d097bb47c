// Package ui serves stored reports as interactive web pages.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
	reportsFeature "github.com/leapstack-labs/datareport/internal/ui/features/reports"
	"github.com/leapstack-labs/datareport/internal/ui/notifier"
	"github.com/leapstack-labs/datareport/internal/ui/router"
)

// DefaultPort is the port used when none is configured.
const DefaultPort = 8421

// Server is the report server.
type Server struct {
	port     int
	logger   *slog.Logger
	notifier *notifier.Notifier
	reports  *reportsFeature.Handlers
	handler  http.Handler
	ready    chan string
}

// Config holds configuration for the report server.
type Config struct {
	Catalog          reportsFeature.Catalog
	Port             int
	Dialect          snippet.Dialect
	Filters          summary.FilterConfig
	CopyFlagDuration time.Duration
	CacheTTL         time.Duration
	DatastarSrc      string
	Logger           *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	notify := notifier.New()
	reports := reportsFeature.NewHandlers(cfg.Catalog, notify, reportsFeature.Options{
		Dialect:          cfg.Dialect,
		Filters:          cfg.Filters,
		CopyFlagDuration: cfg.CopyFlagDuration,
		CacheTTL:         cfg.CacheTTL,
		DatastarSrc:      cfg.DatastarSrc,
		Logger:           logger,
	})

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(logger),
		middleware.Recoverer,
		middleware.Compress(5, "text/html", "text/css", "application/json"),
	)
	if err := router.SetupRoutes(r, reports); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	return &Server{
		port:     port,
		logger:   logger,
		notifier: notify,
		reports:  reports,
		handler:  r,
		ready:    make(chan string, 1),
	}, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Notifier returns the notifier of catalog changes.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Publish saves a report and refreshes open catalog pages.
func (s *Server) Publish(ctx context.Context, rec *store.Record) error {
	return s.reports.Publish(ctx, rec)
}

// Ready receives the base URL once the server listens.
func (s *Server) Ready() <-chan string {
	return s.ready
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	url := "http://" + ln.Addr().String()
	s.logger.Info("starting report server", "addr", url)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.ready <- url
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down report server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs each request through slog at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
