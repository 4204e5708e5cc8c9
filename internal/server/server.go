// Package server exposes the current topology layout and per-viewer hover
// state over HTTP.
//
// Routes:
//
//	GET    /healthz                     liveness and build info
//	GET    /api/status                  snapshot version and counts
//	GET    /api/topology                positioned nodes and styled edges
//	GET    /api/topology.svg            rendered diagram (?viewer=<id> applies hover state)
//	POST   /api/viewers                 open a viewer, returns {"id": ...}
//	GET    /api/viewers/{id}/state      visual state of a viewer
//	PUT    /api/viewers/{id}/hover      hover enter, body {"nodeId": ...}
//	DELETE /api/viewers/{id}/hover      hover leave
//	DELETE /api/viewers/{id}            close a viewer
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/topograph/pkg/view"
)

// Runner is a background task started alongside the HTTP server, such as a
// snapshot watcher.
type Runner interface {
	Run(ctx context.Context) error
}

// Config holds configuration for the server.
type Config struct {
	Addr       string
	Controller *view.Controller
	Logger     *log.Logger

	// Background tasks stopped together with the server.
	Runners []Runner

	// ShutdownTimeout bounds graceful shutdown. Zero means five seconds.
	ShutdownTimeout time.Duration
}

// Server serves the topology API.
type Server struct {
	addr     string
	ctrl     *view.Controller
	logger   *log.Logger
	runners  []Runner
	shutdown time.Duration
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 5 * time.Second
	}
	return &Server{
		addr:     cfg.Addr,
		ctrl:     cfg.Controller,
		logger:   logger,
		runners:  cfg.Runners,
		shutdown: shutdown,
	}
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	h := &handlers{ctrl: s.ctrl, logger: s.logger}
	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Get("/topology", h.topology)
		r.Get("/topology.svg", h.topologySVG)
		r.Route("/viewers", func(r chi.Router) {
			r.Post("/", h.openViewer)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/state", h.viewerState)
				r.Put("/hover", h.hoverEnter)
				r.Delete("/hover", h.hoverLeave)
				r.Delete("/", h.closeViewer)
			})
		})
	})
	return r
}

// Serve runs the HTTP server and all runners until ctx is cancelled or one
// of them fails.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, r := range s.runners {
		eg.Go(func() error {
			if err := r.Run(egctx); err != nil && egctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		s.logger.Info("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		s.logger.Debug("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
