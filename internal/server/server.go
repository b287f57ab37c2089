// Package server exposes the validation engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/structview/structview/internal/engine"
	"github.com/structview/structview/internal/server/notifier"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxBodyBytes caps request bodies when Config.MaxBodyBytes is unset.
const DefaultMaxBodyBytes int64 = 10 << 20

const shutdownTimeout = 5 * time.Second

// Server is the HTTP API server.
type Server struct {
	engine       *engine.Engine
	addr         string
	port         int
	corsOrigins  []string
	maxBodyBytes int64
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the HTTP server.
type Config struct {
	Engine       *engine.Engine
	Addr         string
	Port         int
	CORSOrigins  []string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// New creates a server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Server{
		engine:       cfg.Engine,
		addr:         cfg.Addr,
		port:         cfg.Port,
		corsOrigins:  cfg.CORSOrigins,
		maxBodyBytes: maxBody,
		logger:       logger,
		notifier:     notifier.New(8),
	}
}

// Notifier returns the server's validation event notifier.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Address returns the host:port the server listens on.
func (s *Server) Address() string {
	return net.JoinHostPort(s.addr, strconv.Itoa(s.port))
}

// Handler builds the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)
	// No origins means same-origin only; cors treats an empty list as allow-all.
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/events", s.handleEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(s.maxBodyBytes))
		r.Post("/validate", s.handleValidate)
		r.Post("/analyze", s.handleAnalyze)
	})

	r.Route("/validations", func(r chi.Router) {
		r.Get("/", s.handleListValidations)
		r.Get("/{id}", s.handleGetValidation)
	})

	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting API server", "addr", "http://"+s.Address())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.Address(),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
