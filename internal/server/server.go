package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/suruext/internal/database"
	"github.com/nao1215/suruext/internal/lexeme"
	"github.com/nao1215/suruext/internal/model"
	"github.com/nao1215/suruext/internal/render"
)

// LexemeAdder gets or creates lexemes. *lexeme.Creator implements it.
type LexemeAdder interface {
	Add(ctx context.Context, req lexeme.Request) (*lexeme.Result, error)
}

// Augmenter augments one page. *pipeline.Runner implements it.
type Augmenter interface {
	Augment(ctx context.Context, target, suruID string) (*model.AugmentReport, error)
}

// Store records what the service did. *database.ResultDB implements it.
type Store interface {
	RecordCreation(ctx context.Context, c *database.Creation) (int64, error)
	SaveReport(ctx context.Context, report *model.AugmentReport) (int64, error)
}

// shutdownTimeout bounds the graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server routes the service endpoints.
type Server struct {
	router    *chi.Mux
	adder     LexemeAdder
	augmenter Augmenter
	store     Store
	renderer  *render.HTMLRenderer
	logger    *slog.Logger
	baseURL   string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAugmenter enables GET /augment.
func WithAugmenter(a Augmenter) Option {
	return func(s *Server) {
		s.augmenter = a
	}
}

// WithStore records creations and reports.
func WithStore(store Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithRenderer sets the renderer used for error fragments.
func WithRenderer(r *render.HTMLRenderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithBaseURL sets the address shown in the usage document.
func WithBaseURL(u string) Option {
	return func(s *Server) {
		s.baseURL = u
	}
}

// New returns a Server creating lexemes through adder.
func New(adder LexemeAdder, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		adder:    adder,
		renderer: render.NewHTMLRenderer(render.DefaultLinks()),
		logger:   slog.Default(),
		baseURL:  "http://localhost:5001",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleUsage)
	s.router.Get("/add", s.handleAdd)
	s.router.Get("/augment", s.handleAugment)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
