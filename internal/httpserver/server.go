package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/wirelink/internal/config"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/mw"
	"github.com/MrSnakeDoc/wirelink/internal/httpserver/routes"
	"github.com/MrSnakeDoc/wirelink/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	router chi.Router
	logger logger.Logger
}

// New builds the HTTP server. Routes are attached with Mount, which must
// be called before Start.
func New(cfg *config.Config, loggerClient logger.Logger) *Server {
	s := &http.Server{
		Addr:              cfg.ListenPort,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: loggerClient,
	}
}

// Mount builds the router from d and serves it.
func (s *Server) Mount(d deps.Deps) {
	s.router = NewRouter(s.logger, d)
	s.http.Handler = s.router
}

// NewRouter returns the handler tree without a listener.
func NewRouter(loggerClient logger.Logger, d deps.Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(mw.Log(loggerClient))

	routes.RegisterAll(r, d)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	if s.router == nil {
		return errors.New("http server started before routes were mounted")
	}
	s.logger.Info("HTTP server listening", logger.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
