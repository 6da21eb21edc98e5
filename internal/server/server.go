package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/crmdash/backoffice-api/internal/config"
	"github.com/crmdash/backoffice-api/internal/handler"
)

// Server wires the HTTP surface together: router, middleware and handlers.
type Server struct {
	httpServer *http.Server
	logger     *zerolog.Logger
}

func New(
	cfg *config.Config,
	logger *zerolog.Logger,
	authHandler *handler.AuthHandler,
	leadHandler *handler.LeadHandler,
	customerHandler *handler.CustomerHandler,
) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(requestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authHandler.RegisterRoutes(router)
	leadHandler.RegisterRoutes(router)
	customerHandler.RegisterRoutes(router)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests before closing.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
