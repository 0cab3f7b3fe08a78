package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

const defaultShutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine with recovery, request IDs, access logging
// and per-route timings. A nil publisher disables the timings.
func NewRouter(svc Service, cfg config.ServerConfig, publisher types.Publisher, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = metrics.NewNoOpPublisher()
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(logger), Timing(publisher))
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	NewHandler(svc, logger).RegisterRoutes(router)
	return router
}

// Server runs the HTTP surface until its context is cancelled.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewServer wraps handler in an http.Server listening on cfg.Address.
func NewServer(handler http.Handler, cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
		logger:          logger.With("component", "http-server"),
	}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "address", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
