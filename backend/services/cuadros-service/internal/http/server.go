package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"inspecciones/backend/services/cuadros-service/internal/http/middleware"
)

// Timeouts bound the underlying http.Server.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Read <= 0 {
		t.Read = 15 * time.Second
	}
	if t.Write <= 0 {
		t.Write = 30 * time.Second
	}
	if t.Idle <= 0 {
		t.Idle = 60 * time.Second
	}
	if t.Shutdown <= 0 {
		t.Shutdown = 10 * time.Second
	}
	return t
}

// Server wraps http.Server with graceful shutdown logic.
type Server struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer builds HTTP server with provided handler. The first middleware is outermost.
func NewServer(addr string, handler http.Handler, timeouts Timeouts, logger *zap.Logger, middlewares ...func(http.Handler) http.Handler) *Server {
	timeouts = timeouts.withDefaults()
	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      middleware.Chain(handler, middlewares...),
			ReadTimeout:  timeouts.Read,
			WriteTimeout: timeouts.Write,
			IdleTimeout:  timeouts.Idle,
		},
		shutdownTimeout: timeouts.Shutdown,
		logger:          logger,
	}
}

// Handler exposes the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts listening and blocks until context is cancelled or server stops.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down http server")
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
