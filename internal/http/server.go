package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

func NewServer(engine *gin.Engine, log *logger.Logger) *Server {
	return &Server{Engine: engine, log: log}
}

// Run serves on address until ctx is cancelled, then drains in-flight
// requests. Open SSE streams end when ctx is cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		if s.log != nil {
			s.log.Info("HTTP server listening", "addr", address)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
