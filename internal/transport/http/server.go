package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kora-rentals/pricingservice/internal/log"
)

// Server wraps the HTTP listener with graceful shutdown.
type Server struct {
	server *http.Server
}

func NewServer(address string, router *gin.Engine) *Server {
	return &Server{
		server: &http.Server{
			Addr:              address,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}
}

// Start blocks serving requests until the listener closes.
func (s *Server) Start(ctx context.Context) error {
	log.Info(ctx, "HTTP server listening", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
