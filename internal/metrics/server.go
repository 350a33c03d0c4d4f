package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the Prometheus scrape endpoint on its own listener, kept
// off the API port so scrapes never compete with quote traffic. Liveness
// lives on the API router's /healthz.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer creates the scrape endpoint server
func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 3 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving scrapes until the listener closes
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Metrics endpoint listening", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight scrapes
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
