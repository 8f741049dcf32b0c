package grpc

import (
	"context"
	"fmt"
	"net"

	"github.com/wekeepgrowing/closerlink/internal/config"
	"github.com/wekeepgrowing/closerlink/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server exposes the standard gRPC health service for orchestrator probes.
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

func NewServer(cfg *config.Config, log *zap.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: log,
		server: grpc.NewServer(logger.ServerOptions(log)...),
		health: health.NewServer(),
	}
	healthpb.RegisterHealthServer(s.server, s.health)
	return s
}

// SetServing flips the reported status of the whole server.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(s.config.Service.Name, status)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.GRPC.Host, s.config.Server.GRPC.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(listener)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.listener = listener
	s.SetServing(true)

	s.logger.Info("Starting gRPC server", zap.String("address", listener.Addr().String()))

	if err := s.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return ctx.Err()
	}
}
