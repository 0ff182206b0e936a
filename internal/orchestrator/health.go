package orchestrator

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check name reported next to the overall ("") status.
const ServiceName = "operation.OperationService"

// HealthServer exposes grpc.health.v1.Health for the process.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

// NewHealthServer starts in NOT_SERVING; call MarkServing once storage is ready.
func NewHealthServer(log zerolog.Logger) *HealthServer {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &HealthServer{srv: srv, health: hs, log: log.With().Str("component", "grpc_health").Logger()}
}

func (h *HealthServer) MarkServing() {
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	h.log.Info().Msg("gRPC: health status set to SERVING")
}

// Serve blocks until lis fails or the server stops.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.log.Info().Str("addr", lis.Addr().String()).Msg("gRPC: health server listening")
	if err := h.srv.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// Shutdown reports NOT_SERVING to watchers and stops gracefully, or forcefully once ctx is done.
func (h *HealthServer) Shutdown(ctx context.Context) {
	h.health.Shutdown()

	done := make(chan struct{})
	go func() {
		h.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		h.srv.Stop()
	}
	h.log.Info().Msg("gRPC: health server stopped")
}
