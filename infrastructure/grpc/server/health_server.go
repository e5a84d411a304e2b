package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name probes can ask about besides the overall "" service.
const ServiceName = "touroku.Registration"

// HealthServer exposes grpc.health.v1 for orchestrators and load balancers.
// Every service starts NOT_SERVING until the heartbeat says otherwise.
type HealthServer struct {
	health *health.Server
}

func NewHealthServer() *HealthServer {
	h := &HealthServer{health: health.NewServer()}
	h.SetServing(false)
	return h
}

// Register attaches the health service to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Shutdown flips every service to NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}
