package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/reflection"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds a gRPC server exposing LuminanceService, the standard
// health service and reflection. The returned health server lets the
// caller flip serving status on shutdown.
func NewServer(handler LuminanceServiceServer, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(opts...)
	RegisterLuminanceServiceServer(srv, handler)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv, hs
}
