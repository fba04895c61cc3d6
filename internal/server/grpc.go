package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthv1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewGRPCServer creates a gRPC server with standard interceptors, registers
// the health service and reflection, and returns the server ready to serve.
// The gate API itself is HTTP JSON; gRPC carries health probes for
// orchestrators that speak the standard health protocol.
func NewGRPCServer(authToken string) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)

	healthServer := health.NewServer()
	healthv1.RegisterHealthServer(srv, healthServer)
	reflection.Register(srv)

	return srv, healthServer
}
