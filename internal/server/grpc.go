// Package server assembles the HTTP router and the gRPC server of the recovery backend.
package server

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	healthhandler "password-recovery/internal/health/handler"
	"password-recovery/internal/server/interceptors"
)

// Deps holds the gRPC services.
type Deps struct {
	// Health answers grpc.health.v1 checks. If nil, a server that always reports SERVING is used.
	Health healthpb.HealthServer
}

// NewGRPCServer returns a gRPC server with OTel stats, request logging and all services registered.
func NewGRPCServer(deps Deps, log zerolog.Logger) *grpc.Server {
	skip := map[string]bool{healthpb.Health_Check_FullMethodName: true}
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.LoggingUnary(log, skip)),
	)
	RegisterServices(s, deps)
	return s
}

// RegisterServices registers the gRPC services with s.
//
//   - grpc.health.v1.Health → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	h := deps.Health
	if h == nil {
		h = healthhandler.NewServer(nil, zerolog.Nop())
	}
	healthpb.RegisterHealthServer(s, h)
}
