// Package handler exposes readiness over the standard gRPC health protocol and HTTP.
package handler

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the gRPC health service name of the recovery backend. "" means the whole server.
const ServiceName = "password-recovery"

// Checker reports readiness; nil error means serving.
type Checker interface {
	Check(ctx context.Context) error
}

// Server implements grpc.health.v1.Health. Check runs the readiness checks on every call.
type Server struct {
	healthpb.UnimplementedHealthServer
	checker Checker
	log     zerolog.Logger
}

// NewServer returns a health server. A nil checker always reports SERVING.
func NewServer(checker Checker, log zerolog.Logger) *Server {
	return &Server{checker: checker, log: log}
}

// Check returns SERVING or NOT_SERVING. A failed dependency is not a gRPC error.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	if s.checker != nil {
		if err := s.checker.Check(ctx); err != nil {
			s.log.Warn().Err(err).Msg("health: not serving")
			return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
		}
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
