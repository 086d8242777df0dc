// Package interceptors holds gRPC server interceptors shared by the recovery backend.
package interceptors

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LoggingUnary logs every unary RPC with its status code and latency.
// Methods in skip (full method names, e.g. the health check) are not logged on success.
func LoggingUnary(log zerolog.Logger, skip map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err == nil && skip[info.FullMethod] {
			return resp, err
		}
		ev := log.Info()
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument:
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			ev = log.Error().Err(err)
		default:
			ev = log.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Str("client_ip", ClientIP(ctx)).
			Dur("latency", time.Since(start)).
			Msg("grpc request")
		return resp, err
	}
}

// ClientIP returns the caller's address from x-forwarded-for, x-real-ip or the peer, or "unknown".
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get("x-forwarded-for"); len(v) > 0 {
			first, _, _ := strings.Cut(v[0], ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if v := md.Get("x-real-ip"); len(v) > 0 {
			if ip := strings.TrimSpace(v[0]); ip != "" {
				return ip
			}
		}
	}
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}
