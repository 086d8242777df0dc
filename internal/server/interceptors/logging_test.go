package interceptors

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const healthMethod = "/grpc.health.v1.Health/Check"

func TestClientIP(t *testing.T) {
	peerCtx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 51000}})
	testCases := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"none", context.Background(), "unknown"},
		{"peer", peerCtx, "10.0.0.7"},
		{"forwarded first hop", metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-forwarded-for", " 203.0.113.9 , 10.0.0.1")), "203.0.113.9"},
		{"real ip", metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-real-ip", "198.51.100.2")), "198.51.100.2"},
		{"empty forwarded falls through", metadata.NewIncomingContext(peerCtx, metadata.Pairs("x-forwarded-for", " ")), "10.0.0.7"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClientIP(tc.ctx); got != tc.want {
				t.Errorf("ClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLoggingUnary(t *testing.T) {
	testCases := []struct {
		name      string
		method    string
		err       error
		wantLog   bool
		wantLevel string
	}{
		{"ok", "/svc/Method", nil, true, `"level":"info"`},
		{"skipped on success", healthMethod, nil, false, ""},
		{"skipped method still logs failures", healthMethod, status.Error(codes.Unavailable, "down"), true, `"level":"error"`},
		{"client error", "/svc/Method", status.Error(codes.PermissionDenied, "no"), true, `"level":"warn"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			ic := LoggingUnary(zerolog.New(&buf), map[string]bool{healthMethod: true})
			handler := func(context.Context, any) (any, error) { return "resp", tc.err }

			resp, err := ic(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: tc.method}, handler)
			if resp != "resp" || err != tc.err {
				t.Fatalf("interceptor changed result: %v, %v", resp, err)
			}
			out := buf.String()
			if !tc.wantLog {
				if out != "" {
					t.Errorf("unexpected log: %s", out)
				}
				return
			}
			if !strings.Contains(out, tc.wantLevel) || !strings.Contains(out, tc.method) {
				t.Errorf("log = %s, want level %s and method %s", out, tc.wantLevel, tc.method)
			}
		})
	}
}
