package health

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockPinger struct {
	pingErr error
	calls   int
}

func (m *mockPinger) PingContext(context.Context) error {
	m.calls++
	return m.pingErr
}

type mockPolicyChecker struct {
	healthErr error
}

func (m *mockPolicyChecker) HealthCheck(context.Context) error {
	return m.healthErr
}

func TestChecker_NilIsHealthy(t *testing.T) {
	var c *Checker
	if err := c.Check(context.Background()); err != nil {
		t.Fatalf("nil Checker: %v", err)
	}
	if err := (&Checker{}).Check(context.Background()); err != nil {
		t.Fatalf("empty Checker: %v", err)
	}
}

func TestChecker_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		checker *Checker
		prefix  string
	}{
		{"db", &Checker{DB: &mockPinger{pingErr: errors.New("connection refused")}}, "database:"},
		{"redis", &Checker{DB: &mockPinger{}, Redis: &mockPinger{pingErr: errors.New("i/o timeout")}}, "redis:"},
		{"policy", &Checker{Policy: &mockPolicyChecker{healthErr: errors.New("rego compile failed")}}, "policy:"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.checker.Check(context.Background())
			if err == nil {
				t.Fatal("Check should fail")
			}
			if !strings.HasPrefix(err.Error(), tc.prefix) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tc.prefix)
			}
		})
	}
}

func TestChecker_StopsAtFirstFailure(t *testing.T) {
	redisPinger := &mockPinger{}
	c := &Checker{DB: &mockPinger{pingErr: errors.New("down")}, Redis: redisPinger}
	if err := c.Check(context.Background()); err == nil {
		t.Fatal("Check should fail")
	}
	if redisPinger.calls != 0 {
		t.Errorf("redis pinged %d times after db failure, want 0", redisPinger.calls)
	}
}

func TestRedisPinger(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := RedisPinger{Client: client}
	if err := p.PingContext(context.Background()); err != nil {
		t.Fatalf("PingContext: %v", err)
	}

	mr.Close()
	if err := p.PingContext(context.Background()); err == nil {
		t.Error("PingContext should fail once redis is gone")
	}
}
