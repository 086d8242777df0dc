package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"password-recovery/internal/recovery"
)

type fakeBackend struct {
	mu     sync.Mutex
	resets []recovery.ResetRequest
	phones []string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case recovery.CodeRequestPath:
		var req recovery.CodeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.phones = append(b.phones, req.Phone)
		if req.Phone != "+15550100200" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(recovery.Response{Error: "No account found for this phone number"})
			return
		}
		_ = json.NewEncoder(w).Encode(recovery.Response{Success: true})
	case recovery.PasswordResetPath:
		var req recovery.ResetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.resets = append(b.resets, req)
		if req.Code != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(recovery.Response{Error: "Invalid or expired code"})
			return
		}
		_ = json.NewEncoder(w).Encode(recovery.Response{Success: true})
	default:
		http.NotFound(w, r)
	}
}

func execute(t *testing.T, backend http.Handler, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RECOVERY_BASE_URL", "")
	srv := httptest.NewServer(backend)
	defer srv.Close()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append([]string{"--base-url", srv.URL, "--redirect-delay", "10ms"}, args...))
	err := cmd.Execute()
	return out.String() + errOut.String(), err
}

func TestRecover_HappyPath(t *testing.T) {
	b := &fakeBackend{}
	out, err := execute(t, b, "+15550100200\n123456\nsecret1\nsecret1\n")
	if err != nil {
		t.Fatalf("Execute: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Continue at /login") {
		t.Errorf("output missing redirect:\n%s", out)
	}
	if len(b.resets) != 1 || b.resets[0].NewPassword != "secret1" || b.resets[0].Phone != "+15550100200" {
		t.Errorf("resets = %+v", b.resets)
	}
}

func TestRecover_RetriesAfterErrors(t *testing.T) {
	b := &fakeBackend{}
	stdin := strings.Join([]string{
		"+15550000000", // unknown phone: asked again
		"+15550100200",
		"123456",
		"short", "short", // too short: no request
		"secret1", "secret2", // mismatch: no request
		"secret1", "secret1",
	}, "\n") + "\n"
	out, err := execute(t, b, stdin)
	if err != nil {
		t.Fatalf("Execute: %v\n%s", err, out)
	}
	if len(b.phones) != 2 {
		t.Errorf("code requests = %v, want 2", b.phones)
	}
	if len(b.resets) != 1 {
		t.Errorf("reset requests = %d, want 1 (local checks must not call the server)", len(b.resets))
	}
	if !strings.Contains(out, "No account found for this phone number") {
		t.Errorf("endpoint error not shown:\n%s", out)
	}
}

func TestRecover_PhoneFlagSkipsPrompt(t *testing.T) {
	b := &fakeBackend{}
	out, err := execute(t, b, "123456\nsecret1\nsecret1\n", "--phone", "+15550100200")
	if err != nil {
		t.Fatalf("Execute: %v\n%s", err, out)
	}
	if len(b.phones) != 1 || b.phones[0] != "+15550100200" {
		t.Errorf("phones = %v", b.phones)
	}
}

func TestRecover_EOFStops(t *testing.T) {
	b := &fakeBackend{}
	if _, err := execute(t, b, "+15550100200\n"); err == nil {
		t.Fatal("Execute should fail when input ends before the flow completes")
	}
	if len(b.resets) != 0 {
		t.Errorf("no reset expected, got %+v", b.resets)
	}
}
