package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routes struct {
	method, path string
}

func (r routes) Register(g gin.IRoutes) {
	g.Handle(r.method, r.path, func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})
}

func TestNewRouter_RequiresRecovery(t *testing.T) {
	_, err := NewRouter(RouterDeps{Log: zerolog.Nop()})
	assert.Error(t, err)
}

func TestNewRouter_Routes(t *testing.T) {
	r, err := NewRouter(RouterDeps{
		Recovery: routes{http.MethodPost, "/api/auth/forgot-password/request"},
		DevOTP:   routes{http.MethodGet, "/dev/forgot-password/otp"},
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err)

	testCases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodPost, "/api/auth/forgot-password/request", http.StatusOK},
		{http.MethodGet, "/dev/forgot-password/otp", http.StatusOK},
		{http.MethodGet, "/api/auth/forgot-password/request", http.StatusNotFound},
	}
	for _, tc := range testCases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestNewRouter_MiddlewareApplied(t *testing.T) {
	r, err := NewRouter(RouterDeps{Recovery: routes{http.MethodPost, "/x"}, Log: zerolog.Nop()})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}

func TestNewRouter_CORS(t *testing.T) {
	r, err := NewRouter(RouterDeps{
		Recovery:    routes{http.MethodPost, "/api/auth/forgot-password/reset"},
		CORSOrigins: []string{"https://app.example.com"},
		Log:         zerolog.Nop(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/forgot-password/reset", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/forgot-password/reset", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
