package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	healthhandler "password-recovery/internal/health/handler"
	"password-recovery/internal/phone"
	"password-recovery/internal/platform/logging"
)

// DefaultRequestTimeout bounds one HTTP request, including SMS delivery.
const DefaultRequestTimeout = 15 * time.Second

// Registrar mounts a group of routes.
type Registrar interface {
	Register(r gin.IRoutes)
}

// RouterDeps configures NewRouter.
type RouterDeps struct {
	// Recovery serves the forgot-password endpoints. Required.
	Recovery Registrar
	// DevOTP serves the dev code lookup. Nil unless dev OTP mode is on.
	DevOTP Registrar
	// Health serves GET /healthz. Nil reports ok unconditionally.
	Health *healthhandler.Server
	// CORSOrigins are the browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins    []string
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

// RegisterValidators adds the custom binding tags ("phone") to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("server: gin validator engine is not go-playground/validator")
	}
	return phone.RegisterValidation(v)
}

// NewRouter returns the gin engine serving the recovery API.
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Recovery == nil {
		return nil, errors.New("server: recovery routes are required")
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinMiddleware(deps.Log))
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  deps.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(securityHeaders())
	r.Use(requestTimeout(timeout))

	health := deps.Health
	if health == nil {
		health = healthhandler.NewServer(nil, deps.Log)
	}
	r.GET(healthhandler.Path, health.HTTP())

	deps.Recovery.Register(r)
	if deps.DevOTP != nil {
		deps.DevOTP.Register(r)
	}
	return r, nil
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// requestTimeout puts a deadline on the request context; handlers observe it through their calls.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
