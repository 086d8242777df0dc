// Package handler exposes the recovery service as the JSON endpoints the recovery client calls.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"password-recovery/internal/audit"
	"password-recovery/internal/passwordreset/service"
	"password-recovery/internal/phone"
	"password-recovery/internal/recovery"
)

// User-facing error texts.
const (
	msgPhoneRequired    = "Phone number is required"
	msgInvalidPhone     = "Invalid phone number"
	msgNotRegistered    = "No account found for this phone number"
	msgRateLimited      = "Too many requests. Please try again later"
	msgDeliveryFailed   = "Could not send the code. Please try again"
	msgCodeRequired     = "Code is required"
	msgPasswordRequired = "New password is required"
	msgInvalidCode      = "Invalid or expired code"
	msgAttemptsExceeded = "Too many wrong codes. Please request a new one"
	msgInvalidRequest   = "Invalid request"
	msgInternal         = "Something went wrong. Please try again"
)

// Recoverer is the service the handler drives.
type Recoverer interface {
	RequestCode(ctx context.Context, rawPhone string) error
	ResetPassword(ctx context.Context, rawPhone, code, newPassword string) error
}

type codeRequest struct {
	Phone string `json:"phone" binding:"required,phone"`
}

type resetRequest struct {
	Phone       string `json:"phone" binding:"required,phone"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// Handler serves recovery.CodeRequestPath and recovery.PasswordResetPath.
type Handler struct {
	svc Recoverer
	log zerolog.Logger
}

// New returns a Handler for svc.
func New(svc Recoverer, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts both endpoints on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST(recovery.CodeRequestPath, h.RequestCode)
	r.POST(recovery.PasswordResetPath, h.ResetPassword)
}

// RequestCode handles POST recovery.CodeRequestPath with {"phone"}.
func (h *Handler) RequestCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	if err := h.svc.RequestCode(requestContext(c), req.Phone); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recovery.Response{Success: true})
}

// ResetPassword handles POST recovery.PasswordResetPath with {"phone","code","newPassword"}.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	if err := h.svc.ResetPassword(requestContext(c), req.Phone, req.Code, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recovery.Response{Success: true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var pe *service.PolicyError
	switch {
	case errors.As(err, &pe):
		fail(c, http.StatusUnprocessableEntity, pe.Error())
	case errors.Is(err, service.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, msgInvalidPhone)
	case errors.Is(err, service.ErrCodeRequired):
		fail(c, http.StatusBadRequest, msgCodeRequired)
	case errors.Is(err, service.ErrInvalidCode):
		fail(c, http.StatusBadRequest, msgInvalidCode)
	case errors.Is(err, service.ErrAttemptsExceeded):
		fail(c, http.StatusBadRequest, msgAttemptsExceeded)
	case errors.Is(err, service.ErrPhoneNotRegistered):
		fail(c, http.StatusNotFound, msgNotRegistered)
	case errors.Is(err, service.ErrRateLimited):
		fail(c, http.StatusTooManyRequests, msgRateLimited)
	case errors.Is(err, service.ErrDeliveryFailed):
		fail(c, http.StatusBadGateway, msgDeliveryFailed)
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("password reset: internal error")
		fail(c, http.StatusInternalServerError, msgInternal)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, recovery.Response{Success: false, Error: msg})
}

// requestContext carries the client IP to rate limiting and audit.
func requestContext(c *gin.Context) context.Context {
	return audit.WithClientIP(c.Request.Context(), c.ClientIP())
}

// bindMessage turns the first binding failure into a user-facing message.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return msgInvalidRequest
	}
	fe := ve[0]
	switch fe.Field() {
	case "Phone":
		if fe.Tag() == phone.Tag {
			return msgInvalidPhone
		}
		return msgPhoneRequired
	case "Code":
		return msgCodeRequired
	case "NewPassword":
		return msgPasswordRequired
	}
	return msgInvalidRequest
}
