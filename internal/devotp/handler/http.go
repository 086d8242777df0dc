// Package handler serves the dev-only code lookup endpoint.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"password-recovery/internal/devotp"
	"password-recovery/internal/phone"
)

// Path is where Register mounts the lookup.
const Path = "/dev/forgot-password/otp"

const devOTPNote = "DEV MODE ONLY"

// Handler returns the plain code last issued to a phone. Only registered when dev OTP mode is on.
type Handler struct {
	store devotp.Store
}

// New returns a Handler reading from store.
func New(store devotp.Store) *Handler {
	return &Handler{store: store}
}

// Register mounts GET Path on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET(Path, h.GetOTP)
}

// GetOTP answers GET Path?phone=... with {"otp","note"}; 400 for a bad phone, 404 if no live code.
func (h *Handler) GetOTP(c *gin.Context) {
	p, err := phone.Normalize(c.Query("phone"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone is required"})
		return
	}
	code, ok := h.store.Get(c.Request.Context(), p)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "OTP not found or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"otp": code, "note": devOTPNote})
}
