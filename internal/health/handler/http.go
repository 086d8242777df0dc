package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Path is the HTTP readiness endpoint.
const Path = "/healthz"

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HTTP returns a gin handler for Path: 200 {"status":"ok"} or 503 with the failing dependency.
func (s *Server) HTTP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.checker != nil {
			if err := s.checker.Check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}
