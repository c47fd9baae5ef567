package handler

import (
	"net/http"

	"restopos/internal/infra"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	breaker *infra.Breaker
}

func NewHealthHandler(breaker *infra.Breaker) *HealthHandler {
	return &HealthHandler{breaker: breaker}
}

// Health reports liveness plus the print server breaker state so the counter
// terminals can surface a "printing degraded" banner.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"print_breaker": string(h.breaker.State()),
	})
}
