package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether the service's backing stores are
// reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	if err := h.healthChecker.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
