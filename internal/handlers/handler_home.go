package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// getHealth godoc
// @Summary Liveness check
// @Description Reports process uptime in seconds and the server time in milliseconds.
// @Tags root
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func getHealth(startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, dto.HealthResponse{
			OK:        true,
			Uptime:    now.Sub(startedAt).Seconds(),
			Timestamp: now.UnixMilli(),
		})
	}
}

// registerHealthRoutes registers the unauthenticated /health check.
func registerHealthRoutes(r *gin.Engine, startedAt time.Time) {
	r.GET("/health", getHealth(startedAt))
}
