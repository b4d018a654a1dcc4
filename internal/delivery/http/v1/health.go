package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	healthCheckTimeout = 2 * time.Second
	serviceName        = "Task Management API"
)

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().
			Err(err).
			Msg("database is unreachable")
		c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:   "unhealthy",
			Service:  serviceName,
			Database: "down",
		})
		return
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:   "healthy",
		Service:  serviceName,
		Database: "up",
	})
}
