package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/videotube-api/pkg/response"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	Mongo Pinger
	Redis Pinger // optional
}

func NewHealthHandler(mongo, redis Pinger) *HealthHandler {
	return &HealthHandler{Mongo: mongo, Redis: redis}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"mongo": "ok"}
	status := http.StatusOK
	if h.Mongo == nil || h.Mongo(ctx) != nil {
		checks["mongo"] = "down"
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		checks["redis"] = "ok"
		if err := h.Redis(ctx); err != nil {
			// reported, but not fatal for the health status
			checks["redis"] = "down"
		}
	}

	if status != http.StatusOK {
		response.Error(c, status, "unhealthy", checks)
		return
	}
	response.Success(c, status, checks, "ok", nil)
}
