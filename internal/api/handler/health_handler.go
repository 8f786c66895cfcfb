package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing database is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// BrokerStatus reports whether the broker connection is alive
type BrokerStatus interface {
	IsConnected() bool
}

// HealthHandler answers liveness probes with the state of each backing service
type HealthHandler struct {
	logger   *slog.Logger
	database Pinger
	broker   BrokerStatus
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{
		logger:   deps.Logger,
		database: deps.Database,
		broker:   deps.Broker,
	}
}

// Health handles GET /health
// Reports 200 when every configured dependency is reachable, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	healthy := true
	components := gin.H{}

	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.database.HealthCheck(ctx); err != nil {
			h.logger.Error("Database health check failed",
				slog.String("error", err.Error()),
			)
			healthy = false
			components["database"] = "unhealthy"
		} else {
			components["database"] = "healthy"
		}
	}

	if h.broker != nil {
		if h.broker.IsConnected() {
			components["rabbitmq"] = "healthy"
		} else {
			healthy = false
			components["rabbitmq"] = "unhealthy"
		}
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":     state,
		"service":    "media-morph-api",
		"components": components,
	})
}
