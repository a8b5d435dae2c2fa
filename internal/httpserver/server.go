package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/badge-clock-relay/internal/config"
	"github.com/PratikDhanave/badge-clock-relay/internal/handlers"
	"github.com/PratikDhanave/badge-clock-relay/internal/relay"
	"github.com/PratikDhanave/badge-clock-relay/internal/store"
)

// NewRouter wires the webhook and the operator endpoints.
// Liveness: /health, /ready
// Webhook: /webhook/hikvision/events
// Operator: /webhook/health, /webhook/deliveries
//
// audit may be nil when no audit store is configured.
func NewRouter(cfg config.Config, ing *relay.Ingestor, audit store.AuditStore) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the audit store is reachable when one is in use.
	r.GET("/ready", func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := audit.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterWebhookRoutes(r, ing)
	handlers.RegisterStatusRoutes(r, ing, cfg.DryRun, audit)

	return r
}
