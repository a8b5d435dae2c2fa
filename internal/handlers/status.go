package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
	"github.com/PratikDhanave/badge-clock-relay/internal/relay"
	"github.com/PratikDhanave/badge-clock-relay/internal/store"
)

// RegisterStatusRoutes registers the operator endpoints.
//
// GET /webhook/health     running state, dry-run flag, pending and processed counts
// GET /webhook/deliveries recent delivery attempts, when an audit store is configured
func RegisterStatusRoutes(r gin.IRoutes, ing *relay.Ingestor, dryRun bool, audit store.AuditStore) {
	r.GET("/webhook/health", func(c *gin.Context) {
		st := ing.Stats()
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          "running",
			DryRun:          dryRun,
			PendingEvents:   st.Pending,
			ProcessedEvents: st.Processed,
		})
	})

	r.GET("/webhook/deliveries", func(c *gin.Context) {
		if audit == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "audit store not configured"})
			return
		}

		limit := 0
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		recs, err := audit.RecentDeliveries(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
			return
		}
		if recs == nil {
			recs = []models.DeliveryRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"deliveries": recs})
	})
}
