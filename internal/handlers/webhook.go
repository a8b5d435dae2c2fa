package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/badge-clock-relay/internal/models"
	"github.com/PratikDhanave/badge-clock-relay/internal/relay"
)

// WebhookPath is the event destination registered with HikCentral.
const WebhookPath = "/webhook/hikvision/events"

// RegisterWebhookRoutes registers the ingestion-path endpoint.
//
// POST /webhook/hikvision/events
// - Acknowledges with code "0" once every event has an outcome
// - A body that is not a JSON object is rejected with code "1"
// - Bad elements are reported per event and never fail the batch
func RegisterWebhookRoutes(r gin.IRoutes, ing *relay.Ingestor) {
	r.POST(WebhookPath, func(c *gin.Context) {
		requestID := uuid.New().String()

		var req models.WebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("[WEBHOOK] request %s rejected: %v", requestID, err)
			c.JSON(http.StatusBadRequest, models.WebhookResponse{Code: "1", Msg: "invalid JSON payload"})
			return
		}
		// Notifications without an event list are acknowledged so the
		// controller does not keep redelivering them.
		var elements []json.RawMessage
		if req.Params != nil {
			elements = req.Params.EventList
		}
		log.Printf("[WEBHOOK] request %s: %d events", requestID, len(elements))

		report := relay.Report{Results: []relay.Result{}}
		for i, rawJSON := range elements {
			var ev models.WebhookEvent
			if err := json.Unmarshal(rawJSON, &ev); err != nil {
				// Fields decoded before the type error still identify the event in logs.
				report.Results = append(report.Results,
					ing.RecordInvalid(ev.Raw(), fmt.Sprintf("event %d: %v", i, err)))
				continue
			}
			report.Results = append(report.Results, ing.IngestOne(ev.Raw()))
		}

		c.JSON(http.StatusOK, models.WebhookResponse{
			Code: "0",
			Msg:  "OK",
			Data: gin.H{
				"request_id": requestID,
				"counts":     report.Counts(),
				"results":    report.Results,
			},
		})
	})
}
