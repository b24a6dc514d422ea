package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"financial-mirror/internal/metrics"
	"financial-mirror/internal/models"
	"financial-mirror/internal/response"
	"financial-mirror/internal/services"
	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

// HotmartWebhook receives an authenticated Hotmart delivery.
// POST /api/webhooks/hotmart
//
// 200 means the event was handled (or rejected as malformed and audited);
// 500 asks Hotmart to retry.
func (h *Handler) HotmartWebhook(c *gin.Context) {
	start := time.Now()
	eventType := "invalid"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read Hotmart webhook body: %v", err)
		status = http.StatusInternalServerError
		response.WebhookError(c, status, "Failed to read request body")
		return
	}

	result, err := h.processor.Process(c.Request.Context(), body)
	if result != nil {
		eventType = eventTypeLabel(result.EventType)
	}

	switch {
	// The receiver answers only 200, 401 or 500, so a body that fails to
	// parse is a 500 like any other processing failure. It is never audited.
	case errors.Is(err, models.ErrInvalidPayload):
		logging.Warnf("Rejected Hotmart webhook with invalid payload: %v", err)
		status = http.StatusInternalServerError
		response.WebhookError(c, status, "Invalid JSON payload")

	case err != nil:
		logging.Errorf("Hotmart webhook processing failed: %v", err)
		status = http.StatusInternalServerError
		msg := err.Error()
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		response.WebhookError(c, status, msg)

	case !result.Success:
		response.WebhookError(c, status, result.Error)

	default:
		response.WebhookOK(c, result.Message)
	}
}

// HotmartWebhookLiveness answers uptime probes on the webhook path.
// GET /api/webhooks/hotmart
func (h *Handler) HotmartWebhookLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// eventTypeLabel bounds metric cardinality to the event types we act on.
func eventTypeLabel(eventType string) string {
	if services.TransitionFor(eventType) == services.TransitionNone {
		return "other"
	}
	return eventType
}
