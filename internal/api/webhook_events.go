package api

import (
	"errors"
	"net/http"
	"strconv"

	"financial-mirror/internal/database"
	"financial-mirror/internal/response"
	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

// ListWebhookEvents lists audited deliveries, newest first.
// GET /api/admin/webhook-events?email=&event_type=&unresolved=true&limit=50
func (h *Handler) ListWebhookEvents(c *gin.Context) {
	filter := database.EventFilter{
		BuyerEmail: c.Query("email"),
		EventType:  c.Query("event_type"),
	}

	if raw := c.Query("unresolved"); raw != "" {
		unresolved, err := strconv.ParseBool(raw)
		if err != nil {
			response.ErrorJSON(c, http.StatusBadRequest, "unresolved must be a boolean")
			return
		}
		filter.Unresolved = unresolved
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.ErrorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	events, err := h.events.List(c.Request.Context(), filter)
	if err != nil {
		logging.Errorf("Failed to list webhook events: %v", err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list webhook events")
		return
	}

	response.SuccessJSON(c, events)
}

// ReplayWebhookEvent re-runs one stored delivery.
// POST /api/admin/webhook-events/:id/replay
func (h *Handler) ReplayWebhookEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid event id")
		return
	}

	result, err := h.processor.Replay(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, database.ErrEventNotFound) {
			response.ErrorJSON(c, http.StatusNotFound, "Webhook event not found")
			return
		}
		logging.Errorf("Replay of webhook event %d failed: %v", id, err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Replay failed: "+err.Error())
		return
	}

	response.SuccessJSON(c, result)
}

// ReplayPendingWebhookEvents replays every unresolved delivery of a buyer,
// typically right after they created their account.
// POST /api/admin/webhook-events/replay?email=buyer@example.com
func (h *Handler) ReplayPendingWebhookEvents(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.ErrorJSON(c, http.StatusBadRequest, "email is required")
		return
	}

	results, err := h.processor.ReplayPending(c.Request.Context(), email)
	if err != nil {
		logging.Errorf("Replay of pending events for %s failed after %d events: %v", email, len(results), err)
		c.JSON(http.StatusInternalServerError, response.Response{
			Success: false,
			Message: "Replay failed: " + err.Error(),
			Data:    results,
		})
		return
	}

	response.SuccessJSON(c, results)
}
