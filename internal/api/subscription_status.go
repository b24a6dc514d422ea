package api

import (
	"net/http"

	"financial-mirror/internal/services"
	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

const reasonStatusCheckFailed = "error checking subscription"

// GetSubscriptionStatus gets subscription status
// GET /api/subscription/status?userId=xxx
func (h *Handler) GetSubscriptionStatus(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID = c.Query("user_id")
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	status, err := h.subscriptions.GetStatus(c.Request.Context(), userID)
	if err != nil {
		// The UI gates access on isActive; a store outage reads as no access.
		logging.Errorf("Failed to check subscription for user %s: %v", userID, err)
		c.JSON(http.StatusOK, services.SubscriptionStatus{Reason: reasonStatusCheckFailed})
		return
	}

	c.JSON(http.StatusOK, status)
}
