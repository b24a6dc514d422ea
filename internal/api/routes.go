package api

import (
	"context"
	"net/http"
	"time"

	"financial-mirror/internal/config"
	"financial-mirror/internal/database"
	"financial-mirror/internal/middleware"
	"financial-mirror/internal/models"
	"financial-mirror/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EventLister reads the webhook audit trail for operators.
type EventLister interface {
	List(ctx context.Context, filter database.EventFilter) ([]models.WebhookEvent, error)
}

// Dependencies are the components the HTTP layer serves.
type Dependencies struct {
	Config        *config.Config
	Processor     *services.WebhookProcessor
	Subscriptions *services.SubscriptionQueryService
	Events        EventLister
	// HealthCheck is optional; when set, /health reports 503 if it fails.
	HealthCheck func(ctx context.Context) error
}

// Handler holds the injected components behind each route.
type Handler struct {
	cfg           *config.Config
	processor     *services.WebhookProcessor
	subscriptions *services.SubscriptionQueryService
	events        EventLister
	healthCheck   func(ctx context.Context) error
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	h := &Handler{
		cfg:           deps.Config,
		processor:     deps.Processor,
		subscriptions: deps.Subscriptions,
		events:        deps.Events,
		healthCheck:   deps.HealthCheck,
	}

	r.Use(middleware.RequestID())

	api := r.Group("/api")
	{
		// Hotmart calls these; the POST is authenticated with the shared token
		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/hotmart", middleware.WebhookSecretMiddleware(h.cfg.HotmartWebhookSecret), h.HotmartWebhook)
			webhooks.GET("/hotmart", h.HotmartWebhookLiveness)
		}

		// Subscription routes (UI shell - no authentication required)
		subscription := api.Group("/subscription")
		{
			subscription.GET("/status", h.GetSubscriptionStatus)
		}

		api.GET("/config/checkout", h.GetCheckoutConfig)

		// Operator routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminKeyMiddleware(h.cfg.AdminAPIKey))
		{
			admin.GET("/webhook-events", h.ListWebhookEvents)
			admin.POST("/webhook-events/:id/replay", h.ReplayWebhookEvent)
			admin.POST("/webhook-events/replay", h.ReplayPendingWebhookEvents)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", h.Health)
}

// Health reports process liveness and, when configured, store reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.healthCheck != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.healthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"service": "financial-mirror",
				"error":   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "financial-mirror",
	})
}

// GetCheckoutConfig returns the Hotmart checkout link shown on the renewal screen.
// GET /api/config/checkout
func (h *Handler) GetCheckoutConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"checkout_url": h.cfg.HotmartCheckoutURL,
		"configured":   h.cfg.HotmartCheckoutURL != "",
	})
}
