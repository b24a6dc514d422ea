package middleware

import (
	"crypto/subtle"
	"net/http"

	"financial-mirror/internal/response"
	"financial-mirror/internal/services"
	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

const (
	HotmartTokenHeader  = "X-Hotmart-Hottok"
	ProviderTokenHeader = "X-Provider-Token"
	AdminKeyHeader      = "X-Admin-Key"
)

// WebhookSecretMiddleware rejects deliveries whose shared token does not match
// secret. It runs before the handler, so rejected requests never reach the
// event log. An empty secret fails every request with 500.
func WebhookSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			logging.Errorf("Rejecting webhook: %v", services.ErrWebhookSecretNotConfigured)
			response.AbortWebhookError(c, http.StatusInternalServerError, services.ErrWebhookSecretNotConfigured.Error())
			return
		}

		// Either header may carry the token; one match is enough.
		hottok := c.GetHeader(HotmartTokenHeader)
		providerToken := c.GetHeader(ProviderTokenHeader)

		if !tokenEqual(hottok, secret) && !tokenEqual(providerToken, secret) {
			logging.Warnf("Rejected webhook with invalid token from %s", c.ClientIP())
			response.AbortWebhookError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		c.Next()
	}
}

// AdminKeyMiddleware protects operator routes. Without a configured key the
// routes answer 503.
func AdminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			response.ErrorJSON(c, http.StatusServiceUnavailable, "Admin API disabled")
			c.Abort()
			return
		}

		if !tokenEqual(c.GetHeader(AdminKeyHeader), adminKey) {
			response.ErrorJSON(c, http.StatusUnauthorized, "Invalid admin key")
			c.Abort()
			return
		}

		c.Next()
	}
}

func tokenEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
