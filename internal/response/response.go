package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WebhookResponse is the body returned to the payment provider.
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Success returns a success response
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Message: "success",
		Data:    data,
	}
}

// Error returns an error response
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Success(data))
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Error(message))
}

// WebhookOK acknowledges a handled webhook.
func WebhookOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: message})
}

// WebhookError reports an unsuccessful webhook outcome with the given status.
func WebhookError(c *gin.Context, statusCode int, errMsg string) {
	c.JSON(statusCode, WebhookResponse{Success: false, Error: errMsg})
}

// AbortWebhookError is WebhookError for middleware.
func AbortWebhookError(c *gin.Context, statusCode int, errMsg string) {
	c.AbortWithStatusJSON(statusCode, WebhookResponse{Success: false, Error: errMsg})
}
