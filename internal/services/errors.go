package services

import "errors"

var (
	// ErrWebhookSecretNotConfigured means HOTMART_WEBHOOK_SECRET is empty.
	ErrWebhookSecretNotConfigured = errors.New("webhook secret not configured")
	// ErrDirectoryNotConfigured means the identity service URL or key is missing.
	ErrDirectoryNotConfigured = errors.New("identity service credentials not configured")
)
