package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the append-only audit row written for every Hotmart delivery.
type WebhookEvent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType string         `json:"event_type" gorm:"not null;size:100;index"`
	EventData datatypes.JSON `json:"event_data" gorm:"not null"`

	HotmartSubscriptionID *string `json:"hotmart_subscription_id" gorm:"size:100"`
	HotmartPurchaseID     *string `json:"hotmart_purchase_id" gorm:"size:100;index"`

	// Lower-cased buyer email and the account it resolved to, if any
	BuyerEmail *string `json:"buyer_email" gorm:"size:255;index"`
	UserID     *string `json:"user_id" gorm:"size:64;index"`

	Processed     bool       `json:"processed" gorm:"not null;default:false"`
	ProcessedAt   *time.Time `json:"processed_at"`
	ErrorMessage  *string    `json:"error_message" gorm:"type:text"`
	ResultMessage *string    `json:"result_message" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// EventOutcome is the processing result written back onto a WebhookEvent.
type EventOutcome struct {
	Processed     bool
	ErrorMessage  *string
	ResultMessage *string
	UserID        *string
	At            time.Time
}
