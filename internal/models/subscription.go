package models

import (
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"

	DefaultPlan = "annual"
)

// Subscription is the single access record of an account.
// Rows are never deleted; status flips between active and inactive.
type Subscription struct {
	BaseModel

	UserID string `json:"user_id" gorm:"not null;size:64;uniqueIndex"`

	Status string `json:"status" gorm:"not null;size:20;default:'inactive';index"`
	Plan   string `json:"plan" gorm:"not null;size:50;default:'annual'"`

	StartsAt  *time.Time `json:"starts_at"`
	ExpiresAt *time.Time `json:"expires_at" gorm:"index"`

	// Hotmart correlation ids
	HotmartSubscriptionID *string `json:"hotmart_subscription_id" gorm:"size:100"`
	HotmartPurchaseID     *string `json:"hotmart_purchase_id" gorm:"size:100;index"`
}

// TableName pins the table name regardless of the naming strategy.
func (Subscription) TableName() string {
	return "subscriptions"
}

// SubscriptionFields is a partial subscription update. Nil fields are left
// untouched on upsert, so a transition never clears correlation ids it did not receive.
type SubscriptionFields struct {
	Status                *string
	Plan                  *string
	StartsAt              *time.Time
	ExpiresAt             *time.Time
	HotmartSubscriptionID *string
	HotmartPurchaseID     *string
}

// Columns returns the column names carried by the patch, in a stable order.
func (f SubscriptionFields) Columns() []string {
	columns := make([]string, 0, 6)
	if f.Status != nil {
		columns = append(columns, "status")
	}
	if f.Plan != nil {
		columns = append(columns, "plan")
	}
	if f.StartsAt != nil {
		columns = append(columns, "starts_at")
	}
	if f.ExpiresAt != nil {
		columns = append(columns, "expires_at")
	}
	if f.HotmartSubscriptionID != nil {
		columns = append(columns, "hotmart_subscription_id")
	}
	if f.HotmartPurchaseID != nil {
		columns = append(columns, "hotmart_purchase_id")
	}
	return columns
}

// ApplyTo copies the present fields onto s.
func (f SubscriptionFields) ApplyTo(s *Subscription) {
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.Plan != nil {
		s.Plan = *f.Plan
	}
	if f.StartsAt != nil {
		startsAt := *f.StartsAt
		s.StartsAt = &startsAt
	}
	if f.ExpiresAt != nil {
		expiresAt := *f.ExpiresAt
		s.ExpiresAt = &expiresAt
	}
	if f.HotmartSubscriptionID != nil {
		id := *f.HotmartSubscriptionID
		s.HotmartSubscriptionID = &id
	}
	if f.HotmartPurchaseID != nil {
		id := *f.HotmartPurchaseID
		s.HotmartPurchaseID = &id
	}
}
