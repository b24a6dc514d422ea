package database

import (
	"context"
	"errors"
	"fmt"

	"financial-mirror/internal/models"

	"gorm.io/gorm"
)

const (
	defaultEventListLimit = 50
	maxEventListLimit     = 500
)

// EventFilter narrows List results.
type EventFilter struct {
	BuyerEmail string
	EventType  string
	// Unresolved keeps rows that failed or ended without a linked account.
	Unresolved bool
	Limit      int
}

// EventLog is the append-only audit trail of webhook deliveries.
type EventLog struct {
	db *gorm.DB
}

func NewEventLog(db *gorm.DB) *EventLog {
	return &EventLog{db: db}
}

// Record inserts a new event and fills in its id.
func (l *EventLog) Record(ctx context.Context, event *models.WebhookEvent) error {
	if err := l.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

// RecordOutcome writes the processing result onto the event row. It targets
// the row by id; when the insert failed earlier (id 0) it falls back to every
// row carrying the purchase id. It returns the number of rows touched.
func (l *EventLog) RecordOutcome(ctx context.Context, id uint, purchaseID *string, outcome models.EventOutcome) (int64, error) {
	query := l.db.WithContext(ctx).Model(&models.WebhookEvent{})
	switch {
	case id != 0:
		query = query.Where("id = ?", id)
	case purchaseID != nil && *purchaseID != "":
		query = query.Where("hotmart_purchase_id = ?", *purchaseID)
	default:
		return 0, nil
	}

	updates := map[string]interface{}{
		"processed":      outcome.Processed,
		"error_message":  outcome.ErrorMessage,
		"result_message": outcome.ResultMessage,
	}
	if outcome.Processed {
		at := outcome.At
		updates["processed_at"] = &at
	}
	if outcome.UserID != nil {
		updates["user_id"] = *outcome.UserID
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to record webhook outcome: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Get returns ErrEventNotFound for unknown ids.
func (l *EventLog) Get(ctx context.Context, id uint) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := l.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return &event, nil
}

// List returns the newest events first.
func (l *EventLog) List(ctx context.Context, filter EventFilter) ([]models.WebhookEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventListLimit
	}
	if limit > maxEventListLimit {
		limit = maxEventListLimit
	}

	query := l.db.WithContext(ctx).Model(&models.WebhookEvent{})
	if filter.BuyerEmail != "" {
		query = query.Where("buyer_email = ?", models.NormalizeEmail(filter.BuyerEmail))
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Unresolved {
		query = query.Where("processed = ? OR user_id IS NULL", false)
	}

	var events []models.WebhookEvent
	if err := query.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}
	return events, nil
}

// ListUnresolved returns a buyer's events that never reached a subscription,
// oldest first so a replay applies them in delivery order.
func (l *EventLog) ListUnresolved(ctx context.Context, buyerEmail string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := l.db.WithContext(ctx).
		Where("buyer_email = ?", models.NormalizeEmail(buyerEmail)).
		Where("processed = ? OR user_id IS NULL", false).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved webhook events: %w", err)
	}
	return events, nil
}
