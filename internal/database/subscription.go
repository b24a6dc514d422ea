package database

import (
	"context"
	"errors"
	"fmt"

	"financial-mirror/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionStore persists one subscription row per account.
type SubscriptionStore struct {
	db *gorm.DB
}

func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Upsert inserts or updates the account's subscription in a single statement
// keyed on user_id. Only the columns present in fields are overwritten on
// conflict, so concurrent deliveries for the same account cannot create a
// second row and absent values never erase stored ones.
func (s *SubscriptionStore) Upsert(ctx context.Context, userID string, fields models.SubscriptionFields) (*models.Subscription, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	row := models.Subscription{
		UserID: userID,
		Status: models.SubscriptionStatusInactive,
		Plan:   models.DefaultPlan,
	}
	fields.ApplyTo(&row)

	updates := append(fields.Columns(), "updated_at")

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	// Re-read: on conflict the in-memory row does not reflect untouched columns.
	return s.GetByUserID(ctx, userID)
}

// GetByUserID returns ErrSubscriptionNotFound when the account has no row.
func (s *SubscriptionStore) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &subscription, nil
}
