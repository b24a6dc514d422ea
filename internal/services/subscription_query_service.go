package services

import (
	"context"
	"errors"
	"time"

	"financial-mirror/internal/database"
	"financial-mirror/internal/models"
)

const (
	ReasonSubscriptionNotFound = "subscription not found"
	ReasonSubscriptionInactive = "subscription inactive"
	ReasonSubscriptionExpired  = "subscription expired"
)

// SubscriptionReader loads the subscription row of an account.
type SubscriptionReader interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
}

// SubscriptionStatus is the access verdict for an account.
type SubscriptionStatus struct {
	IsActive     bool                 `json:"isActive"`
	Subscription *models.Subscription `json:"subscription"`
	Reason       string               `json:"reason,omitempty"`
}

// SubscriptionQueryService answers "does this account have access". It never writes.
type SubscriptionQueryService struct {
	reader SubscriptionReader
	now    func() time.Time
}

func NewSubscriptionQueryService(reader SubscriptionReader) *SubscriptionQueryService {
	return &SubscriptionQueryService{reader: reader, now: time.Now}
}

// GetStatus applies, in order: missing row, non-active status, past expiry.
// An expired row is reported as such but keeps its stored status.
func (s *SubscriptionQueryService) GetStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.reader.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrSubscriptionNotFound) {
			return &SubscriptionStatus{Reason: ReasonSubscriptionNotFound}, nil
		}
		return nil, err
	}

	if sub.Status != models.SubscriptionStatusActive {
		return &SubscriptionStatus{Subscription: sub, Reason: ReasonSubscriptionInactive}, nil
	}

	if sub.ExpiresAt != nil && sub.ExpiresAt.Before(s.now()) {
		return &SubscriptionStatus{Subscription: sub, Reason: ReasonSubscriptionExpired}, nil
	}

	return &SubscriptionStatus{IsActive: true, Subscription: sub}, nil
}
