package services

import (
	"time"

	"financial-mirror/internal/models"
)

// Hotmart event names. Matching is exact and case-sensitive.
const (
	EventPurchaseApproved         = "PURCHASE_APPROVED"
	EventPurchaseComplete         = "PURCHASE_COMPLETE"
	EventPurchaseCanceled         = "PURCHASE_CANCELED"
	EventPurchaseChargeback       = "PURCHASE_CHARGEBACK"
	EventPurchaseRefunded         = "PURCHASE_REFUNDED"
	EventPurchaseDelayed          = "PURCHASE_DELAYED"
	EventSubscriptionCancellation = "SUBSCRIPTION_CANCELLATION"
	EventSubscriptionRenewal      = "SUBSCRIPTION_RENEWAL"
)

// Transition is the kind of change an event applies to a subscription.
type Transition string

const (
	TransitionNone       Transition = "none"
	TransitionActivate   Transition = "activate"
	TransitionDeactivate Transition = "deactivate"
	TransitionRenew      Transition = "renew"
)

var eventTransitions = map[string]Transition{
	EventPurchaseApproved:         TransitionActivate,
	EventPurchaseComplete:         TransitionActivate,
	EventPurchaseCanceled:         TransitionDeactivate,
	EventPurchaseChargeback:       TransitionDeactivate,
	EventPurchaseRefunded:         TransitionDeactivate,
	EventSubscriptionCancellation: TransitionDeactivate,
	EventPurchaseDelayed:          TransitionDeactivate,
	EventSubscriptionRenewal:      TransitionRenew,
}

// TransitionFor maps an event type to its transition. Unknown types map to TransitionNone.
func TransitionFor(eventType string) Transition {
	if t, ok := eventTransitions[eventType]; ok {
		return t
	}
	return TransitionNone
}

// Decision is the patch a single event produces.
type Decision struct {
	Transition Transition
	Fields     models.SubscriptionFields
}

// SubscriptionStateMachine turns provider events into subscription patches.
// It does not touch storage.
type SubscriptionStateMachine struct {
	defaultValidity time.Duration
}

// NewSubscriptionStateMachine uses defaultValidity as the expiry window when
// an event carries no next charge date.
func NewSubscriptionStateMachine(defaultValidity time.Duration) *SubscriptionStateMachine {
	return &SubscriptionStateMachine{defaultValidity: defaultValidity}
}

// Decide computes the patch for eventType at time now.
func (m *SubscriptionStateMachine) Decide(eventType string, n *models.HotmartNotification, now time.Time) Decision {
	transition := TransitionFor(eventType)
	decision := Decision{Transition: transition}

	switch transition {
	case TransitionActivate:
		status := models.SubscriptionStatusActive
		plan := models.DefaultPlan
		startsAt := now
		if approved := n.ApprovedAt(); approved != nil {
			startsAt = *approved
		}
		expiresAt := m.expiry(n, now)

		decision.Fields = models.SubscriptionFields{
			Status:                &status,
			Plan:                  &plan,
			StartsAt:              &startsAt,
			ExpiresAt:             &expiresAt,
			HotmartSubscriptionID: n.SubscriptionID(),
			HotmartPurchaseID:     n.PurchaseID(),
		}

	case TransitionDeactivate:
		status := models.SubscriptionStatusInactive
		decision.Fields = models.SubscriptionFields{Status: &status}

	case TransitionRenew:
		status := models.SubscriptionStatusActive
		expiresAt := m.expiry(n, now)
		decision.Fields = models.SubscriptionFields{Status: &status, ExpiresAt: &expiresAt}
	}

	return decision
}

func (m *SubscriptionStateMachine) expiry(n *models.HotmartNotification, now time.Time) time.Time {
	if next := n.NextChargeAt(); next != nil {
		return *next
	}
	return now.Add(m.defaultValidity)
}
