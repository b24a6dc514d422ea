package services

import (
	"testing"
	"time"

	"financial-mirror/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNotification(t *testing.T, raw string) *models.HotmartNotification {
	t.Helper()
	n, err := models.ParseHotmartNotification([]byte(raw))
	require.NoError(t, err)
	return n
}

func TestTransitionFor(t *testing.T) {
	cases := map[string]Transition{
		"PURCHASE_APPROVED":         TransitionActivate,
		"PURCHASE_COMPLETE":         TransitionActivate,
		"PURCHASE_CANCELED":         TransitionDeactivate,
		"PURCHASE_CHARGEBACK":       TransitionDeactivate,
		"PURCHASE_REFUNDED":         TransitionDeactivate,
		"SUBSCRIPTION_CANCELLATION": TransitionDeactivate,
		"PURCHASE_DELAYED":          TransitionDeactivate,
		"SUBSCRIPTION_RENEWAL":      TransitionRenew,
		"purchase_approved":         TransitionNone,
		" PURCHASE_APPROVED ":       TransitionNone,
		"PURCHASE_REFUNDED\n":       TransitionNone,
		"PURCHASE_PROTEST":          TransitionNone,
		"UNKNOWN":                   TransitionNone,
	}
	for eventType, want := range cases {
		assert.Equal(t, want, TransitionFor(eventType), eventType)
	}
}

func TestDecideActivateUsesEventDates(t *testing.T) {
	m := NewSubscriptionStateMachine(365 * 24 * time.Hour)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	n := mustNotification(t, `{"event":"PURCHASE_APPROVED","data":{
		"buyer":{"email":"a@x.com"},
		"purchase":{"transaction":"HP1","approved_date":"2024-01-01T00:00:00Z"},
		"subscription":{"subscriber":{"code":"SUB1"},"date_next_charge":"2025-01-01T00:00:00Z"}}}`)

	d := m.Decide("PURCHASE_APPROVED", n, now)

	require.Equal(t, TransitionActivate, d.Transition)
	assert.Equal(t, models.SubscriptionStatusActive, *d.Fields.Status)
	assert.Equal(t, models.DefaultPlan, *d.Fields.Plan)
	assert.True(t, d.Fields.StartsAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, d.Fields.ExpiresAt.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "HP1", *d.Fields.HotmartPurchaseID)
	assert.Equal(t, "SUB1", *d.Fields.HotmartSubscriptionID)
}

func TestDecideActivateDefaults(t *testing.T) {
	m := NewSubscriptionStateMachine(365 * 24 * time.Hour)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	n := mustNotification(t, `{"event":"PURCHASE_COMPLETE","data":{"buyer":{"email":"a@x.com"}}}`)

	d := m.Decide("PURCHASE_COMPLETE", n, now)

	require.Equal(t, TransitionActivate, d.Transition)
	assert.True(t, d.Fields.StartsAt.Equal(now))
	assert.True(t, d.Fields.ExpiresAt.Equal(now.Add(365*24*time.Hour)))
	assert.Nil(t, d.Fields.HotmartPurchaseID)
	assert.Nil(t, d.Fields.HotmartSubscriptionID)
}

func TestDecideDeactivateOnlyTouchesStatus(t *testing.T) {
	m := NewSubscriptionStateMachine(time.Hour)
	n := mustNotification(t, `{"event":"PURCHASE_REFUNDED","data":{"purchase":{"transaction":"HP1"}}}`)

	for _, eventType := range []string{EventPurchaseCanceled, EventPurchaseChargeback, EventPurchaseRefunded, EventSubscriptionCancellation, EventPurchaseDelayed} {
		d := m.Decide(eventType, n, time.Now())
		require.Equal(t, TransitionDeactivate, d.Transition, eventType)
		assert.Equal(t, []string{"status"}, d.Fields.Columns(), eventType)
		assert.Equal(t, models.SubscriptionStatusInactive, *d.Fields.Status)
	}
}

func TestDecideRenew(t *testing.T) {
	m := NewSubscriptionStateMachine(365 * 24 * time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	withDate := m.Decide(EventSubscriptionRenewal, mustNotification(t,
		`{"event":"SUBSCRIPTION_RENEWAL","data":{"subscription":{"date_next_charge":"2026-01-01T00:00:00Z"}}}`), now)
	assert.Equal(t, TransitionRenew, withDate.Transition)
	assert.Equal(t, []string{"status", "expires_at"}, withDate.Fields.Columns())
	assert.True(t, withDate.Fields.ExpiresAt.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	withoutDate := m.Decide(EventSubscriptionRenewal, mustNotification(t, `{"event":"SUBSCRIPTION_RENEWAL"}`), now)
	assert.True(t, withoutDate.Fields.ExpiresAt.Equal(now.Add(365*24*time.Hour)))
}

func TestDecideUnknownIsNoop(t *testing.T) {
	m := NewSubscriptionStateMachine(time.Hour)
	d := m.Decide("PURCHASE_BILLET_PRINTED", mustNotification(t, `{"event":"PURCHASE_BILLET_PRINTED"}`), time.Now())
	assert.Equal(t, TransitionNone, d.Transition)
	assert.Empty(t, d.Fields.Columns())
}

func TestDecidePaddedEventTypeIsNoop(t *testing.T) {
	m := NewSubscriptionStateMachine(time.Hour)
	n := mustNotification(t, `{"event":" PURCHASE_APPROVED ","data":{"buyer":{"email":"a@example.com"}}}`)
	d := m.Decide(n.EventType(), n, time.Now())
	assert.Equal(t, TransitionNone, d.Transition)
	assert.Empty(t, d.Fields.Columns())
}
