package services

import (
	"context"
	"fmt"
	"time"

	"financial-mirror/internal/metrics"
	"financial-mirror/internal/models"
	"financial-mirror/pkg/logging"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	MessageOK                 = "ok"
	MessageUserNotFoundYet    = "User not found yet"
	MessageBuyerEmailNotFound = "Buyer email not found"
)

// AccountResolver finds the account owning a buyer email.
type AccountResolver interface {
	ResolveAccountIDByEmail(ctx context.Context, email string) (string, bool, error)
}

// SubscriptionWriter applies a partial subscription patch atomically.
type SubscriptionWriter interface {
	Upsert(ctx context.Context, userID string, fields models.SubscriptionFields) (*models.Subscription, error)
}

// EventRecorder is the audit trail the processor writes to.
type EventRecorder interface {
	Record(ctx context.Context, event *models.WebhookEvent) error
	RecordOutcome(ctx context.Context, id uint, purchaseID *string, outcome models.EventOutcome) (int64, error)
	Get(ctx context.Context, id uint) (*models.WebhookEvent, error)
	ListUnresolved(ctx context.Context, buyerEmail string) ([]models.WebhookEvent, error)
}

// SignupInviter invites a buyer who has no account yet.
type SignupInviter interface {
	InviteBuyer(ctx context.Context, email string) error
}

// ProcessorOption configures a WebhookProcessor.
type ProcessorOption func(*WebhookProcessor)

// WithInviter enables signup invitations for unmatched buyers.
func WithInviter(inviter SignupInviter) ProcessorOption {
	return func(p *WebhookProcessor) {
		p.inviter = inviter
	}
}

// WithClock overrides the processor's time source.
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *WebhookProcessor) {
		if now != nil {
			p.now = now
		}
	}
}

// ProcessResult describes what happened to one delivery.
type ProcessResult struct {
	EventID    uint       `json:"event_id"`
	EventType  string     `json:"event_type"`
	Transition Transition `json:"transition"`
	UserID     string     `json:"user_id,omitempty"`
	// Success is false when the event was rejected as malformed.
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WebhookProcessor runs a Hotmart delivery through audit, account
// resolution, transition and outcome recording.
type WebhookProcessor struct {
	directory AccountResolver
	store     SubscriptionWriter
	events    EventRecorder
	machine   *SubscriptionStateMachine
	inviter   SignupInviter
	now       func() time.Time
}

func NewWebhookProcessor(directory AccountResolver, store SubscriptionWriter, events EventRecorder, machine *SubscriptionStateMachine, opts ...ProcessorOption) *WebhookProcessor {
	p := &WebhookProcessor{
		directory: directory,
		store:     store,
		events:    events,
		machine:   machine,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles a raw, already authenticated webhook body. It returns
// models.ErrInvalidPayload (wrapped) when the body is not a JSON object; that
// case is rejected before anything is written. A non-nil error with a non-nil
// result means processing failed after the event was audited.
func (p *WebhookProcessor) Process(ctx context.Context, raw []byte) (*ProcessResult, error) {
	n, err := models.ParseHotmartNotification(raw)
	if err != nil {
		return nil, err
	}

	event := &models.WebhookEvent{
		EventType:             n.EventType(),
		EventData:             datatypes.JSON(raw),
		HotmartSubscriptionID: n.SubscriptionID(),
		HotmartPurchaseID:     n.PurchaseID(),
		BuyerEmail:            n.BuyerEmail(),
	}

	// The audit insert is best effort: a failure must not lose the delivery.
	if err := p.events.Record(ctx, event); err != nil {
		logging.Errorf("Failed to audit %s webhook: %v", event.EventType, err)
		metrics.AuditWriteFailuresTotal.WithLabelValues("insert").Inc()
		event.ID = 0
	}

	return p.run(ctx, event.ID, n)
}

// Replay re-runs a stored event through the same pipeline and overwrites its outcome.
func (p *WebhookProcessor) Replay(ctx context.Context, eventID uint) (*ProcessResult, error) {
	event, err := p.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	n, err := models.ParseHotmartNotification(event.EventData)
	if err != nil {
		return nil, fmt.Errorf("stored event %d is unreadable: %w", eventID, err)
	}

	logging.Infof("Replaying webhook event %d (%s)", event.ID, event.EventType)
	return p.run(ctx, event.ID, n)
}

// ReplayPending replays, oldest first, every unresolved event of a buyer.
// It stops at the first processing error.
func (p *WebhookProcessor) ReplayPending(ctx context.Context, buyerEmail string) ([]*ProcessResult, error) {
	events, err := p.events.ListUnresolved(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}

	results := make([]*ProcessResult, 0, len(events))
	for _, event := range events {
		result, err := p.Replay(ctx, event.ID)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (p *WebhookProcessor) run(ctx context.Context, eventID uint, n *models.HotmartNotification) (*ProcessResult, error) {
	result := &ProcessResult{EventID: eventID, EventType: n.EventType(), Transition: TransitionNone}
	purchaseID := n.PurchaseID()

	outcome, procErr := p.apply(ctx, n, result)
	if procErr != nil {
		msg := procErr.Error()
		outcome.Processed = false
		outcome.ErrorMessage = &msg
		outcome.ResultMessage = nil
		_ = p.writeOutcome(ctx, eventID, purchaseID, outcome)

		result.Error = msg
		return result, procErr
	}

	writeErr := p.writeOutcome(ctx, eventID, purchaseID, outcome)

	if !outcome.Processed {
		result.Error = *outcome.ErrorMessage
		if writeErr != nil {
			return result, writeErr
		}
		return result, nil
	}

	result.Success = true
	if result.Message == "" {
		result.Message = MessageOK
	}
	return result, nil
}

// apply resolves the buyer and applies the transition. The returned outcome
// carries whatever was learned even when an error is returned.
func (p *WebhookProcessor) apply(ctx context.Context, n *models.HotmartNotification, result *ProcessResult) (models.EventOutcome, error) {
	outcome := models.EventOutcome{At: p.now()}
	eventType := result.EventType

	email := n.BuyerEmail()
	if email == nil {
		logging.Warnf("Hotmart %s webhook has no buyer email", eventType)
		msg := MessageBuyerEmailNotFound
		outcome.ErrorMessage = &msg
		return outcome, nil
	}

	userID, found, err := p.directory.ResolveAccountIDByEmail(ctx, *email)
	if err != nil {
		return outcome, fmt.Errorf("failed to resolve buyer account: %w", err)
	}

	if !found {
		logging.Infof("No account for buyer %s yet, %s event kept for replay", *email, eventType)
		p.inviteBuyer(ctx, *email, eventType)

		msg := MessageUserNotFoundYet
		result.Message = msg
		outcome.Processed = true
		outcome.ResultMessage = &msg
		return outcome, nil
	}

	result.UserID = userID
	outcome.UserID = &userID

	decision := p.machine.Decide(eventType, n, outcome.At)
	result.Transition = decision.Transition

	if decision.Transition == TransitionNone {
		log.Info().Str("event_type", eventType).Str("user_id", userID).Msg("Unhandled Hotmart event type")
	} else {
		sub, err := p.store.Upsert(ctx, userID, decision.Fields)
		if err != nil {
			return outcome, fmt.Errorf("failed to %s subscription: %w", decision.Transition, err)
		}
		metrics.SubscriptionTransitionsTotal.WithLabelValues(string(decision.Transition)).Inc()
		log.Info().
			Str("event_type", eventType).
			Str("user_id", userID).
			Str("transition", string(decision.Transition)).
			Str("status", sub.Status).
			Msg("Subscription updated")
	}

	outcome.Processed = true
	return outcome, nil
}

// inviteBuyer is best effort and only fires for events that grant access.
func (p *WebhookProcessor) inviteBuyer(ctx context.Context, email, eventType string) {
	if p.inviter == nil {
		return
	}
	switch TransitionFor(eventType) {
	case TransitionActivate, TransitionRenew:
	default:
		return
	}
	if err := p.inviter.InviteBuyer(ctx, email); err != nil {
		logging.Warnf("Failed to invite buyer %s: %v", email, err)
	}
}

func (p *WebhookProcessor) writeOutcome(ctx context.Context, eventID uint, purchaseID *string, outcome models.EventOutcome) error {
	if _, err := p.events.RecordOutcome(ctx, eventID, purchaseID, outcome); err != nil {
		logging.Errorf("Failed to record outcome of webhook event %d: %v", eventID, err)
		metrics.AuditWriteFailuresTotal.WithLabelValues("outcome").Inc()
		return err
	}
	return nil
}
