package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// UnknownEventType is reported when the body carries no recognizable event name.
const UnknownEventType = "UNKNOWN"

// ErrInvalidPayload is returned when a webhook body is not a JSON object.
var ErrInvalidPayload = errors.New("invalid notification payload")

// HotmartNotification wraps a decoded Hotmart webhook body. The payload shape
// changed across Hotmart versions, so every accessor walks a list of candidate
// paths and returns nil instead of failing when a key is missing.
type HotmartNotification struct {
	Body map[string]interface{}
}

// ParseHotmartNotification decodes a raw webhook body.
func ParseHotmartNotification(raw []byte) (*HotmartNotification, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var body map[string]interface{}
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidPayload)
	}

	return &HotmartNotification{Body: body}, nil
}

// EventType checks event, event_type and type in that order. The value is
// returned verbatim, so padded or lower-case names do not match any
// transition.
func (n *HotmartNotification) EventType() string {
	for _, key := range []string{"event", "event_type", "type"} {
		if v, ok := n.Body[key].(string); ok && v != "" {
			return v
		}
	}
	return UnknownEventType
}

// Data returns the event payload: the data object when present, else the whole body.
func (n *HotmartNotification) Data() map[string]interface{} {
	if data, ok := n.Body["data"].(map[string]interface{}); ok {
		return data
	}
	return n.Body
}

// BuyerEmail returns the trimmed, lower-cased buyer email.
func (n *HotmartNotification) BuyerEmail() *string {
	data := n.Data()
	email := firstString(
		lookupString(data, "buyer", "email"),
		lookupString(data, "purchase", "buyer", "email"),
	)
	if email == nil {
		return nil
	}
	normalized := NormalizeEmail(*email)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// PurchaseID returns purchase.transaction, falling back to purchase.id.
func (n *HotmartNotification) PurchaseID() *string {
	data := n.Data()
	return firstString(
		lookupString(data, "purchase", "transaction"),
		lookupString(data, "purchase", "id"),
	)
}

// SubscriptionID returns subscription.subscriber.code, falling back to subscription.id.
func (n *HotmartNotification) SubscriptionID() *string {
	data := n.Data()
	return firstString(
		lookupString(data, "subscription", "subscriber", "code"),
		lookupString(data, "subscription", "id"),
	)
}

// ApprovedAt is the purchase approval time.
func (n *HotmartNotification) ApprovedAt() *time.Time {
	return parseTimestamp(lookup(n.Data(), "purchase", "approved_date"))
}

// NextChargeAt is the next charge date, read from the subscription block and
// then from the purchase block used by newer payload versions.
func (n *HotmartNotification) NextChargeAt() *time.Time {
	data := n.Data()
	if t := parseTimestamp(lookup(data, "subscription", "date_next_charge")); t != nil {
		return t
	}
	return parseTimestamp(lookup(data, "purchase", "date_next_charge"))
}

// NormalizeEmail trims and lower-cases an address for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lookup(m map[string]interface{}, path ...string) interface{} {
	var current interface{} = m
	for _, key := range path {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return current
}

// lookupString returns a non-empty string at path. Numeric ids are rendered as text.
func lookupString(m map[string]interface{}, path ...string) *string {
	var s string
	switch v := lookup(m, path...).(type) {
	case string:
		s = strings.TrimSpace(v)
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return &s
}

func firstString(candidates ...*string) *string {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

// parseTimestamp accepts epoch numbers (milliseconds above 1e12, seconds
// otherwise) and date text in any format dateparse recognizes. Text without a
// zone is read as UTC.
func parseTimestamp(v interface{}) *time.Time {
	switch value := v.(type) {
	case string:
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return fromEpoch(f)
		}
		t, err := dateparse.ParseIn(value, time.UTC)
		if err != nil {
			return nil
		}
		t = t.UTC()
		return &t
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return fromEpoch(f)
		}
	case float64:
		return fromEpoch(value)
	}
	return nil
}

func fromEpoch(f float64) *time.Time {
	if f <= 0 {
		return nil
	}
	var t time.Time
	if f > 1e12 {
		t = time.UnixMilli(int64(f)).UTC()
	} else {
		t = time.Unix(int64(f), 0).UTC()
	}
	return &t
}
