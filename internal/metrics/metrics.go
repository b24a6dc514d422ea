package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts Hotmart webhook requests by event type and status.
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financial_mirror",
		Name:      "webhook_requests_total",
		Help:      "Total Hotmart webhook requests by event type and HTTP status.",
	}, []string{"event_type", "status"})

	// WebhookDuration tracks Hotmart webhook processing latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "financial_mirror",
		Name:      "webhook_duration_seconds",
		Help:      "Hotmart webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// SubscriptionTransitionsTotal counts applied subscription transitions.
	SubscriptionTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financial_mirror",
		Name:      "subscription_transitions_total",
		Help:      "Subscription transitions applied, by kind.",
	}, []string{"transition"})

	// DirectoryLookupsTotal counts email to account resolutions by result.
	DirectoryLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financial_mirror",
		Name:      "directory_lookups_total",
		Help:      "Account lookups by email (hit, miss, cache_hit, error).",
	}, []string{"result"})

	// AuditWriteFailuresTotal counts best-effort event log writes that failed.
	AuditWriteFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "financial_mirror",
		Name:      "audit_write_failures_total",
		Help:      "Webhook event log writes that failed, by stage (insert, outcome).",
	}, []string{"stage"})
)
