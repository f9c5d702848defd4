// Package metrics holds the Prometheus collectors for security events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Authentication failure reasons. Clients only ever see a uniform 401.
const (
	ReasonMissingHeader = "missing_header"
	ReasonMalformed     = "malformed_header"
	ReasonInvalidToken  = "invalid_token"
	ReasonExpiredToken  = "expired_token"
	ReasonBadPassword   = "bad_credentials"
)

var (
	// AuthFailures counts rejected authentication attempts by reason
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trade_journal_auth_failures_total",
		Help: "Rejected authentication attempts by reason.",
	}, []string{"reason"})

	// AccessDenied counts authenticated requests refused by the ownership policy
	AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trade_journal_access_denied_total",
		Help: "Authenticated requests refused by the ownership policy.",
	}, []string{"operation"})

	// Registrations counts created accounts
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trade_journal_registrations_total",
		Help: "Successful user registrations.",
	})

	// RequestDuration observes HTTP handling latency
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trade_journal_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
