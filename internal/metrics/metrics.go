package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventhub"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Signed tokens handed out, by kind.",
	}, []string{"kind"})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})

	RefreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_attempts_total",
		Help:      "Session refresh attempts by outcome.",
	}, []string{"outcome"})
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"

	OutcomeSuccess         = "success"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeUserNotFound    = "user_not_found"
	OutcomePasswordInvalid = "password_mismatch"
	OutcomeLocked          = "locked"
	OutcomeSessionMismatch = "session_mismatch"
	OutcomeError           = "error"
)
