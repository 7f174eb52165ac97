// Package metrics defines and registers all custom Prometheus metrics for the
// users-management API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default Prometheus registry at package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "users"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthenticationResultsTotal counts Request Authenticator outcomes.
// Label:
//   - result: "anonymous", "bad_scheme", "invalid_token", "already_authenticated",
//     "unknown_subject", "expired", "rejected", "authenticated"
var AuthenticationResultsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authentication_results_total",
		Help:      "Total number of bearer credential evaluations, by outcome.",
	},
	[]string{"result"},
)

// AuthorizationDenialsTotal counts requests stopped by the access policy.
// Label:
//   - reason: "unauthenticated" or "forbidden"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests rejected by the access policy.",
	},
	[]string{"reason"},
)

// TokensIssuedTotal counts signed credentials minted by the session service.
// Label:
//   - kind: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of signed credentials issued, by kind.",
	},
	[]string{"kind"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts /auth requests refused by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the auth rate limiter.",
	},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts lifecycle events handed to the broker.
// Labels:
//   - type: event type (e.g. "user.registered")
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of user lifecycle events written to the broker.",
	},
	[]string{"type", "result"},
)

// EventsDroppedTotal counts events discarded because a worker queue was full.
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of user lifecycle events dropped on a full queue.",
	},
	[]string{"type"},
)

// EventsQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
