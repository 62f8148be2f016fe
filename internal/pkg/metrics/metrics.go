// Package metrics defines and registers all custom Prometheus metrics for the
// portal. It is the single source of truth for metric names, labels, and help
// strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and signup attempts.
// Labels:
//   - action:  "login" or "signup"
//   - outcome: "success", "rejected" or "network_error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of login and signup attempts, by outcome.",
	},
	[]string{"action", "outcome"},
)

// EnrichmentStepsTotal counts steps of the post-login user lookup chain.
// Labels:
//   - step:   "who_am_i" or "user_detail"
//   - result: "ok", "rejected", "missing_id", "unparsable" or "error"
var EnrichmentStepsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrichment_steps_total",
		Help:      "Total number of user enrichment lookups after login, by step and result.",
	},
	[]string{"step", "result"},
)

// SessionsClearedTotal counts session removals.
// Label:
//   - reason: "logout", "expired" or "rejected"
var SessionsClearedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_cleared_total",
		Help:      "Total number of sessions cleared, by reason.",
	},
	[]string{"reason"},
)

// RemoteRequestDuration measures calls to the hosted backend.
// Labels:
//   - endpoint: logical endpoint name (e.g. "login", "who_am_i")
//   - status:   HTTP status code, or "error" when the call failed
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of requests to the hosted backend API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"endpoint", "status"},
)

// ── Wizard metrics ────────────────────────────────────────────────────────────

// RouteDecisionsTotal counts post-auth routing decisions.
// Label:
//   - target: "role-selection", "dashboard" or "onboarding"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of onboarding routing decisions, by target.",
	},
	[]string{"target"},
)

// MailsSentTotal counts welcome mail deliveries through the backend.
// Label:
//   - result: "sent" or "failed"
var MailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mails_sent_total",
		Help:      "Total number of transactional mails handed to the backend, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of mails waiting in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
