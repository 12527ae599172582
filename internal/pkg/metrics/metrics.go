// Package metrics defines and registers all custom Prometheus metrics for the
// admin console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_console"

// ── Sign-in metrics ───────────────────────────────────────────────────────────

// SignInAttemptsTotal counts sign-in submissions by outcome.
// Label:
//   - outcome: "signed_in", "rejected", "invalid" or "in_progress"
var SignInAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signin_attempts_total",
		Help:      "Total number of sign-in submissions, by outcome.",
	},
	[]string{"outcome"},
)

// SignInDuration measures a sign-in submission end to end, including the
// authentication service call.
var SignInDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "signin_duration_seconds",
		Help:      "Duration of sign-in submissions.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Routing metrics ───────────────────────────────────────────────────────────

// RouteResolutionsTotal counts route tree resolutions.
// Label:
//   - role: "anonymous", "admin", "client", "user" or "unknown"
var RouteResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_resolutions_total",
		Help:      "Total number of route tree resolutions, by primary role kind.",
	},
	[]string{"role"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of attempts waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of sign-in attempts pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts attempts dropped because the audit queue was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of sign-in attempts dropped on a full audit queue.",
	},
)

// AuditWriteErrorsTotal counts failed audit writes.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of sign-in attempts that could not be persisted.",
	},
)
