// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init (promauto); HTTP request metrics come from the echoprometheus
// middleware wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Access control ────────────────────────────────────────────────────────────

// AuthzDecisionsTotal counts authorization policy evaluations.
// Labels:
//   - operation: policy operation (e.g. "list", "delete")
//   - decision: "allow" or "deny"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by operation and outcome.",
	},
	[]string{"operation", "decision"},
)

// AuthFailuresTotal counts requests rejected by the authentication resolver.
// Label:
//   - reason: "missing_header", "malformed_header" or "invalid_token"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected as unauthenticated.",
	},
	[]string{"reason"},
)

// ── Validation ────────────────────────────────────────────────────────────────

// ValidationFailuresTotal counts failing fields reported by the validation
// pipeline.
// Label:
//   - field: JSON field name (e.g. "password")
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of field validation failures, by field.",
	},
	[]string{"field"},
)

// ── Accounts ──────────────────────────────────────────────────────────────────

// AccountOperationsTotal counts account operations that completed successfully.
// Label:
//   - operation: "create", "list", "read", "update", "delete" or "restore"
var AccountOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of successful account operations, by operation.",
	},
	[]string{"operation"},
)
