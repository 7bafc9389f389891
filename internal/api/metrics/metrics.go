// Package metrics defines and registers the custom Prometheus metrics of the
// acquisitions API. HTTP request metrics come from echoprometheus; the
// counters here cover authentication and account lifecycle.
//
// Metrics are registered with the default registry on package init through
// promauto and exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

const namespace = "acquisitions"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success" or the error kind that ended the attempt (e.g. "invalid_credentials")
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// AuthFailuresTotal counts requests rejected by the authentication gate.
// Label:
//   - reason: "missing_token", "invalid_token", "unauthorized" or "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected before reaching a handler.",
	},
	[]string{"reason"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts accounts created through sign-up.
// Label:
//   - role: role assigned to the new account
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts created, by role.",
	},
	[]string{"role"},
)

// AccountMutationsTotal counts update and delete requests on user records.
// Labels:
//   - operation: "update" or "delete"
//   - result: "success" or the error kind returned by the service
var AccountMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_mutations_total",
		Help:      "Total number of account update/delete requests, by operation and result.",
	},
	[]string{"operation", "result"},
)

// Result returns the label value describing err: "success" when nil,
// otherwise the error kind name.
func Result(err error) string {
	if err == nil {
		return "success"
	}
	return domain.KindOf(err).String()
}
