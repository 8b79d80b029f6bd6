package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "rolegate"

var (
	// registrations counts register calls by outcome: "created", "invalid", "error".
	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts",
		},
		[]string{"outcome"},
	)

	// loginAttempts counts login calls by outcome: "success", "invalid", "denied", "error".
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// tokenVerifications counts bearer token checks by outcome:
	// "valid", "missing", "invalid", "expired".
	tokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_verifications_total",
			Help:      "Total number of bearer token verifications",
		},
		[]string{"outcome"},
	)

	roleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "role_checks_total",
			Help:      "Total number of role gate decisions",
		},
		[]string{"role", "outcome"},
	)
)
