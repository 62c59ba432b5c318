package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		redemptionConflictsTotal,
		compensationFailuresTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemptions_total",
			Help: "Redemption attempts by method (code/wallet) and outcome (success/rejected).",
		},
		[]string{"method", "status"},
	)

	redemptionConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redemption_conflicts_total",
			Help: "Conditional writes that lost a race (code already consumed, balance gone at commit time).",
		},
		[]string{"method"},
	)

	compensationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compensation_failures_total",
			Help: "Compensating writes that failed, leaving stores inconsistent until reconciled.",
		},
		[]string{"kind"}, // 'code_revert', 'wallet_refund'
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncRedemption(method, status string) {
	redemptionsTotal.WithLabelValues(norm(method), norm(status)).Inc()
}

func IncRedemptionConflict(method string) {
	redemptionConflictsTotal.WithLabelValues(norm(method)).Inc()
}

func IncCompensationFailure(kind string) {
	compensationFailuresTotal.WithLabelValues(norm(kind)).Inc()
}
