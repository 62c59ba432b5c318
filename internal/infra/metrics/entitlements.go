package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(entitlementsExpiredTotal)
}

var entitlementsExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "entitlements_expired_total",
		Help: "Entitlements flipped to inactive by the expiry sweeper.",
	},
)

func IncEntitlementsExpired(count int) {
	entitlementsExpiredTotal.Add(float64(count))
}
