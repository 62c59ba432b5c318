package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		walletTopUpsTotal,
		walletRevenueTotal,
	)
}

var (
	walletTopUpsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_topups_toman_total",
			Help: "Total Toman credited to wallets by admin top-ups.",
		},
	)

	walletRevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_revenue_toman_total",
			Help: "Total Toman debited by successful wallet purchases.",
		},
	)
)

func AddWalletTopUp(amountToman int64) {
	walletTopUpsTotal.Add(float64(amountToman))
}

func AddWalletRevenue(amountToman int64) {
	walletRevenueTotal.Add(float64(amountToman))
}
