package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_orders_created_total",
		Help: "Orders successfully created with stock reserved.",
	})

	OrdersCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canteen_orders_cancelled_total",
		Help: "Orders cancelled with stock restored, by initiator.",
	}, []string{"initiator"})

	PaymentsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_payments_completed_total",
		Help: "Orders that moved from pending to paid.",
	})

	PickupsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_pickups_completed_total",
		Help: "Orders that moved from paid to completed.",
	})

	StockRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_stock_rejections_total",
		Help: "Order creations rejected because of insufficient stock.",
	})

	SweepTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_sweeper_ticks_total",
		Help: "Completed passes of the expiry sweeper.",
	})

	SweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canteen_sweeper_failures_total",
		Help: "Stale orders the sweeper failed to cancel.",
	})
)
