package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the engine.
type Metrics struct {
	// Payment metrics
	PaymentsCreated prometheus.Counter
	PaymentErrors   *prometheus.CounterVec
	ImportedRows    prometheus.Counter

	// Standing order metrics
	OrdersCreated     prometheus.Counter
	OrdersDisabled    prometheus.Counter
	OrdersExpired     prometheus.Counter
	OrderTransactions prometheus.Counter

	// Consistency check metrics
	ChecksRun    prometheus.Counter
	ChecksFailed prometheus.Counter
}

// New creates and registers all metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PaymentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_payments_created_total",
			Help: "Total number of transactions created via pay",
		}),
		PaymentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mpay_payment_errors_total",
				Help: "Total number of failed pay operations by error kind",
			},
			[]string{"kind"},
		),
		ImportedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_imported_rows_total",
			Help: "Total number of transactions created by batch import",
		}),
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_orders_created_total",
			Help: "Total number of standing orders created",
		}),
		OrdersDisabled: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_orders_disabled_total",
			Help: "Total number of standing orders disabled",
		}),
		OrdersExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_orders_expired_total",
			Help: "Total number of standing orders that reached natural expiry",
		}),
		OrderTransactions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_order_transactions_total",
			Help: "Total number of transactions generated from standing orders",
		}),
		ChecksRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_checks_run_total",
			Help: "Total number of consistency checks executed",
		}),
		ChecksFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "mpay_checks_failed_total",
			Help: "Total number of consistency checks that detected a violation",
		}),
	}
}
