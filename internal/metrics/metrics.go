package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	invoicesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ev_center",
			Name:      "invoices_created_total",
			Help:      "Invoices created from bookings.",
		},
	)

	paymentsByStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ev_center",
			Name:      "payment_transactions_total",
			Help:      "Payment transactions by final status.",
		},
		[]string{"status"},
	)

	stockDecrements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ev_center",
			Name:      "stock_decrements_total",
			Help:      "Successful atomic stock decrements.",
		},
	)

	notificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ev_center",
			Name:      "notifications_dropped_total",
			Help:      "Notifications dropped because the queue was full.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(invoicesCreated, paymentsByStatus, stockDecrements, notificationsDropped)
	})
}

func IncInvoiceCreated() {
	invoicesCreated.Inc()
}

func IncPayment(status string) {
	paymentsByStatus.WithLabelValues(status).Inc()
}

func IncStockDecrement() {
	stockDecrements.Inc()
}

func IncNotificationDropped() {
	notificationsDropped.Inc()
}
