package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle activity.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	dailyNumber prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Orders created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_transitions_total",
		Help: "Order state transitions by target status.",
	}, []string{"status"})
	dailyNumber := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pos_order_daily_number",
		Help: "Most recently issued daily order number.",
	})
	reg.MustRegister(created, transitions, dailyNumber)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		dailyNumber: dailyNumber,
	}
}

// ObserveCreated counts a new order and tracks its daily number.
func (o *OrderMetrics) ObserveCreated(dailyID int) {
	if o == nil || o.created == nil {
		return
	}
	o.created.Inc()
	o.dailyNumber.Set(float64(dailyID))
}

// ObserveTransition counts a successful move to status.
func (o *OrderMetrics) ObserveTransition(status string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
