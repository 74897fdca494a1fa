package storefront

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"RocketShoes/internal/cart"
)

type CartMetrics struct {
	Notifications *prometheus.CounterVec
	LineItems     prometheus.Histogram
	Units         prometheus.Histogram
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	m := &CartMetrics{
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_notifications_total",
				Help: "Rejected cart operations by notification kind",
			},
			[]string{"kind"},
		),
		LineItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_line_items",
			Help:    "Distinct products in a cart after each change",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		Units: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cart_units",
			Help:    "Total units in a cart after each change",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	reg.MustRegister(m.Notifications, m.LineItems, m.Units)
	return m
}

func (m *CartMetrics) Notifier() cart.Notifier {
	return cart.NotifierFunc(func(_ context.Context, n cart.Notification) {
		m.Notifications.WithLabelValues(string(n.Kind)).Inc()
	})
}

func (m *CartMetrics) ObserveCart(items []cart.LineItem) {
	units := 0
	for _, it := range items {
		units += it.Amount
	}
	m.LineItems.Observe(float64(len(items)))
	m.Units.Observe(float64(units))
}
