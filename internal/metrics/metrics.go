package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burza",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burza",
			Name:      "reservation_transitions_total",
			Help:      "Reservation state transitions by action.",
		},
		[]string{"action"},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "burza",
			Name:      "emails_total",
			Help:      "Notification emails by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationTransitions, emails)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncTransition counts one reservation action (submit, approve, reject,
// delete, delete_all).
func IncTransition(action string) {
	reservationTransitions.WithLabelValues(action).Inc()
}

// IncEmail counts one delivery attempt outcome ("sent" or "failed").
func IncEmail(kind, result string) {
	emails.WithLabelValues(kind, result).Inc()
}
