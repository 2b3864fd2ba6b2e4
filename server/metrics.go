package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the HTTP layer records into.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	OpErrors        *prometheus.CounterVec
	EventsEmitted   prometheus.Counter
	FeedClients     prometheus.Gauge
}

// NewMetrics registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nova",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		OpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "contract",
			Name:      "operation_errors_total",
			Help:      "Contract operation failures by error class.",
		}, []string{"class"}),
		EventsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nova",
			Subsystem: "contract",
			Name:      "events_emitted_total",
			Help:      "Event lines emitted by the contract.",
		}),
		FeedClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nova",
			Subsystem: "feed",
			Name:      "clients",
			Help:      "Connected websocket event-feed clients.",
		}),
	}
}
