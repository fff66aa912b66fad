package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftrun", Name: "orders_created_total", Help: "Total orders created"})
	ErrandsCreated = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftrun", Name: "errands_created_total", Help: "Total errands created"})
	LocationSamples = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftrun", Name: "courier_location_samples_total", Help: "Courier location samples received"})

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swiftrun", Name: "status_transitions_total", Help: "Lifecycle transitions applied"},
		[]string{"kind", "to"},
	)
	TransitionNoops = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swiftrun", Name: "status_transition_noops_total", Help: "Advance calls on entities already at a final status"},
		[]string{"kind"},
	)

	QuotesIssued = promauto.NewCounter(prometheus.CounterOpts{Namespace: "swiftrun", Name: "quotes_issued_total", Help: "Errand price quotes issued"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "swiftrun", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "swiftrun",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
