package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, path, and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harir_http_requests_total",
			Help: "Total HTTP requests processed by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harir_http_request_duration_seconds",
			Help:    "HTTP request latency distribution in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// VisitsCheckedInTotal counts gate check-ins (including re-check-ins)
	VisitsCheckedInTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harir_visits_checked_in_total",
			Help: "Total vehicle visits checked in at the gate",
		},
	)

	// WeightsCapturedTotal counts recorded pallet intakes
	WeightsCapturedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harir_weights_captured_total",
			Help: "Total pallet weight records captured",
		},
	)

	// WeightCaptureRejectedTotal counts captures refused by validation or
	// the already-weighed guard
	WeightCaptureRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "harir_weight_capture_rejected_total",
			Help: "Total weight captures rejected before any write",
		},
	)
)
