package ai

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aiassist_provider_requests_total",
			Help: "Total number of outbound requests to AI and translation providers.",
		},
		[]string{"provider", "operation", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aiassist_provider_request_duration_seconds",
			Help:    "Duration of outbound provider requests.",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"provider", "operation"},
	)
)

func observe(provider, operation string, start time.Time, err error) {
	if provider == "" {
		provider = "custom"
	}
	status := "success"
	if err != nil {
		status = string(KindOf(err))
		if status == "" {
			status = "error"
		}
	}
	requestsTotal.WithLabelValues(provider, operation, status).Inc()
	requestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}
