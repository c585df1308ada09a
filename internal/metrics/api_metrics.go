package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// API metrics
var (
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests by route and status",
	}, []string{"route", "status"})
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "API request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// RecordAPIRequest records a served request.
func RecordAPIRequest(route string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	APIRequestsTotal.WithLabelValues(route, code).Inc()
	APIRequestDuration.WithLabelValues(route, code).Observe(elapsed.Seconds())
}
