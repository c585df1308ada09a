// Package metrics provides the centralized Prometheus metrics registry for the edge services.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tipster_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CLVCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clv_calculations_total",
		Help:      "Total number of CLV calculations by mode (single, batch)",
	}, []string{"mode"})
	InvalidOddsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_odds_total",
		Help:      "Total number of odds pairs rejected by strict validation",
	})
	SuspiciousEdgesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suspicious_edges_total",
		Help:      "Total number of normalized edges above the suspicious threshold",
	})
	ParlaySelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parlay_selections_total",
		Help:      "Parlay selections by profile and outcome (selected, none)",
	}, []string{"profile", "outcome"})
	SuggestionRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestion_refreshes_total",
		Help:      "Parlay suggestion refreshes by result (success, error)",
	}, []string{"result"})
)

// Gauge metrics
var (
	ParlayPoolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "parlay_pool_size",
		Help:      "Number of candidates in the most recent parlay selection pool",
	})
)

// Histogram metrics
var (
	CLVConfidenceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clv_confidence_score",
		Help:      "Distribution of CLV confidence scores",
		Buckets:   []float64{10, 25, 40, 55, 70, 85, 100},
	})
	RecommendedStakeFraction = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommended_stake_fraction",
		Help:      "Distribution of recommended bankroll fractions",
		Buckets:   []float64{0, 0.005, 0.01, 0.02, 0.03, 0.04, 0.05, 0.1},
	})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "clv_batch_duration_seconds",
		Help:      "Duration of CLV batch evaluations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(CLVCalculationsTotal)
		registry.MustRegister(InvalidOddsTotal)
		registry.MustRegister(SuspiciousEdgesTotal)
		registry.MustRegister(ParlaySelectionsTotal)
		registry.MustRegister(SuggestionRefreshesTotal)

		// Register gauge metrics
		registry.MustRegister(ParlayPoolSize)

		// Register histogram metrics
		registry.MustRegister(CLVConfidenceScore)
		registry.MustRegister(RecommendedStakeFraction)
		registry.MustRegister(BatchDuration)

		// Register API metrics
		registry.MustRegister(APIRequestsTotal)
		registry.MustRegister(APIRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCLVCalculation records one evaluated pair and its outputs.
func RecordCLVCalculation(mode string, confidence, recommendedStake float64) {
	CLVCalculationsTotal.WithLabelValues(mode).Inc()
	CLVConfidenceScore.Observe(confidence)
	RecommendedStakeFraction.Observe(recommendedStake)
}

// RecordInvalidOdds records a rejected odds pair.
func RecordInvalidOdds() {
	InvalidOddsTotal.Inc()
}

// RecordSuspiciousEdge records an edge flagged as suspicious.
func RecordSuspiciousEdge() {
	SuspiciousEdgesTotal.Inc()
}

// RecordParlaySelection records whether a profile produced a pick.
func RecordParlaySelection(profile string, selected bool) {
	outcome := "none"
	if selected {
		outcome = "selected"
	}
	ParlaySelectionsTotal.WithLabelValues(profile, outcome).Inc()
}

// RecordSuggestionRefresh records the result of a suggestion refresh.
func RecordSuggestionRefresh(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SuggestionRefreshesTotal.WithLabelValues(result).Inc()
}

// UpdateParlayPoolSize updates the pool size gauge.
func UpdateParlayPoolSize(size int) {
	ParlayPoolSize.Set(float64(size))
}

// RecordBatchDuration records batch evaluation duration.
func RecordBatchDuration(durationSeconds float64) {
	BatchDuration.Observe(durationSeconds)
}
