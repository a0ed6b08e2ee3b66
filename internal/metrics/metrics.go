package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeBusy      = "busy"
)

var (
	AnalyzeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_analyze_requests_total",
			Help: "Analyze submissions by outcome",
		},
		[]string{"outcome"},
	)

	AnalyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_analyze_duration_seconds",
			Help:    "Round trip to the scorer, including normalization",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "advisor_recommendations_returned",
			Help:    "Recommendations per successful analysis",
			Buckets: []float64{0, 1, 3, 5, 10, 20, 50},
		},
	)

	ShapeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_response_shape_errors_total",
			Help: "Scorer responses rejected by the shape check",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_sessions_active",
			Help: "Sessions currently held in memory",
		},
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "advisor_sessions_expired_total",
			Help: "Sessions evicted after idling past the TTL",
		},
	)
)
