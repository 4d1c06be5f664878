// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatQueriesTotal counts chat queries by intent and outcome
	ChatQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_queries_total",
			Help: "Total number of chat queries processed",
		},
		[]string{"intent", "outcome"},
	)

	// PipelineDuration tracks end to end query handling time
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_pipeline_duration_seconds",
			Help:    "Duration of chat query processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	// ExternalCallFailures counts failures per upstream dependency
	ExternalCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_call_failures_total",
			Help: "Total failed calls to external systems",
		},
		[]string{"system"},
	)

	// ClarificationsTotal counts queries answered with a clarification prompt
	ClarificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_clarifications_total",
			Help: "Total queries that required clarification",
		},
	)

	// DenialsTotal counts role based denials
	DenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_denials_total",
			Help: "Total queries denied by access control",
		},
		[]string{"role"},
	)

	// AnnotationsTotal counts annotator outcomes
	AnnotationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_annotations_total",
			Help: "Total annotation attempts by result",
		},
		[]string{"result"},
	)
)

// RecordQuery records a completed query with its intent label and outcome
func RecordQuery(intent, outcome string, seconds float64) {
	ChatQueriesTotal.WithLabelValues(intent, outcome).Inc()
	PipelineDuration.WithLabelValues(intent).Observe(seconds)
}
