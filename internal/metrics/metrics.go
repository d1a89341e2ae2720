// Package metrics exposes the orchestrator's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AgentRuns counts completed agent executions by section and
	// provenance of the produced result.
	AgentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_agent_runs_total",
			Help: "Agent executions by section and result provenance",
		},
		[]string{"section", "provenance"},
	)

	// AgentFallbacks counts synthetic substitutions by failure kind.
	AgentFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_agent_fallbacks_total",
			Help: "Synthetic fallback substitutions by section and failure kind",
		},
		[]string{"section", "kind"},
	)

	// AgentDuration tracks per-agent wall time.
	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_agent_duration_seconds",
			Help:    "Agent execution latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"section"},
	)

	// AnalysisDuration tracks end-to-end orchestration time.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_run_duration_seconds",
			Help:    "End-to-end analysis duration",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// CompositeScores observes the final composite distribution.
	CompositeScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_composite_score",
			Help:    "Distribution of composite feasibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// WebhookDeliveries counts dispatch attempts by outcome.
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_webhook_deliveries_total",
			Help: "Webhook dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
