package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CallsTransitioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_calls_transitioned_total",
			Help: "Total number of calls moved by the scheduled transition job",
		},
		[]string{"to_status"},
	)

	ApplicationsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_applications_scored_total",
			Help: "Total number of applications processed by the ranking engine",
		},
		[]string{"evaluation_mode", "result"},
	)

	TransitionTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scholarship_transition_ticks_total",
			Help: "Total number of transition ticks by outcome",
		},
		[]string{"outcome"},
	)

	TransitionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scholarship_transition_retries_total",
			Help: "Total number of transition attempts retried after a transient failure",
		},
	)

	TransitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scholarship_transition_duration_seconds",
			Help:    "Duration of a transition tick including retries",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 30, 300, 1800},
		},
	)
)

// Result labels for ApplicationsScored.
const (
	ResultScored  = "scored"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Outcome labels for TransitionTicks.
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
)
