package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the session lifecycle. Registered on the default
// registry and exposed through promhttp in main.
var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_created_total",
		Help: "Number of interview sessions created.",
	})

	SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_completed_total",
		Help: "Number of interview sessions completed.",
	})

	SessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_cancelled_total",
		Help: "Number of interview sessions cancelled.",
	})

	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_answer_evaluations_total",
		Help: "Number of answer evaluations by outcome.",
	}, []string{"outcome"}) // "ok" or "degraded"

	UpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_upstream_errors_total",
		Help: "Number of operations that failed on an upstream dependency.",
	})
)
