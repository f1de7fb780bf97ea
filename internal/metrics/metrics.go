// Package metrics exposes Prometheus instrumentation for the dispatch core.
// Queue depth and the age of the processing job are the signals operators
// watch for stuck dispensers, since the core applies no automatic timeout.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueDepth is the number of pending dispense jobs
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealqueue_pending_jobs",
		Help: "Number of dispense jobs waiting to be claimed.",
	})

	// ProcessingJobs is 0 or 1 by construction; exported so the invariant
	// is observable from outside
	ProcessingJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealqueue_processing_jobs",
		Help: "Number of dispense jobs currently claimed by the actuator.",
	})

	// JobsEnqueued counts admitted pickup requests
	JobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealqueue_jobs_enqueued_total",
		Help: "Total dispense jobs admitted to the queue.",
	})

	// JobsCompleted counts successful dispenses
	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealqueue_jobs_completed_total",
		Help: "Total dispense jobs reported complete by the actuator.",
	})

	// JobsAbandoned counts operator-initiated requeues
	JobsAbandoned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealqueue_jobs_abandoned_total",
		Help: "Total processing jobs returned to the queue.",
	}, []string{"reason"})

	// VotesCast counts accepted vote submissions (re-votes included)
	VotesCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mealqueue_votes_cast_total",
		Help: "Total accepted vote submissions.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
