package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachlens",
		Name:      "jobs_started_total",
		Help:      "Jobs picked up by a worker, by kind.",
	}, []string{"kind"})

	jobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachlens",
		Name:      "jobs_completed_total",
		Help:      "Jobs that reached completed, by kind.",
	}, []string{"kind"})

	jobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coachlens",
		Name:      "jobs_failed_total",
		Help:      "Jobs that reached failed, by kind and stage.",
	}, []string{"kind", "stage"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coachlens",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock time from pickup to terminal state, by kind.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"kind"})
)
