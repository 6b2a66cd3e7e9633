package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	gradingSubmissions    *prometheus.CounterVec
	gradingScores         *prometheus.HistogramVec
	gradeEventsPublished  *prometheus.CounterVec
	writeConflictsRetried prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		gradingSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_submissions_total",
			Help: "Submissions received per modality and outcome.",
		}, []string{"modality", "outcome"})

		gradingScores = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_score",
			Help:    "Distribution of scores produced by automatic grading.",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 99, 100},
		}, []string{"modality"})

		gradeEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grade_events_published_total",
			Help: "Grade events fanned out per transport.",
		}, []string{"transport"})

		writeConflictsRetried = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assignment_write_conflicts_total",
			Help: "Optimistic concurrency conflicts observed while writing grades.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradingSubmissions,
			gradingScores,
			gradeEventsPublished,
			writeConflictsRetried,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradingSubmissions counts submissions by modality and outcome.
func GradingSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingSubmissions
}

// GradingScores observes automatically computed scores.
func GradingScores() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingScores
}

// GradeEventsPublished counts published grade events.
func GradeEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeEventsPublished
}

// WriteConflicts counts stale assignment writes.
func WriteConflicts() prometheus.Counter {
	RegisterMetrics()
	return writeConflictsRetried
}
