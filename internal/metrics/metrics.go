// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pitwall"

var (
	registry *prometheus.Registry
	once     sync.Once
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	RatingsSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_submitted_total",
		Help:      "Ratings written, by operation (submit or update)",
	}, []string{"operation"})

	FeedBuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_build_seconds",
		Help:      "Time spent building feeds, by kind (following or user)",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"kind"})

	ActivityEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_events_total",
		Help:      "Activity rows recorded, by type",
	}, []string{"type"})

	WebsocketConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Currently authenticated websocket clients",
	})

	AggregateReconcileTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregate_reconcile_total",
		Help:      "Races visited by the reconciliation job, by outcome",
	}, []string{"outcome"})

	JobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs, by job and status",
	}, []string{"job", "status"})

	JobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Scheduled job run time",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"job"})
)

// InitRegistry builds the registry once and registers every collector.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(RatingsSubmittedTotal)
		registry.MustRegister(FeedBuildDuration)
		registry.MustRegister(ActivityEventsTotal)
		registry.MustRegister(WebsocketConnections)
		registry.MustRegister(AggregateReconcileTotal)
		registry.MustRegister(JobRunsTotal)
		registry.MustRegister(JobDuration)
	})
	return registry
}

func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the exposition handler for the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRatingSubmitted(operation string) {
	RatingsSubmittedTotal.WithLabelValues(operation).Inc()
}

// ObserveFeedBuild returns a func that records the elapsed time when called.
func ObserveFeedBuild(kind string) func() {
	start := time.Now()
	return func() {
		FeedBuildDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}

func RecordActivity(activityType string) {
	ActivityEventsTotal.WithLabelValues(activityType).Inc()
}

func RecordReconcile(outcome string) {
	AggregateReconcileTotal.WithLabelValues(outcome).Inc()
}

func RecordJobRun(job, status string, duration time.Duration) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
}
