// Package metrics provides Prometheus metrics for the playlab service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Score buckets for 0-100 scores.
var scoreBuckets = prometheus.LinearBuckets(0, 10, 11) //nolint:gochecknoglobals // fixed bucket layout

// Manager owns every playlab metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	analyses           *prometheus.CounterVec
	battles            *prometheus.CounterVec
	seedSelections     *prometheus.CounterVec
	healthScores       prometheus.Histogram
	compatibilityScore prometheus.Histogram
	engineLatency      *prometheus.HistogramVec

	// Jobs
	jobsSubmitted prometheus.Counter
	jobsDuplicate prometheus.Counter
	jobsRetained  prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Leaderboard
	leaderboardSize    prometheus.Gauge
	leaderboardUpdates prometheus.Counter
	leaderboardQuery   prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "playlab",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.analyses = m.counterVec("analyses_total", "Playlist analyses by outcome", "outcome")
	m.battles = m.counterVec("battles_total", "Playlist battles by outcome", "outcome")
	m.seedSelections = m.counterVec("seed_selections_total", "Seed selections by strategy and outcome", "strategy", "outcome")
	m.healthScores = m.histogram("health_score", "Distribution of playlist health scores", scoreBuckets)
	m.compatibilityScore = m.histogram("compatibility_score", "Distribution of battle compatibility scores", scoreBuckets)
	m.engineLatency = m.histogramVec("latency_milliseconds", "Engine call latency in milliseconds", m.histogramBuckets, "operation")

	m.jobsSubmitted = m.counter("jobs_submitted_total", "Async jobs accepted")
	m.jobsDuplicate = m.counter("jobs_duplicate_total", "Async submissions answered from an existing idempotency key")
	m.jobsRetained = m.gauge("jobs_retained", "Jobs currently held in the result store")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Queue capacity")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected because the queue was full or closed")

	m.workerCount = m.gauge("worker_count", "Running workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that finished with an error")

	m.leaderboardSize = m.gauge("leaderboard_playlists", "Playlists on the health leaderboard")
	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Leaderboard writes")
	m.leaderboardQuery = m.histogram("leaderboard_query_latency_milliseconds", "Leaderboard read latency", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")
}

// RecordAnalysis counts an analysis with its outcome ("ok" or an error kind)
// and observes the health score on success.
func RecordAnalysis(outcome string, healthScore int, latencyMs float64) {
	globalManager.analyses.WithLabelValues(outcome).Inc()
	globalManager.engineLatency.WithLabelValues("analyze").Observe(latencyMs)
	if outcome == OutcomeOK {
		globalManager.healthScores.Observe(float64(healthScore))
	}
}

// RecordBattle counts a battle and observes its compatibility on success.
func RecordBattle(outcome string, compatibility int, latencyMs float64) {
	globalManager.battles.WithLabelValues(outcome).Inc()
	globalManager.engineLatency.WithLabelValues("battle").Observe(latencyMs)
	if outcome == OutcomeOK {
		globalManager.compatibilityScore.Observe(float64(compatibility))
	}
}

// RecordSeedSelection counts a seed selection.
func RecordSeedSelection(strategy, outcome string) {
	globalManager.seedSelections.WithLabelValues(strategy, outcome).Inc()
}

// RecordJobSubmitted counts an accepted job.
func RecordJobSubmitted() {
	globalManager.jobsSubmitted.Inc()
}

// RecordJobDuplicate counts a submission answered from its idempotency key.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// UpdateJobsRetained sets the number of jobs in the result store.
func UpdateJobsRetained(n int) {
	globalManager.jobsRetained.Set(float64(n))
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency observes one job's processing time.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed job.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// UpdateLeaderboardSize sets the number of ranked playlists.
func UpdateLeaderboardSize(n int) {
	globalManager.leaderboardSize.Set(float64(n))
}

// RecordLeaderboardUpdate counts a leaderboard write.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// RecordLeaderboardQueryLatency observes a leaderboard read.
func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQuery.Observe(latencyMs)
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
