// Package metrics provides Prometheus metrics for the rehearse grading service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the rehearse service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Grading
	answersGraded     *prometheus.CounterVec
	answersDuplicate  prometheus.Counter
	evaluationLatency prometheus.Histogram
	evaluationErrors  prometheus.Counter

	// Relevance scoring
	relevanceScored    *prometheus.CounterVec
	relevanceFallbacks *prometheus.CounterVec
	remoteScoreLatency prometheus.Histogram

	// Sessions
	sessionsStarted  *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	sessionsEvicted  prometheus.Counter
	sessionsActive   prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "rehearse",
		subsystem:        "grading",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	m.answersGraded = m.counterVec("answers_graded_total",
		"Total number of graded answers by status and letter grade", "status", "grade")
	m.answersDuplicate = m.counter("answers_duplicate_total",
		"Total number of answer submissions rejected as duplicates")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds",
		"Time to evaluate one answer in milliseconds")
	m.evaluationErrors = m.counter("evaluation_errors_total",
		"Total number of answers that could not be evaluated")

	m.relevanceScored = m.counterVec("relevance_scored_total",
		"Total number of relevance results by source and verdict", "source", "verdict")
	m.relevanceFallbacks = m.counterVec("relevance_fallbacks_total",
		"Total number of remote scoring failures answered locally, by reason", "reason")
	m.remoteScoreLatency = m.histogram("remote_score_latency_milliseconds",
		"Remote relevance scorer round trip in milliseconds")

	m.sessionsStarted = m.counterVec("sessions_started_total",
		"Total number of interview sessions started by role", "role")
	m.sessionsFinished = m.counterVec("sessions_finished_total",
		"Total number of interview sessions finished by role and overall grade", "role", "grade")
	m.sessionsEvicted = m.counter("sessions_evicted_total",
		"Total number of finished sessions evicted from memory")
	m.sessionsActive = m.gauge("sessions_active",
		"Number of sessions currently held in memory and not finished")

	m.queueSize = m.gauge("queue_size", "Current number of grading jobs waiting")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of grading jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of grading jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Configured number of grading workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently grading")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker time per grading job in milliseconds")
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed grading jobs")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
}

// RecordAnswerGraded counts one evaluated answer.
func RecordAnswerGraded(status, grade string) {
	globalManager.answersGraded.WithLabelValues(status, grade).Inc()
}

// RecordAnswerDuplicate counts a submission dropped by the deduper.
func RecordAnswerDuplicate() {
	globalManager.answersDuplicate.Inc()
}

// RecordEvaluationLatency records evaluation latency in milliseconds.
func RecordEvaluationLatency(latencyMs float64) {
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordEvaluationError increments the evaluation error counter.
func RecordEvaluationError() {
	globalManager.evaluationErrors.Inc()
}

// RecordRelevanceScored counts a relevance result.
func RecordRelevanceScored(source, verdict string) {
	globalManager.relevanceScored.WithLabelValues(source, verdict).Inc()
}

// RecordRelevanceFallback counts a remote failure by reason.
func RecordRelevanceFallback(reason string) {
	globalManager.relevanceFallbacks.WithLabelValues(reason).Inc()
}

// RecordRemoteScoreLatency records the remote scorer round trip.
func RecordRemoteScoreLatency(latencyMs float64) {
	globalManager.remoteScoreLatency.Observe(latencyMs)
}

// RecordSessionStarted counts a new session.
func RecordSessionStarted(role string) {
	globalManager.sessionsStarted.WithLabelValues(role).Inc()
}

// RecordSessionFinished counts a finished session.
func RecordSessionFinished(role, grade string) {
	globalManager.sessionsFinished.WithLabelValues(role, grade).Inc()
}

// RecordSessionsEvicted adds n evicted sessions.
func RecordSessionsEvicted(n int) {
	globalManager.sessionsEvicted.Add(float64(n))
}

// UpdateActiveSessions sets the number of unfinished sessions.
func UpdateActiveSessions(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
