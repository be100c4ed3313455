// Package metrics provides Prometheus metrics for the Poprzeczka service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ranking pipeline
	submissions         *prometheus.CounterVec
	foldDuration        prometheus.Histogram
	foldRowsDropped     *prometheus.CounterVec
	schemaMismatches    prometheus.Counter
	rankingComputations *prometheus.CounterVec
	officialDay         *prometheus.GaugeVec
	notifications       *prometheus.CounterVec

	// Sheet store
	cacheLookups *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// Mail queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueUtilization        prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueEnqueueErrors      prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton behind the Record*/Update* helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "poprzeczka",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	msBuckets := []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}

	m.submissions = auto.NewCounterVec(m.counterOpts("submissions_total",
		"Submissions by outcome (accepted, duplicate, rejected, failed)"), []string{"outcome"})
	m.foldDuration = auto.NewHistogram(m.histogramOpts("fold_duration_milliseconds",
		"Time to fold a backing log into the day-status map", msBuckets))
	m.foldRowsDropped = auto.NewCounterVec(m.counterOpts("fold_rows_dropped_total",
		"Rows dropped while folding, by reason"), []string{"reason"})
	m.schemaMismatches = auto.NewCounter(m.counterOpts("schema_mismatch_total",
		"Backing logs that were missing required columns"))
	m.rankingComputations = auto.NewCounterVec(m.counterOpts("ranking_computations_total",
		"Ranking computations by mode"), []string{"mode"})
	m.officialDay = auto.NewGaugeVec(m.gaugeOpts("official_day",
		"Last officially complete day per edition"), []string{"edition"})
	m.notifications = auto.NewCounterVec(m.counterOpts("notifications_total",
		"Notifications by kind and outcome"), []string{"kind", "outcome"})

	m.cacheLookups = auto.NewCounterVec(m.counterOpts("sheet_cache_lookups_total",
		"Sheet cache lookups by result (hit, miss)"), []string{"result"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds",
		"Sheet store operation latency", msBuckets), []string{"op"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("mail_queue_size", "Messages waiting in the mail queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("mail_queue_capacity", "Mail queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("mail_queue_utilization_ratio", "Mail queue size / capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("mail_queue_enqueued_total", "Messages enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("mail_queue_dequeued_total", "Messages dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("mail_queue_enqueue_errors_total",
		"Messages rejected by the queue (full, closed, cancelled)"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("mail_worker_count", "Mail workers running"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("mail_worker_processing_milliseconds",
		"Time to deliver one message", msBuckets))
	m.workerErrors = auto.NewCounter(m.counterOpts("mail_worker_errors_total", "Messages the workers failed to deliver"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration", nil), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Errors by component and type"), []string{"component", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"HTTP errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds",
		"Average GC pause time", msBuckets))
}

// RecordSubmission counts a submission outcome.
func RecordSubmission(outcome string) {
	globalManager.submissions.WithLabelValues(outcome).Inc()
}

// RecordFoldDuration records how long a fold took.
func RecordFoldDuration(ms float64) {
	globalManager.foldDuration.Observe(ms)
}

// RecordFoldDropped counts rows dropped for reason.
func RecordFoldDropped(reason string, n int) {
	globalManager.foldRowsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordSchemaMismatch counts a backing log with missing columns.
func RecordSchemaMismatch() {
	globalManager.schemaMismatches.Inc()
}

// RecordRankingComputation counts a ranking computation.
func RecordRankingComputation(mode string) {
	globalManager.rankingComputations.WithLabelValues(mode).Inc()
}

// UpdateOfficialDay sets the official day of an edition.
func UpdateOfficialDay(edition string, day int) {
	globalManager.officialDay.WithLabelValues(edition).Set(float64(day))
}

// RecordNotification counts a notification by kind and outcome.
func RecordNotification(kind, outcome string) {
	globalManager.notifications.WithLabelValues(kind, outcome).Inc()
}

// RecordCacheLookup counts a sheet cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// RecordStoreLatency records a sheet store operation latency.
func RecordStoreLatency(op string, ms float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(ms)
}

// UpdateQueueSize sets the current mail queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the mail queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the mail queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueued message.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued message.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected message.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the number of mail workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time to deliver one message.
func RecordWorkerProcessingLatency(ms float64) {
	globalManager.workerProcessingLatency.Observe(ms)
}

// RecordWorkerError counts a failed delivery.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes allocated.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records the average GC pause.
func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}

// GetRegistry returns the registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
