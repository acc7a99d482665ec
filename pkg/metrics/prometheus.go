// Package metrics provides Prometheus metrics for the touchline parser service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector touchline exposes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Parsing
	recordsParsed   *prometheus.CounterVec
	canonicalEvents *prometheus.CounterVec
	matchesParsed   prometheus.Counter
	parseDuration   *prometheus.HistogramVec
	parseErrors     *prometheus.CounterVec
	batchSize       prometheus.Histogram

	// Storage
	matchesStored prometheus.Gauge
	storeErrors   *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "touchline",
		subsystem:        "parser",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.recordsParsed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "records_parsed_total",
		Help:        "Vendor event records extracted, by lower-cased vendor label",
		ConstLabels: labels,
	}, []string{"vendor_event"})

	m.canonicalEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "canonical_events_total",
		Help:        "Canonical events built, by category and outcome",
		ConstLabels: labels,
	}, []string{"category", "outcome"})

	m.matchesParsed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_parsed_total",
		Help:        "Matches parsed successfully",
		ConstLabels: labels,
	})

	m.parseDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "parse_duration_milliseconds",
		Help:        "Duration of a parse pipeline run in milliseconds, by outcome",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"result"})

	m.parseErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "parse_errors_total",
		Help:        "Failed parse runs, by error kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "batch_size",
		Help:        "Number of matches submitted per batch",
		Buckets:     []float64{1, 2, 4, 8, 16, 32, 64},
		ConstLabels: labels,
	})

	m.matchesStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_stored",
		Help:        "Matches currently held by the match store",
		ConstLabels: labels,
	})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_errors_total",
		Help:        "Match store failures, by operation",
		ConstLabels: labels,
	}, []string{"operation"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP errors by endpoint, method and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})
}

// RecordParsed counts one extracted vendor record.
func (m *Manager) RecordParsed(vendorEvent string) {
	m.recordsParsed.WithLabelValues(vendorEvent).Inc()
}

// CanonicalEvent counts one built canonical event.
func (m *Manager) CanonicalEvent(category, outcome string) {
	m.canonicalEvents.WithLabelValues(category, outcome).Inc()
}

// MatchParsed records a successful run and its duration.
func (m *Manager) MatchParsed(durationMs float64) {
	m.matchesParsed.Inc()
	m.parseDuration.WithLabelValues("ok").Observe(durationMs)
}

// ParseFailed records a failed run by error kind.
func (m *Manager) ParseFailed(kind string, durationMs float64) {
	m.parseErrors.WithLabelValues(kind).Inc()
	m.parseDuration.WithLabelValues("error").Observe(durationMs)
}

// Package-level helpers operate on the global manager.

// RecordParsed counts one extracted vendor record.
func RecordParsed(vendorEvent string) { globalManager.RecordParsed(vendorEvent) }

// RecordCanonicalEvent counts one built canonical event.
func RecordCanonicalEvent(category, outcome string) {
	globalManager.CanonicalEvent(category, outcome)
}

// RecordMatchParsed records a successful parse run.
func RecordMatchParsed(durationMs float64) { globalManager.MatchParsed(durationMs) }

// RecordParseError records a failed parse run.
func RecordParseError(kind string, durationMs float64) {
	globalManager.ParseFailed(kind, durationMs)
}

// RecordBatchSize observes the size of a submitted batch.
func RecordBatchSize(n int) { globalManager.batchSize.Observe(float64(n)) }

// UpdateMatchesStored sets the number of stored matches.
func UpdateMatchesStored(count int) { globalManager.matchesStored.Set(float64(count)) }

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error with endpoint, method and type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
