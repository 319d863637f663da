// Package metrics provides Prometheus metrics for the mashup scorecard
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the scorecard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Sync metrics - the shared-session mirror is the only networked path.
	syncPushes             prometheus.Counter
	syncPushFailures       prometheus.Counter
	syncPulls              prometheus.Counter
	syncPullNoops          prometheus.Counter
	syncPullFailures       prometheus.Counter
	syncConflictOverwrites prometheus.Counter

	// Entity store metrics.
	storeEntries  prometheus.Gauge
	storeFeedback prometheus.Gauge

	// Push outbox metrics.
	outboxSize     prometheus.Gauge
	outboxCapacity prometheus.Gauge
	outboxDropped  prometheus.Counter

	// Blob host metrics.
	hostSessions    prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsExpired prometheus.Counter

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics.
	errorsByType     *prometheus.CounterVec
	errorsByEndpoint *prometheus.CounterVec
	errorLatency     *prometheus.HistogramVec
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
		namespace:        "mashup",
		subsystem:        "scorecard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.syncPushes = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_pushes_total",
		Help:      "Store snapshots pushed to the shared session",
	})
	m.syncPushFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_push_failures_total",
		Help:      "Pushes that failed and were dropped without retry",
	})
	m.syncPulls = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_pulls_total",
		Help:      "Pull attempts against the shared session",
	})
	m.syncPullNoops = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_pull_noops_total",
		Help:      "Pulls skipped because the remote state was not newer",
	})
	m.syncPullFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_pull_failures_total",
		Help:      "Pulls that failed transiently",
	})
	m.syncConflictOverwrites = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_conflict_overwrites_total",
		Help:      "Local stores replaced wholesale by newer remote state",
	})

	m.storeEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_entries",
		Help:      "Entries currently held in the entity store",
	})
	m.storeFeedback = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_feedback",
		Help:      "Scorecards currently held in the entity store",
	})

	m.outboxSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outbox_size",
		Help:      "Snapshots waiting in the push outbox",
	})
	m.outboxCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outbox_capacity",
		Help:      "Configured capacity of the push outbox",
	})
	m.outboxDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outbox_dropped_total",
		Help:      "Stale snapshots displaced by newer ones in the outbox",
	})

	m.hostSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "host_sessions",
		Help:      "Live sessions held by the blob host",
	})
	m.sessionsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "host_sessions_created_total",
		Help:      "Sessions created on the blob host",
	})
	m.sessionsExpired = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "host_sessions_expired_total",
		Help:      "Sessions reaped by the TTL sweep",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByType = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Errors by type and severity",
	}, []string{"error_type", "severity"})
	m.errorsByEndpoint = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Errors by endpoint and method",
	}, []string{"endpoint", "method", "error_type"})
	m.errorLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "error_latency_ms",
		Help:      "Latency of failed operations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"component", "error_type"})
}

// Package-level helpers on the global manager.

// RecordSyncPush counts a successful push to the shared session.
func RecordSyncPush() {
	globalManager.syncPushes.Inc()
}

// RecordSyncPushFailure counts a push that failed and was dropped.
func RecordSyncPushFailure() {
	globalManager.syncPushFailures.Inc()
}

// RecordSyncPull counts a pull attempt.
func RecordSyncPull() {
	globalManager.syncPulls.Inc()
}

// RecordSyncPullNoop counts a pull answered with not-newer state.
func RecordSyncPullNoop() {
	globalManager.syncPullNoops.Inc()
}

// RecordSyncPullFailure counts a transiently failed pull.
func RecordSyncPullFailure() {
	globalManager.syncPullFailures.Inc()
}

// RecordSyncConflictOverwrite counts a wholesale local replacement.
func RecordSyncConflictOverwrite() {
	globalManager.syncConflictOverwrites.Inc()
}

// UpdateStoreSize sets the entity store gauges.
func UpdateStoreSize(entries, feedback int) {
	globalManager.storeEntries.Set(float64(entries))
	globalManager.storeFeedback.Set(float64(feedback))
}

// UpdateOutboxSize sets the outbox occupancy gauge.
func UpdateOutboxSize(size int) {
	globalManager.outboxSize.Set(float64(size))
}

// UpdateOutboxCapacity sets the outbox capacity gauge.
func UpdateOutboxCapacity(capacity int) {
	globalManager.outboxCapacity.Set(float64(capacity))
}

// RecordOutboxDropped counts a displaced stale snapshot.
func RecordOutboxDropped() {
	globalManager.outboxDropped.Inc()
}

// UpdateHostSessions sets the live session gauge on the blob host.
func UpdateHostSessions(count int) {
	globalManager.hostSessions.Set(float64(count))
}

// RecordSessionCreated counts a created session.
func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

// RecordSessionExpired counts a session reaped by the TTL sweep.
func RecordSessionExpired() {
	globalManager.sessionsExpired.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint counts an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency observes how long a failing operation took.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// GetRegistry returns the custom registry serving /healthz scrapes.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
