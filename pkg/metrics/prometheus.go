// Package metrics provides Prometheus metrics for the wellbeing risk service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	riskBuckets      []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Assessment metrics
	assessments          *prometheus.CounterVec
	assessmentRejections *prometheus.CounterVec
	alerts               prometheus.Counter
	duplicateSubmissions prometheus.Counter
	burnoutRisk          prometheus.Histogram
	classifierLatency    prometheus.Histogram

	// Alert delivery metrics
	notifications     *prometheus.CounterVec
	alertQueueSize    prometheus.Gauge
	alertQueueDrops   *prometheus.CounterVec
	alertWorkers      prometheus.Gauge
	alertDeliveryTime prometheus.Histogram

	// Roster metrics, refreshed on every triage
	subjectsTotal  prometheus.Gauge
	rosterHighRisk prometheus.Gauge
	rosterAlerts   prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "wellcheck",
		subsystem:        "risk",
		histogramBuckets: prometheus.DefBuckets,
		riskBuckets:      prometheus.LinearBuckets(0, 10, 11),
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
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessments = auto.NewCounterVec(
		m.counterOpts("assessments_total", "Total number of completed assessments by predicted label"),
		[]string{"label"},
	)
	m.assessmentRejections = auto.NewCounterVec(
		m.counterOpts("assessment_rejections_total", "Total number of rejected assessments by reason"),
		[]string{"reason"},
	)
	m.alerts = auto.NewCounter(m.counterOpts("alerts_total", "Total number of assessments that raised a counselor alert"))
	m.duplicateSubmissions = auto.NewCounter(m.counterOpts("duplicate_submissions_total", "Total number of check-ins skipped as duplicates"))
	m.burnoutRisk = auto.NewHistogram(m.histogramOpts("burnout_risk", "Distribution of burnout risk scores", m.riskBuckets))
	m.classifierLatency = auto.NewHistogram(m.histogramOpts("classifier_latency_milliseconds", "Classifier latency in milliseconds", m.histogramBuckets))

	m.notifications = auto.NewCounterVec(
		m.counterOpts("notifications_total", "Total number of alert deliveries by result"),
		[]string{"result"},
	)
	m.alertQueueSize = auto.NewGauge(m.gaugeOpts("alert_queue_size", "Current number of alerts waiting for delivery"))
	m.alertQueueDrops = auto.NewCounterVec(
		m.counterOpts("alert_queue_drops_total", "Total number of alerts not enqueued by reason"),
		[]string{"reason"},
	)
	m.alertWorkers = auto.NewGauge(m.gaugeOpts("alert_workers", "Current number of alert delivery workers"))
	m.alertDeliveryTime = auto.NewHistogram(m.histogramOpts("alert_delivery_milliseconds", "Alert delivery latency in milliseconds", m.histogramBuckets))

	m.subjectsTotal = auto.NewGauge(m.gaugeOpts("subjects_total", "Number of registered subjects"))
	m.rosterHighRisk = auto.NewGauge(m.gaugeOpts("roster_high_risk", "Subjects whose latest label is High at the last triage"))
	m.rosterAlerts = auto.NewGauge(m.gaugeOpts("roster_alerts", "Subjects whose latest record raised an alert at the last triage"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordAssessment records a completed assessment.
func RecordAssessment(label string, burnoutRisk float64, alert bool) {
	globalManager.assessments.WithLabelValues(label).Inc()
	globalManager.burnoutRisk.Observe(burnoutRisk)
	if alert {
		globalManager.alerts.Inc()
	}
}

// RecordAssessmentRejection records an assessment refused for reason.
func RecordAssessmentRejection(reason string) {
	globalManager.assessmentRejections.WithLabelValues(reason).Inc()
}

// RecordDuplicateSubmission records a check-in skipped by the deduper.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmissions.Inc()
}

// RecordClassifierLatency records classifier latency.
func RecordClassifierLatency(latencyMs float64) {
	globalManager.classifierLatency.Observe(latencyMs)
}

// RecordNotification records an alert delivery outcome ("sent" or "failed").
func RecordNotification(result string) {
	globalManager.notifications.WithLabelValues(result).Inc()
}

// RecordAlertDeliveryLatency records how long one delivery took.
func RecordAlertDeliveryLatency(latencyMs float64) {
	globalManager.alertDeliveryTime.Observe(latencyMs)
}

// RecordAlertQueueDrop records an alert that could not be enqueued.
func RecordAlertQueueDrop(reason string) {
	globalManager.alertQueueDrops.WithLabelValues(reason).Inc()
}

// UpdateAlertQueueSize sets the alert backlog gauge.
func UpdateAlertQueueSize(size int) {
	globalManager.alertQueueSize.Set(float64(size))
}

// UpdateAlertWorkers sets the alert worker gauge.
func UpdateAlertWorkers(count int) {
	globalManager.alertWorkers.Set(float64(count))
}

// UpdateSubjectsTotal sets the registered subject gauge.
func UpdateSubjectsTotal(count int) {
	globalManager.subjectsTotal.Set(float64(count))
}

// UpdateRosterSummary sets the roster gauges from the last triage.
func UpdateRosterSummary(total, highRisk, alerts int) {
	globalManager.subjectsTotal.Set(float64(total))
	globalManager.rosterHighRisk.Set(float64(highRisk))
	globalManager.rosterAlerts.Set(float64(alerts))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom registry served by /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards runtime collector registration

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. Safe to call more than once.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
