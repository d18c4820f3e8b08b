package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	changesetsCommitted prometheus.Counter
	changesRecorded     prometheus.Counter
	commitFailures      prometheus.Counter

	publishAttempts *prometheus.CounterVec
	publishFailures *prometheus.CounterVec

	alertsSent   *prometheus.CounterVec
	alertsFailed *prometheus.CounterVec

	queueDropped *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdc_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_http_errors_total",
			Help: "HTTP errors by route, method and error code",
		}, []string{"path", "method", "code"}),
		changesetsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pdc_changesets_committed_total",
			Help: "Changesets durably committed",
		}),
		changesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pdc_changes_recorded_total",
			Help: "Changes committed across all changesets",
		}),
		commitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "pdc_changeset_commit_failures_total",
			Help: "Changeset commits that failed and were rolled back",
		}),
		publishAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_bus_publish_attempts_total",
			Help: "Changeset notifications handed to the message bus",
		}, []string{"backend"}),
		publishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_bus_publish_failures_total",
			Help: "Changeset notifications the message bus failed to deliver",
		}, []string{"backend"}),
		alertsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_operator_alerts_sent_total",
			Help: "Oversized changeset alerts delivered",
		}, []string{"channel"}),
		alertsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_operator_alerts_failed_total",
			Help: "Oversized changeset alerts that could not be delivered",
		}, []string{"channel"}),
		queueDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_worker_queue_dropped_total",
			Help: "Background jobs dropped because the queue was full or closed",
		}, []string{"job"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

func (m *Metrics) ChangesetCommitted(changes int) {
	if m == nil {
		return
	}
	m.changesetsCommitted.Inc()
	m.changesRecorded.Add(float64(changes))
}

func (m *Metrics) CommitFailed() {
	if m == nil {
		return
	}
	m.commitFailures.Inc()
}

func (m *Metrics) PublishAttempted(backend string) {
	if m == nil {
		return
	}
	m.publishAttempts.WithLabelValues(backend).Inc()
}

func (m *Metrics) PublishFailed(backend string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(backend).Inc()
}

func (m *Metrics) AlertSent(channel string) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(channel).Inc()
}

func (m *Metrics) AlertFailed(channel string) {
	if m == nil {
		return
	}
	m.alertsFailed.WithLabelValues(channel).Inc()
}

// JobDropped counts a background job that never ran.
func (m *Metrics) JobDropped(job string) {
	if m == nil {
		return
	}
	m.queueDropped.WithLabelValues(job).Inc()
}
