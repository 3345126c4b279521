package prometheusmetrics

import (
	"strconv"
	"time"

	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	// General Metrics
	connectionsClosed prometheus.Counter
	connectionsError  *prometheus.CounterVec
	connectionsOpened prometheus.Counter

	// Adapter Metrics
	adapterLoadRequests *prometheus.CounterVec
	adapterLoadOutcomes *prometheus.CounterVec
	adapterLoadTimer    *prometheus.HistogramVec
	adapterEvents       *prometheus.CounterVec
	adapterPanics       *prometheus.CounterVec
}

const (
	adapterLabel         = "adapter"
	connectionErrorLabel = "connection_error"
	errorCodeLabel       = "error_code"
	eventLabel           = "event"
	outcomeLabel         = "outcome"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics) *Metrics {
	loadTimeBuckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.connectionsClosed = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_closed",
		"Count of successful connections closed to Prebid Mediation.")

	metrics.connectionsError = newCounter(cfg, metrics.Registry,
		"connections_error",
		"Count of errors for connection open and close attempts to Prebid Mediation labeled by type.",
		[]string{connectionErrorLabel})

	metrics.connectionsOpened = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_opened",
		"Count of successful connections opened to Prebid Mediation.")

	metrics.adapterLoadRequests = newCounter(cfg, metrics.Registry,
		"adapter_load_requests",
		"Count of ad load requests handed to an adapter.",
		[]string{adapterLabel})

	metrics.adapterLoadOutcomes = newCounter(cfg, metrics.Registry,
		"adapter_load_outcomes",
		"Count of ad load outcomes labeled by adapter, outcome and reported error code.",
		[]string{adapterLabel, outcomeLabel, errorCodeLabel})

	metrics.adapterLoadTimer = newHistogramVec(cfg, metrics.Registry,
		"adapter_load_time_seconds",
		"Seconds from load request to outcome labeled by adapter.",
		[]string{adapterLabel},
		loadTimeBuckets)

	metrics.adapterEvents = newCounter(cfg, metrics.Registry,
		"adapter_display_events",
		"Count of display events reported to the host labeled by adapter and event.",
		[]string{adapterLabel, eventLabel})

	metrics.adapterPanics = newCounter(cfg, metrics.Registry,
		"adapter_listener_panics",
		"Count of panics absorbed inside ad network listener callbacks labeled by adapter.",
		[]string{adapterLabel})

	preloadLabelValues(&metrics)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics) {
	m.connectionsError.WithLabelValues(connectionAcceptError)
	m.connectionsError.WithLabelValues(connectionCloseError)
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordLoadRequest(adapter string) {
	m.adapterLoadRequests.With(prometheus.Labels{
		adapterLabel: adapter,
	}).Inc()
}

func (m *Metrics) RecordLoadOutcome(labels metrics.LoadLabels) {
	m.adapterLoadOutcomes.With(prometheus.Labels{
		adapterLabel:   labels.Adapter,
		outcomeLabel:   string(labels.Outcome),
		errorCodeLabel: strconv.Itoa(labels.ErrorCode),
	}).Inc()
}

func (m *Metrics) RecordLoadTime(adapter string, length time.Duration) {
	m.adapterLoadTimer.With(prometheus.Labels{
		adapterLabel: adapter,
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordDisplayEvent(adapter string, event metrics.DisplayEvent) {
	m.adapterEvents.With(prometheus.Labels{
		adapterLabel: adapter,
		eventLabel:   string(event),
	}).Inc()
}

func (m *Metrics) RecordListenerPanic(adapter string) {
	m.adapterPanics.With(prometheus.Labels{
		adapterLabel: adapter,
	}).Inc()
}
