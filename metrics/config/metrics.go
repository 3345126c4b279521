package config

import (
	"time"

	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/metrics"
	prometheusmetrics "github.com/prebid/prebid-mediation/metrics/prometheus"
	gometrics "github.com/rcrowley/go-metrics"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration, adapterNames []string) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.GoMetrics.Enabled {
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry(cfg.Metrics.GoMetrics.Prefix), adapterNames)
		engineList = append(engineList, returnEngine.GoMetrics)
		if cfg.Metrics.GoMetrics.LogIntervalSeconds > 0 {
			interval := time.Duration(cfg.Metrics.GoMetrics.LogIntervalSeconds) * time.Second
			go gometrics.Log(returnEngine.GoMetrics.MetricsRegistry, interval, printfLogger{})
		}
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &metrics.NilMetricsEngine{}
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordConnectionAccept across all engines
func (me *MultiMetricsEngine) RecordConnectionAccept(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionAccept(success)
	}
}

// RecordConnectionClose across all engines
func (me *MultiMetricsEngine) RecordConnectionClose(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionClose(success)
	}
}

// RecordLoadRequest across all engines
func (me *MultiMetricsEngine) RecordLoadRequest(adapter string) {
	for _, thisME := range *me {
		thisME.RecordLoadRequest(adapter)
	}
}

// RecordLoadOutcome across all engines
func (me *MultiMetricsEngine) RecordLoadOutcome(labels metrics.LoadLabels) {
	for _, thisME := range *me {
		thisME.RecordLoadOutcome(labels)
	}
}

// RecordLoadTime across all engines
func (me *MultiMetricsEngine) RecordLoadTime(adapter string, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordLoadTime(adapter, length)
	}
}

// RecordDisplayEvent across all engines
func (me *MultiMetricsEngine) RecordDisplayEvent(adapter string, event metrics.DisplayEvent) {
	for _, thisME := range *me {
		thisME.RecordDisplayEvent(adapter, event)
	}
}

// RecordListenerPanic across all engines
func (me *MultiMetricsEngine) RecordListenerPanic(adapter string) {
	for _, thisME := range *me {
		thisME.RecordListenerPanic(adapter)
	}
}

// printfLogger adapts the application logger to go-metrics' periodic registry dump.
type printfLogger struct{}

func (printfLogger) Printf(format string, v ...interface{}) {
	logger.Infof(format, v...)
}
