package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics is the legacy go-metrics backed MetricsEngine.
type Metrics struct {
	MetricsRegistry            metrics.Registry
	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter

	// AdapterMetrics is keyed by adapter name. Adapters not known at construction time
	// are registered lazily under the same naming scheme.
	AdapterMetrics map[string]*AdapterMetrics
	adapterLock    sync.RWMutex
}

// AdapterMetrics houses the metrics for a particular adapter
type AdapterMetrics struct {
	LoadRequestMeter metrics.Meter
	OutcomeMeters    map[LoadOutcome]metrics.Meter
	ErrorCodeMeters  map[int]metrics.Meter
	LoadTimer        metrics.Timer
	EventMeters      map[DisplayEvent]metrics.Meter
	PanicMeter       metrics.Meter

	registry   metrics.Registry
	name       string
	errorsLock sync.Mutex
}

// NewMetrics creates a new Metrics object with needed metrics defined. In time we may develop to the point
// where Metrics contains all the metrics we might want to record, and then we build the actual
// metrics object to contain only the metrics we are interested in. This would allow for debug
// mode metrics. The code would allow for the metrics to be defined at runtime.
func NewMetrics(registry metrics.Registry, adapterNames []string) *Metrics {
	newMetrics := &Metrics{
		MetricsRegistry:            registry,
		ConnectionCounter:          metrics.GetOrRegisterCounter("active_connections", registry),
		ConnectionAcceptErrorMeter: metrics.GetOrRegisterMeter("connection_accept_errors", registry),
		ConnectionCloseErrorMeter:  metrics.GetOrRegisterMeter("connection_close_errors", registry),
		AdapterMetrics:             make(map[string]*AdapterMetrics, len(adapterNames)),
	}

	for _, name := range adapterNames {
		newMetrics.AdapterMetrics[name] = makeAdapterMetrics(registry, name)
	}

	return newMetrics
}

func makeAdapterMetrics(registry metrics.Registry, name string) *AdapterMetrics {
	am := &AdapterMetrics{
		LoadRequestMeter: metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.requests", name), registry),
		OutcomeMeters:    make(map[LoadOutcome]metrics.Meter),
		ErrorCodeMeters:  make(map[int]metrics.Meter),
		LoadTimer:        metrics.GetOrRegisterTimer(fmt.Sprintf("adapter.%s.load_time", name), registry),
		EventMeters:      make(map[DisplayEvent]metrics.Meter),
		PanicMeter:       metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.listener_panics", name), registry),
		registry:         registry,
		name:             name,
	}
	for _, outcome := range LoadOutcomes() {
		am.OutcomeMeters[outcome] = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.outcome.%s", name, outcome), registry)
	}
	for _, event := range DisplayEvents() {
		am.EventMeters[event] = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.event.%s", name, event), registry)
	}
	return am
}

func (me *Metrics) getAdapterMetrics(name string) *AdapterMetrics {
	me.adapterLock.RLock()
	am, ok := me.AdapterMetrics[name]
	me.adapterLock.RUnlock()
	if ok {
		return am
	}

	me.adapterLock.Lock()
	defer me.adapterLock.Unlock()
	if am, ok = me.AdapterMetrics[name]; !ok {
		am = makeAdapterMetrics(me.MetricsRegistry, name)
		me.AdapterMetrics[name] = am
	}
	return am
}

func (am *AdapterMetrics) errorCodeMeter(code int) metrics.Meter {
	am.errorsLock.Lock()
	defer am.errorsLock.Unlock()
	meter, ok := am.ErrorCodeMeters[code]
	if !ok {
		meter = metrics.GetOrRegisterMeter(fmt.Sprintf("adapter.%s.error_code.%d", am.name, code), am.registry)
		am.ErrorCodeMeters[code] = meter
	}
	return meter
}

// RecordConnectionAccept implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

// RecordConnectionClose implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}

// RecordLoadRequest implements a part of the MetricsEngine interface
func (me *Metrics) RecordLoadRequest(adapter string) {
	me.getAdapterMetrics(adapter).LoadRequestMeter.Mark(1)
}

// RecordLoadOutcome implements a part of the MetricsEngine interface
func (me *Metrics) RecordLoadOutcome(labels LoadLabels) {
	am := me.getAdapterMetrics(labels.Adapter)
	if meter, ok := am.OutcomeMeters[labels.Outcome]; ok {
		meter.Mark(1)
	}
	if labels.Outcome != LoadSuccess {
		am.errorCodeMeter(labels.ErrorCode).Mark(1)
	}
}

// RecordLoadTime implements a part of the MetricsEngine interface
func (me *Metrics) RecordLoadTime(adapter string, length time.Duration) {
	me.getAdapterMetrics(adapter).LoadTimer.Update(length)
}

// RecordDisplayEvent implements a part of the MetricsEngine interface
func (me *Metrics) RecordDisplayEvent(adapter string, event DisplayEvent) {
	if meter, ok := me.getAdapterMetrics(adapter).EventMeters[event]; ok {
		meter.Mark(1)
	}
}

// RecordListenerPanic implements a part of the MetricsEngine interface
func (me *Metrics) RecordListenerPanic(adapter string) {
	me.getAdapterMetrics(adapter).PanicMeter.Mark(1)
}
