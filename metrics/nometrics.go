package metrics

import "time"

// NilMetricsEngine implements MetricsEngine by discarding everything.
type NilMetricsEngine struct{}

var _ MetricsEngine = &NilMetricsEngine{}

func (me *NilMetricsEngine) RecordConnectionAccept(success bool)                   {}
func (me *NilMetricsEngine) RecordConnectionClose(success bool)                    {}
func (me *NilMetricsEngine) RecordLoadRequest(adapter string)                      {}
func (me *NilMetricsEngine) RecordLoadOutcome(labels LoadLabels)                   {}
func (me *NilMetricsEngine) RecordLoadTime(adapter string, length time.Duration)   {}
func (me *NilMetricsEngine) RecordDisplayEvent(adapter string, event DisplayEvent) {}
func (me *NilMetricsEngine) RecordListenerPanic(adapter string)                    {}
