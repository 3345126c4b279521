package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}

// RecordLoadRequest mock
func (me *MetricsEngineMock) RecordLoadRequest(adapter string) {
	me.Called(adapter)
}

// RecordLoadOutcome mock
func (me *MetricsEngineMock) RecordLoadOutcome(labels LoadLabels) {
	me.Called(labels)
}

// RecordLoadTime mock
func (me *MetricsEngineMock) RecordLoadTime(adapter string, length time.Duration) {
	me.Called(adapter, length)
}

// RecordDisplayEvent mock
func (me *MetricsEngineMock) RecordDisplayEvent(adapter string, event DisplayEvent) {
	me.Called(adapter, event)
}

// RecordListenerPanic mock
func (me *MetricsEngineMock) RecordListenerPanic(adapter string) {
	me.Called(adapter)
}
