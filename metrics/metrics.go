package metrics

import (
	"time"
)

// LoadOutcome is how a single ad load request resolved.
type LoadOutcome string

const (
	LoadSuccess      LoadOutcome = "success"
	LoadSizeMismatch LoadOutcome = "size_mismatch"
	LoadNetworkError LoadOutcome = "network_error"
	LoadConfigError  LoadOutcome = "config_error"
	LoadTimeout      LoadOutcome = "timeout"
)

// LoadOutcomes returns all possible values for LoadOutcome.
func LoadOutcomes() []LoadOutcome {
	return []LoadOutcome{
		LoadSuccess,
		LoadSizeMismatch,
		LoadNetworkError,
		LoadConfigError,
		LoadTimeout,
	}
}

// DisplayEvent is a host-visible event raised by a loaded ad.
type DisplayEvent string

const (
	DisplayEventClick           DisplayEvent = "click"
	DisplayEventImpression      DisplayEvent = "impression"
	DisplayEventLeftApplication DisplayEvent = "left_application"
)

// DisplayEvents returns all possible values for DisplayEvent.
func DisplayEvents() []DisplayEvent {
	return []DisplayEvent{
		DisplayEventClick,
		DisplayEventImpression,
		DisplayEventLeftApplication,
	}
}

// LoadLabels defines the labels attached to load outcome metrics.
type LoadLabels struct {
	Adapter string
	Outcome LoadOutcome
	// ErrorCode is the code of the AdError reported to the host. Zero on success.
	ErrorCode int
}

// MetricsEngine is a generic interface to record mediation metrics into the desired backend.
// The first three metrics function fire off once per incoming load request, so the engine
// should be able to handle those calls concurrently.
type MetricsEngine interface {
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
	RecordLoadRequest(adapter string)
	RecordLoadOutcome(labels LoadLabels)
	RecordLoadTime(adapter string, length time.Duration)
	RecordDisplayEvent(adapter string, event DisplayEvent)
	// RecordListenerPanic counts panics absorbed inside an ad network listener callback.
	RecordListenerPanic(adapter string)
}
