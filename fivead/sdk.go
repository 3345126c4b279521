package fivead

// CustomLayout is a FiveAd banner view. Its logical size is only meaningful after a load.
type CustomLayout interface {
	SlotID() string
	LogicalWidth() int
	LogicalHeight() int
	SetLoadListener(listener LoadListener)
	SetViewEventListener(listener ViewEventListener)
	// LoadAdAsync starts loading. The result is delivered to the LoadListener.
	LoadAdAsync()
	EnableSound(enabled bool)
}

// NeedChildDirectedTreatment mirrors the SDK's tri-state child-directed flag.
type NeedChildDirectedTreatment int

const (
	NeedChildDirectedTreatmentUnspecified NeedChildDirectedTreatment = iota
	NeedChildDirectedTreatmentFalse
	NeedChildDirectedTreatmentTrue
)

// Config holds the settings the SDK is initialized with.
type Config struct {
	AppID                      string
	IsTest                     bool
	NeedChildDirectedTreatment NeedChildDirectedTreatment
}

// NewConfig returns a Config for appID with the SDK defaults.
func NewConfig(appID string) Config {
	return Config{AppID: appID}
}

// SDK is the process wide FiveAd SDK entry point.
type SDK interface {
	Initialize(config Config) error
	IsInitialized() bool
	Version() string
	// NewCustomLayout creates a banner view for slotID that will be widthInPixels wide.
	NewCustomLayout(slotID string, widthInPixels int) CustomLayout
}
