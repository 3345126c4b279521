package sandbox

import (
	"math"
	"sync"

	"github.com/prebid/prebid-mediation/fivead"
)

// Layout implements fivead.CustomLayout against the sandbox SDK. Besides the SDK
// surface it exposes Click, Impression, and Close so hosts and tests can simulate
// user interaction with a loaded ad.
type Layout struct {
	sdk           *SDK
	slotID        string
	widthInPixels int

	mu            sync.Mutex
	loadListener  fivead.LoadListener
	viewListener  fivead.ViewEventListener
	logicalWidth  int
	logicalHeight int
	loaded        bool
	soundEnabled  bool
}

var _ fivead.CustomLayout = (*Layout)(nil)

func (l *Layout) SlotID() string {
	return l.slotID
}

func (l *Layout) LogicalWidth() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logicalWidth
}

func (l *Layout) LogicalHeight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.logicalHeight
}

func (l *Layout) SetLoadListener(listener fivead.LoadListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadListener = listener
}

func (l *Layout) SetViewEventListener(listener fivead.ViewEventListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.viewListener = listener
}

func (l *Layout) EnableSound(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.soundEnabled = enabled
}

func (l *Layout) LoadAdAsync() {
	scenario := l.sdk.scenarioFor(l.slotID)
	l.sdk.clock.AfterFunc(l.sdk.opts.Latency, func() {
		l.sdk.dispatch(func() { l.deliver(scenario) })
	})
}

func (l *Layout) deliver(scenario Scenario) {
	l.mu.Lock()
	listener := l.loadListener
	l.mu.Unlock()
	if listener == nil {
		return
	}

	switch {
	case !l.sdk.IsInitialized():
		listener.OnFiveAdLoadError(l, fivead.ErrorInvalidState)
		return
	case scenario.Error != 0:
		listener.OnFiveAdLoadError(l, scenario.Error)
		return
	}

	width, height := scenario.Width, scenario.Height
	if width == 0 || height == 0 {
		width = int(math.Round(float64(l.widthInPixels) / l.sdk.opts.Density))
		height = width * nativeHeight / nativeWidth
	}

	l.mu.Lock()
	l.logicalWidth = width
	l.logicalHeight = height
	l.loaded = true
	l.mu.Unlock()

	listener.OnFiveAdLoad(l)
	if scenario.AutoImpression {
		l.fireView(func(v fivead.ViewEventListener) { v.OnFiveAdImpression(l) })
	}
}

// Click simulates the user tapping the ad.
func (l *Layout) Click() {
	l.sdk.dispatch(func() {
		l.fireView(func(v fivead.ViewEventListener) { v.OnFiveAdClick(l) })
	})
}

// Impression simulates the ad becoming viewable.
func (l *Layout) Impression() {
	l.sdk.dispatch(func() {
		l.fireView(func(v fivead.ViewEventListener) { v.OnFiveAdImpression(l) })
	})
}

// Close simulates the user dismissing the ad.
func (l *Layout) Close() {
	l.sdk.dispatch(func() {
		l.fireView(func(v fivead.ViewEventListener) { v.OnFiveAdClose(l) })
	})
}

// fireView must only run on the dispatcher goroutine.
func (l *Layout) fireView(fn func(fivead.ViewEventListener)) {
	l.mu.Lock()
	listener, loaded := l.viewListener, l.loaded
	l.mu.Unlock()
	if !loaded || listener == nil {
		return
	}
	fn(listener)
}
