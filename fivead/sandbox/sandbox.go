// Package sandbox is an in-process stand-in for the FiveAd SDK. It serves ads from
// configured per-slot scenarios instead of the network, and delivers every listener
// callback from a single dispatcher goroutine in the order they were raised, the same
// threading guarantee the real SDK gives its listeners.
package sandbox

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/prebid/prebid-mediation/fivead"
)

// DefaultVersion is reported by Version when Options.Version is empty.
const DefaultVersion = "2.8.20240827"

// nativeWidth and nativeHeight give the aspect ratio a custom layout keeps when
// a scenario does not force a creative size.
const (
	nativeWidth  = 320
	nativeHeight = 50
)

// Scenario controls how loads for one slot resolve.
type Scenario struct {
	// Width and Height force the logical size of the delivered creative. When zero the
	// creative follows the requested width at the native 320:50 ratio.
	Width  int
	Height int
	// Error fails the load with this code when non-zero.
	Error fivead.ErrorCode
	// AutoImpression fires an impression right after a successful load.
	AutoImpression bool
}

// Options configure a sandbox SDK.
type Options struct {
	Version         string
	Latency         time.Duration
	Density         float64
	Scenarios       map[string]Scenario
	DefaultScenario Scenario
	Clock           clock.Clock
}

// SDK implements fivead.SDK.
type SDK struct {
	opts  Options
	clock clock.Clock

	mu     sync.Mutex
	config *fivead.Config

	events    chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ fivead.SDK = (*SDK)(nil)

// New starts a sandbox SDK. Call Close to stop its dispatcher.
func New(opts Options) *SDK {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Density <= 0 {
		opts.Density = 1
	}
	s := &SDK{
		opts:   opts,
		clock:  opts.Clock,
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.dispatchLoop()
	return s
}

func (s *SDK) Initialize(config fivead.Config) error {
	if config.AppID == "" {
		return errors.New("fivead: app id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		cfg := config
		s.config = &cfg
	}
	return nil
}

func (s *SDK) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config != nil
}

// Config returns the configuration the SDK was first initialized with.
func (s *SDK) Config() (fivead.Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return fivead.Config{}, false
	}
	return *s.config, true
}

func (s *SDK) Version() string {
	if s.opts.Version == "" {
		return DefaultVersion
	}
	return s.opts.Version
}

func (s *SDK) NewCustomLayout(slotID string, widthInPixels int) fivead.CustomLayout {
	return &Layout{
		sdk:           s,
		slotID:        slotID,
		widthInPixels: widthInPixels,
	}
}

// Close stops the dispatcher. Callbacks raised afterwards are dropped.
func (s *SDK) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

func (s *SDK) scenarioFor(slotID string) Scenario {
	if scenario, ok := s.opts.Scenarios[slotID]; ok {
		return scenario
	}
	return s.opts.DefaultScenario
}

func (s *SDK) dispatch(fn func()) {
	select {
	case <-s.done:
	case s.events <- fn:
	}
}

func (s *SDK) dispatchLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case fn := <-s.events:
			fn()
		}
	}
}
