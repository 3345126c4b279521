package banner

import (
	"sync"
	"time"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/mediation"
)

// Host callback names as they appear in responses.
const (
	eventClicked         = "ad_clicked"
	eventImpression      = "ad_impression"
	eventLeftApplication = "ad_left_application"
)

type loadOutcome struct {
	ad  mediation.BannerAd
	err *errortypes.AdError
}

// hostCallback records what an adapter reports for one banner load. It serves as both the
// AdLoadCallback and the BannerAdCallback returned from OnSuccess.
type hostCallback struct {
	outcome chan loadOutcome

	mu     sync.Mutex
	events []string
	// changed is closed and replaced each time an event is recorded.
	changed chan struct{}
}

var (
	_ mediation.AdLoadCallback   = (*hostCallback)(nil)
	_ mediation.BannerAdCallback = (*hostCallback)(nil)
)

func newHostCallback() *hostCallback {
	return &hostCallback{
		outcome: make(chan loadOutcome, 1),
		events:  []string{},
		changed: make(chan struct{}),
	}
}

func (h *hostCallback) OnSuccess(ad mediation.BannerAd) mediation.BannerAdCallback {
	h.report(loadOutcome{ad: ad})
	return h
}

func (h *hostCallback) OnFailure(err *errortypes.AdError) {
	h.report(loadOutcome{err: err})
}

func (h *hostCallback) ReportAdClicked() {
	h.record(eventClicked)
}

func (h *hostCallback) ReportAdImpression() {
	h.record(eventImpression)
}

func (h *hostCallback) OnAdLeftApplication() {
	h.record(eventLeftApplication)
}

// report keeps the first outcome. Adapters must report exactly one.
func (h *hostCallback) report(outcome loadOutcome) {
	select {
	case h.outcome <- outcome:
	default:
	}
}

func (h *hostCallback) record(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	close(h.changed)
	h.changed = make(chan struct{})
}

// Events returns the display callbacks received so far, in order.
func (h *hostCallback) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.events...)
}

// count returns how often event has been recorded, and a channel closed by the next record.
func (h *hostCallback) count(event string) (int, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e == event {
			n++
		}
	}
	return n, h.changed
}

// awaitCount blocks until event has been recorded at least n times, or until deadline fires.
func (h *hostCallback) awaitCount(event string, n int, deadline <-chan time.Time) bool {
	for {
		got, changed := h.count(event)
		if got >= n {
			return true
		}
		select {
		case <-changed:
		case <-deadline:
			return false
		}
	}
}
