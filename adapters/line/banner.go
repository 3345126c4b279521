package line

import (
	"sync"
	"time"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/mediation"
	"github.com/prebid/prebid-mediation/metrics"
)

// bannerState is one of awaitingLoad, succeeding, loaded, failed or destroyed.
type bannerState interface {
	String() string
}

type awaitingLoad struct {
	callback mediation.AdLoadCallback
}

// succeeding covers the host's OnSuccess call. The host may destroy the ad from inside it.
type succeeding struct{}

// loaded is the only state that can reach the host's display callbacks.
type loaded struct {
	events mediation.BannerAdCallback
}

type failed struct{}

type destroyed struct{}

func (*awaitingLoad) String() string { return "awaiting_load" }
func (*succeeding) String() string   { return "succeeding" }
func (*loaded) String() string       { return "loaded" }
func (*failed) String() string       { return "failed" }
func (*destroyed) String() string    { return "destroyed" }

// BannerAd translates FiveAd listener callbacks for one banner into the host's callback
// contract: exactly one of OnSuccess or OnFailure, then display events only after success.
//
// FiveAd delivers callbacks on a single goroutine, but the host may call Destroy from any
// goroutine, so state changes are guarded. Host callbacks are always invoked unlocked.
type BannerAd struct {
	layout      fivead.CustomLayout
	slot        string
	adSize      mediation.AdSize
	appID       string
	isTesting   bool
	childTag    mediation.Tag
	enableSound bool
	initializer *Initializer
	metrics     metrics.MetricsEngine
	startedAt   time.Time

	mu    sync.Mutex
	state bannerState
}

var (
	_ mediation.BannerAd       = (*BannerAd)(nil)
	_ fivead.LoadListener      = (*BannerAd)(nil)
	_ fivead.ViewEventListener = (*BannerAd)(nil)
)

// View returns the FiveAd layout backing this banner.
func (b *BannerAd) View() mediation.View {
	return b.layout
}

// Load initializes the SDK if needed and starts loading. The outcome is reported through
// the AdLoadCallback the banner was created with. A banner that already left awaitingLoad,
// for example one the host destroyed, is not loaded again.
func (b *BannerAd) Load() {
	b.mu.Lock()
	_, pending := b.state.(*awaitingLoad)
	state := b.state
	b.mu.Unlock()
	if !pending {
		logger.Warnf("LINE banner for slot %s: not loading in state %s", b.slotID(), state)
		return
	}

	b.startedAt = time.Now()
	if err := b.initializer.Initialize(b.appID, b.isTesting, b.childTag); err != nil {
		b.failPending("Load", newInitializationError(err), metrics.LoadConfigError)
		return
	}
	b.layout.SetLoadListener(b)
	b.layout.EnableSound(b.enableSound)
	b.layout.LoadAdAsync()
}

// Destroy releases the banner. Any FiveAd callback arriving afterwards is ignored.
func (b *BannerAd) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = &destroyed{}
}

func (b *BannerAd) OnFiveAdLoad(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdLoad")
	sizeMatches := isSizeMatch(ad, b.adSize)

	b.mu.Lock()
	pending, ok := b.state.(*awaitingLoad)
	if !ok {
		state := b.state
		b.mu.Unlock()
		logger.Warnf("LINE banner for slot %s: ignoring OnFiveAdLoad in state %s", b.slotID(), state)
		return
	}
	if !sizeMatches {
		b.state = &failed{}
		b.mu.Unlock()
		b.reportFailure(pending.callback, newMismatchAdSizeError(b.adSize, ad), metrics.LoadSizeMismatch)
		return
	}
	b.state = &succeeding{}
	b.mu.Unlock()

	ad.SetViewEventListener(b)
	defer b.recordOutcome(metrics.LoadSuccess, 0)
	events := pending.callback.OnSuccess(b)
	b.markLoaded(events)
}

// markLoaded completes a success unless the host destroyed the banner from inside OnSuccess.
func (b *BannerAd) markLoaded(events mediation.BannerAdCallback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.state.(*succeeding); ok {
		b.state = &loaded{events: events}
	}
}

func (b *BannerAd) OnFiveAdLoadError(ad fivead.CustomLayout, code fivead.ErrorCode) {
	defer b.absorbPanic("OnFiveAdLoadError")
	b.failPending("OnFiveAdLoadError", newSDKLoadError(code), metrics.LoadNetworkError)
}

// FiveAd reports every banner click as the user leaving the application.
func (b *BannerAd) OnFiveAdClick(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdClick")
	events := b.displayEvents("OnFiveAdClick")
	if events == nil {
		return
	}
	events.ReportAdClicked()
	b.metrics.RecordDisplayEvent(AdapterName, metrics.DisplayEventClick)
	events.OnAdLeftApplication()
	b.metrics.RecordDisplayEvent(AdapterName, metrics.DisplayEventLeftApplication)
}

func (b *BannerAd) OnFiveAdImpression(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdImpression")
	events := b.displayEvents("OnFiveAdImpression")
	if events == nil {
		return
	}
	events.ReportAdImpression()
	b.metrics.RecordDisplayEvent(AdapterName, metrics.DisplayEventImpression)
}

// The remaining view events have no counterpart in the host's banner callbacks and are
// dropped here. Forwarding any of them needs a matching host hook first.

func (b *BannerAd) OnFiveAdClose(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdClose")
}

// OnFiveAdViewError is dropped as well: the host has no post-load error hook for banners.
// TODO: revisit once hosts expose a render-failure callback for loaded banners.
func (b *BannerAd) OnFiveAdViewError(ad fivead.CustomLayout, code fivead.ErrorCode) {
	defer b.absorbPanic("OnFiveAdViewError")
	logger.Debugf("LINE banner for slot %s: view error %s", b.slotID(), code)
}

func (b *BannerAd) OnFiveAdStart(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdStart")
}

func (b *BannerAd) OnFiveAdPause(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdPause")
}

func (b *BannerAd) OnFiveAdResume(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdResume")
}

func (b *BannerAd) OnFiveAdViewThrough(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdViewThrough")
}

func (b *BannerAd) OnFiveAdReplay(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdReplay")
}

func (b *BannerAd) OnFiveAdStall(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdStall")
}

func (b *BannerAd) OnFiveAdRecover(ad fivead.CustomLayout) {
	defer b.absorbPanic("OnFiveAdRecover")
}

// failPending moves an awaiting banner to failed and reports err. In any other state the
// call is a FiveAd contract violation and is only logged.
func (b *BannerAd) failPending(source string, err *errortypes.AdError, outcome metrics.LoadOutcome) {
	b.mu.Lock()
	pending, ok := b.state.(*awaitingLoad)
	if !ok {
		state := b.state
		b.mu.Unlock()
		logger.Warnf("LINE banner for slot %s: ignoring %s in state %s: %s", b.slotID(), source, state, err.Message)
		return
	}
	b.state = &failed{}
	b.mu.Unlock()

	b.reportFailure(pending.callback, err, outcome)
}

// reportFailure tells the host first. Logging and metrics run afterwards so that neither can
// keep OnFailure from being called.
func (b *BannerAd) reportFailure(callback mediation.AdLoadCallback, err *errortypes.AdError, outcome metrics.LoadOutcome) {
	defer func() {
		logger.Warnf("LINE banner for slot %s failed to load: %s", b.slotID(), err.Message)
		b.recordOutcome(outcome, err.Code)
	}()
	callback.OnFailure(err)
}

func (b *BannerAd) recordOutcome(outcome metrics.LoadOutcome, code int) {
	b.metrics.RecordLoadOutcome(metrics.LoadLabels{
		Adapter:   AdapterName,
		Outcome:   outcome,
		ErrorCode: code,
	})
	if !b.startedAt.IsZero() {
		b.metrics.RecordLoadTime(AdapterName, time.Since(b.startedAt))
	}
}

// displayEvents returns the host's display callbacks, or nil unless the banner is loaded.
func (b *BannerAd) displayEvents(source string) mediation.BannerAdCallback {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.state.(*loaded)
	if !ok {
		logger.Debugf("LINE banner: dropping %s in state %s", source, b.state)
		return nil
	}
	return l.events
}

func (b *BannerAd) slotID() string {
	return b.slot
}

// absorbPanic keeps a panic raised by the host or the layout from unwinding into the
// FiveAd SDK's own call stack.
func (b *BannerAd) absorbPanic(source string) {
	if r := recover(); r != nil {
		logger.Errorf("LINE banner %s: recovered panic: %v", source, r)
		b.metrics.RecordListenerPanic(AdapterName)
	}
}
