package fivead

// LoadListener receives the outcome of CustomLayout.LoadAdAsync.
type LoadListener interface {
	OnFiveAdLoad(ad CustomLayout)
	OnFiveAdLoadError(ad CustomLayout, code ErrorCode)
}

// ViewEventListener receives events from a loaded ad view. The SDK calls every method,
// so implementations must provide all of them.
type ViewEventListener interface {
	OnFiveAdClick(ad CustomLayout)
	OnFiveAdImpression(ad CustomLayout)
	OnFiveAdClose(ad CustomLayout)
	OnFiveAdViewError(ad CustomLayout, code ErrorCode)
	OnFiveAdStart(ad CustomLayout)
	OnFiveAdPause(ad CustomLayout)
	OnFiveAdResume(ad CustomLayout)
	OnFiveAdViewThrough(ad CustomLayout)
	OnFiveAdReplay(ad CustomLayout)
	OnFiveAdStall(ad CustomLayout)
	OnFiveAdRecover(ad CustomLayout)
}
