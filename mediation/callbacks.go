package mediation

import "github.com/prebid/prebid-mediation/errortypes"

// View is an opaque displayable ad view. Hosts only need its logical dimensions to lay it out.
type View interface {
	LogicalWidth() int
	LogicalHeight() int
}

// BannerAd is the handle a host receives once a banner loaded.
type BannerAd interface {
	View() View
}

// BannerAdCallback reports display events for a loaded banner. Hosts return one from
// AdLoadCallback.OnSuccess.
type BannerAdCallback interface {
	ReportAdClicked()
	ReportAdImpression()
	OnAdLeftApplication()
}

// AdLoadCallback receives the outcome of a single banner load request. Exactly one of
// OnSuccess or OnFailure is called per request.
type AdLoadCallback interface {
	OnSuccess(ad BannerAd) BannerAdCallback
	OnFailure(err *errortypes.AdError)
}

// InitializationCompleteCallback receives the outcome of adapter initialization.
type InitializationCompleteCallback interface {
	OnInitializationSucceeded()
	OnInitializationFailed(message string)
}
