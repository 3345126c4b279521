package line

import (
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/mediation"
)

// SdkFactory creates FiveAd objects. It is the seam tests use to substitute fake ads.
type SdkFactory interface {
	CreateFiveAdConfig(appID string) fivead.Config
	CreateFiveAdCustomLayout(rc mediation.RenderContext, slotID string, widthInPixels int) fivead.CustomLayout
}

// NewSdkFactory returns the production factory, backed by sdk.
func NewSdkFactory(sdk fivead.SDK) SdkFactory {
	return &sdkFactory{sdk: sdk}
}

type sdkFactory struct {
	sdk fivead.SDK
}

func (f *sdkFactory) CreateFiveAdConfig(appID string) fivead.Config {
	return fivead.NewConfig(appID)
}

func (f *sdkFactory) CreateFiveAdCustomLayout(_ mediation.RenderContext, slotID string, widthInPixels int) fivead.CustomLayout {
	return f.sdk.NewCustomLayout(slotID, widthInPixels)
}
