package mediation

import "fmt"

// Adapter is the contract a mediation host drives for each ad network it mediates.
type Adapter interface {
	// Initialize prepares the ad network SDK using every ad source configured for it.
	Initialize(rc RenderContext, callback InitializationCompleteCallback, configs []MediationConfiguration)
	// VersionInfo returns the adapter's own version.
	VersionInfo() VersionInfo
	// SDKVersionInfo returns the version of the wrapped ad network SDK.
	SDKVersionInfo() VersionInfo
	// LoadBannerAd starts a banner load. The outcome is reported through callback.
	// It returns nil when the request was rejected before reaching the SDK.
	LoadBannerAd(cfg BannerAdConfiguration, callback AdLoadCallback) BannerAd
}

// VersionInfo is a three part version number as understood by mediation hosts.
type VersionInfo struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Micro int `json:"micro"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}
