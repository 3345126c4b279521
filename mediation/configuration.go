package mediation

// Format is the ad format a mediation configuration was set up for.
type Format string

const (
	FormatBanner       Format = "banner"
	FormatInterstitial Format = "interstitial"
	FormatRewarded     Format = "rewarded"
	FormatNative       Format = "native"
)

// Tag values for child-directed treatment and under-age-of-consent requests.
type Tag int

const (
	TagUnspecified Tag = -1
	TagFalse       Tag = 0
	TagTrue        Tag = 1
)

// ServerParameters are the ad source settings a publisher configured in the host's UI.
type ServerParameters map[string]string

// Get returns the value for key, or "" if it is absent.
func (p ServerParameters) Get(key string) string {
	if p == nil {
		return ""
	}
	return p[key]
}

// MediationConfiguration is handed to an adapter on initialization, once per configured ad source.
type MediationConfiguration struct {
	Format           Format
	ServerParameters ServerParameters
}

// BannerAdConfiguration carries everything a host knows about a single banner load request.
type BannerAdConfiguration struct {
	Context                         RenderContext
	BidResponse                     string
	ServerParameters                ServerParameters
	MediationExtras                 map[string]string
	IsTesting                       bool
	TaggedForChildDirectedTreatment Tag
	TaggedForUnderAgeOfConsent      Tag
	MaxAdContentRating              string
	AdSize                          AdSize
	Watermark                       string
}
