// Package line mediates banner ads from the LINE Ads Network through the FiveAd SDK.
package line

import (
	"errors"
	"fmt"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/mediation"
	"github.com/prebid/prebid-mediation/metrics"
)

const AdapterName = "line"

// Server parameter keys. Their names are shared with the host's ad source configuration.
const (
	KeyAppID  = "application_id"
	KeySlotID = "slot_id"
)

const (
	// ErrorDomain is used for errors detected by the adapter itself.
	ErrorDomain = "com.google.ads.mediation.line"
	// SDKErrorDomain is used for errors passed through from the FiveAd SDK.
	SDKErrorDomain = "com.five_corp.ad"
)

// Adapter implements mediation.Adapter for LINE banners.
type Adapter struct {
	sdk            fivead.SDK
	factory        SdkFactory
	initializer    *Initializer
	metrics        metrics.MetricsEngine
	adapterVersion string
	testMode       bool
	enableSound    bool
}

var _ mediation.Adapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithSdkFactory replaces the factory used to create FiveAd objects.
func WithSdkFactory(factory SdkFactory) Option {
	return func(a *Adapter) {
		a.factory = factory
	}
}

func WithMetrics(me metrics.MetricsEngine) Option {
	return func(a *Adapter) {
		a.metrics = me
	}
}

func WithAdapterVersion(version string) Option {
	return func(a *Adapter) {
		a.adapterVersion = version
	}
}

// WithTestMode forces FiveAd test mode regardless of the host's testing flag.
func WithTestMode(testMode bool) Option {
	return func(a *Adapter) {
		a.testMode = testMode
	}
}

func WithSound(enabled bool) Option {
	return func(a *Adapter) {
		a.enableSound = enabled
	}
}

// NewAdapter builds an Adapter over sdk.
func NewAdapter(sdk fivead.SDK, opts ...Option) *Adapter {
	a := &Adapter{
		sdk:     sdk,
		metrics: &metrics.NilMetricsEngine{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.factory == nil {
		a.factory = NewSdkFactory(sdk)
	}
	a.initializer = NewInitializer(sdk, a.factory)
	return a
}

// Initialize initializes the FiveAd SDK with the application ID of the configured ad sources.
// FiveAd supports a single application per process, so when several are configured the
// first one wins.
func (a *Adapter) Initialize(rc mediation.RenderContext, callback mediation.InitializationCompleteCallback, configs []mediation.MediationConfiguration) {
	appIDs := make([]string, 0, len(configs))
	seen := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		appID := cfg.ServerParameters.Get(KeyAppID)
		if appID == "" {
			continue
		}
		if _, ok := seen[appID]; ok {
			continue
		}
		seen[appID] = struct{}{}
		appIDs = append(appIDs, appID)
	}

	if len(appIDs) == 0 {
		err := newConfigurationError(ErrorCodeMissingAppID, errorMsgMissingAppID)
		logger.Warnf("%s", err.Message)
		callback.OnInitializationFailed(err.Message)
		return
	}

	appID := appIDs[0]
	if len(appIDs) > 1 {
		logWarning(&errortypes.Warning{
			Message:     fmt.Sprintf("Found multiple application IDs %v. Using %s to initialize the FiveAd SDK.", appIDs, appID),
			WarningCode: errortypes.MultipleAppIDsWarningCode,
		})
	}

	if err := a.initializer.Initialize(appID, a.testMode, mediation.TagUnspecified); err != nil {
		logger.Warnf("%v", err)
		callback.OnInitializationFailed(err.Error())
		return
	}
	callback.OnInitializationSucceeded()
}

// VersionInfo returns the adapter version as major.minor.micro.
func (a *Adapter) VersionInfo() mediation.VersionInfo {
	return adapterVersionInfo(a.adapterVersion)
}

// SDKVersionInfo returns the FiveAd SDK version as major.minor.micro.
func (a *Adapter) SDKVersionInfo() mediation.VersionInfo {
	return sdkVersionInfo(a.sdk.Version())
}

// LoadBannerAd starts a banner load and returns the banner, or nil if the request was
// rejected. A rejection has already been reported through callback.OnFailure.
func (a *Adapter) LoadBannerAd(cfg mediation.BannerAdConfiguration, callback mediation.AdLoadCallback) mediation.BannerAd {
	a.metrics.RecordLoadRequest(AdapterName)
	bannerAd, err := a.NewBannerAd(cfg, callback)
	if err != nil {
		return nil
	}
	bannerAd.Load()
	return bannerAd
}

// NewBannerAd validates cfg and creates an unloaded banner for it. Invalid configuration
// is reported through callback.OnFailure and returned as an *errortypes.AdError; the FiveAd
// SDK is not touched in that case.
func (a *Adapter) NewBannerAd(cfg mediation.BannerAdConfiguration, callback mediation.AdLoadCallback) (*BannerAd, error) {
	if callback == nil {
		return nil, errNilLoadCallback
	}
	if err := validateBannerConfiguration(cfg); err != nil {
		logger.Warnf("LINE banner request rejected: %s", err.Message)
		a.metrics.RecordLoadOutcome(metrics.LoadLabels{
			Adapter:   AdapterName,
			Outcome:   metrics.LoadConfigError,
			ErrorCode: err.Code,
		})
		callback.OnFailure(err)
		return nil, err
	}

	slotID := cfg.ServerParameters.Get(KeySlotID)
	layout := a.factory.CreateFiveAdCustomLayout(cfg.Context, slotID, cfg.AdSize.WidthInPixels(cfg.Context))

	return &BannerAd{
		layout:      layout,
		slot:        slotID,
		adSize:      cfg.AdSize,
		appID:       cfg.ServerParameters.Get(KeyAppID),
		isTesting:   cfg.IsTesting || a.testMode,
		childTag:    cfg.TaggedForChildDirectedTreatment,
		enableSound: a.enableSound,
		initializer: a.initializer,
		metrics:     a.metrics,
		state:       &awaitingLoad{callback: callback},
	}, nil
}

var errNilLoadCallback = errors.New("line: a banner load needs an AdLoadCallback")

func validateBannerConfiguration(cfg mediation.BannerAdConfiguration) *errortypes.AdError {
	if cfg.ServerParameters.Get(KeyAppID) == "" {
		return newConfigurationError(ErrorCodeMissingAppID, errorMsgMissingAppID)
	}
	if cfg.ServerParameters.Get(KeySlotID) == "" {
		return newConfigurationError(ErrorCodeMissingSlotID, errorMsgMissingSlotID)
	}
	if !cfg.AdSize.IsValid() {
		return newInvalidAdSizeError(cfg.AdSize)
	}
	return nil
}
