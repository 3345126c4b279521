package banner

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prebid/prebid-mediation/adapters/line"
	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/fivead/sandbox"
	"github.com/prebid/prebid-mediation/mediation"
	"github.com/prebid/prebid-mediation/metrics"
)

const validRequest = `{
	"network": "line",
	"ad_size": {"w": 320, "h": 50},
	"server_parameters": {"application_id": "app", "slot_id": "slot"}
}`

// scriptedAdapter answers LoadBannerAd with whatever its load func does.
type scriptedAdapter struct {
	load       func(callback mediation.AdLoadCallback) mediation.BannerAd
	lastConfig mediation.BannerAdConfiguration
}

func (a *scriptedAdapter) Initialize(mediation.RenderContext, mediation.InitializationCompleteCallback, []mediation.MediationConfiguration) {
}

func (a *scriptedAdapter) VersionInfo() mediation.VersionInfo    { return mediation.VersionInfo{} }
func (a *scriptedAdapter) SDKVersionInfo() mediation.VersionInfo { return mediation.VersionInfo{} }

func (a *scriptedAdapter) LoadBannerAd(cfg mediation.BannerAdConfiguration, callback mediation.AdLoadCallback) mediation.BannerAd {
	a.lastConfig = cfg
	return a.load(callback)
}

// fakeBanner is a loaded banner whose view forwards simulated interaction to the host.
type fakeBanner struct {
	size      mediation.AdSize
	events    mediation.BannerAdCallback
	destroyed bool
}

func (b *fakeBanner) View() mediation.View { return b }
func (b *fakeBanner) LogicalWidth() int    { return b.size.Width }
func (b *fakeBanner) LogicalHeight() int   { return b.size.Height }
func (b *fakeBanner) Destroy()             { b.destroyed = true }

func (b *fakeBanner) Click() {
	b.events.ReportAdClicked()
	b.events.OnAdLeftApplication()
}

func (b *fakeBanner) Impression() {
	b.events.ReportAdImpression()
}

type fakeValidator struct {
	err error
}

func (v *fakeValidator) Validate(string, json.RawMessage) error { return v.err }
func (v *fakeValidator) Schema(string) string                   { return "{}" }

type fakeUUIDGenerator struct {
	id  string
	err error
}

func (f fakeUUIDGenerator) Generate() (string, error) {
	return f.id, f.err
}

func newTestConfig() *config.Configuration {
	return &config.Configuration{
		Mediation: config.Mediation{
			LoadTimeoutMillis: 1000,
			MaxRequestSize:    4096,
		},
	}
}

func newTestEndpoint(t *testing.T, adapter mediation.Adapter, validator mediation.ParamsValidator, me metrics.MetricsEngine) func(body string) *httptest.ResponseRecorder {
	endpoint, err := NewEndpoint(fakeUUIDGenerator{id: "request-1"}, map[string]mediation.Adapter{"line": adapter}, validator, newTestConfig(), me)
	require.NoError(t, err)

	return func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		endpoint(w, httptest.NewRequest(http.MethodPost, "/mediation/banner", strings.NewReader(body)), nil)
		return w
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) loadResponse {
	t.Helper()
	var resp loadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestNewEndpointRequiresArguments(t *testing.T) {
	adapters := map[string]mediation.Adapter{"line": &scriptedAdapter{}}

	_, err := NewEndpoint(fakeUUIDGenerator{}, nil, &fakeValidator{}, newTestConfig(), &metrics.NilMetricsEngine{})
	assert.Error(t, err)

	_, err = NewEndpoint(fakeUUIDGenerator{}, adapters, nil, newTestConfig(), &metrics.NilMetricsEngine{})
	assert.Error(t, err)

	_, err = NewEndpoint(nil, adapters, &fakeValidator{}, newTestConfig(), &metrics.NilMetricsEngine{})
	assert.Error(t, err)
}

func TestLoadBannerSuccess(t *testing.T) {
	banner := &fakeBanner{size: mediation.Banner}
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		banner.events = callback.OnSuccess(banner)
		return banner
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	w := post(validRequest)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decodeResponse(t, w)
	assert.Equal(t, "request-1", resp.RequestID)
	assert.Equal(t, "line", resp.Network)
	assert.Equal(t, statusLoaded, resp.Status)
	assert.Equal(t, &mediation.Banner, resp.Size)
	assert.Nil(t, resp.Error)
	assert.Empty(t, resp.Events)
	assert.True(t, banner.destroyed)
}

func TestLoadBannerFailure(t *testing.T) {
	adError := errortypes.NewAdError(line.SDKErrorDomain, 3, "FiveAd SDK returned a load error with code NO_FILL.", nil)
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		callback.OnFailure(adError)
		return nil
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	w := post(validRequest)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"domain":"com.five_corp.ad","code":3,"message":"FiveAd SDK returned a load error with code NO_FILL."}`, string(extractField(t, w.Body.Bytes(), "error")))
	resp := decodeResponse(t, w)
	assert.Equal(t, statusFailed, resp.Status)
	assert.Nil(t, resp.Size)
}

func extractField(t *testing.T, body []byte, field string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	return fields[field]
}

func TestLoadBannerTimeout(t *testing.T) {
	banner := &fakeBanner{size: mediation.Banner}
	adapter := &scriptedAdapter{load: func(mediation.AdLoadCallback) mediation.BannerAd {
		return banner
	}}
	me := &metrics.MetricsEngineMock{}
	me.On("RecordLoadOutcome", metrics.LoadLabels{Adapter: "line", Outcome: metrics.LoadTimeout}).Return().Once()
	post := newTestEndpoint(t, adapter, &fakeValidator{}, me)

	w := post(`{"network": "line", "tmax": 10, "ad_size": {"w": 320, "h": 50}}`)

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, statusTimeout, resp.Status)
	if assert.NotNil(t, resp.Error) {
		assert.Equal(t, HostErrorDomain, resp.Error.Domain)
		assert.Equal(t, errortypes.TimeoutErrorCode, resp.Error.Code)
	}
	assert.True(t, banner.destroyed)
	me.AssertExpectations(t)
}

func TestLoadBannerSimulatesInteraction(t *testing.T) {
	banner := &fakeBanner{size: mediation.Banner}
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		banner.events = callback.OnSuccess(banner)
		return banner
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	w := post(`{
		"network": "line",
		"ad_size": {"w": 320, "h": 50},
		"simulate": ["impression", "click"]
	}`)

	resp := decodeResponse(t, w)
	assert.Equal(t, statusLoaded, resp.Status)
	assert.Equal(t, []string{eventImpression, eventClicked, eventLeftApplication}, resp.Events)
	assert.Empty(t, resp.Warnings)
}

// delayedBanner delivers simulated impressions from another goroutine, the way an SDK
// reports them some time after the interaction.
type delayedBanner struct {
	fakeBanner
}

func (b *delayedBanner) View() mediation.View { return b }

func (b *delayedBanner) Impression() {
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.events.ReportAdImpression()
	}()
}

func TestLoadBannerSimulatedImpressionAfterAutoImpression(t *testing.T) {
	banner := &delayedBanner{fakeBanner{size: mediation.Banner}}
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		banner.events = callback.OnSuccess(banner)
		banner.events.ReportAdImpression()
		return banner
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	resp := decodeResponse(t, post(`{"network": "line", "ad_size": {"w": 320, "h": 50}, "simulate": ["impression"]}`))

	assert.Equal(t, statusLoaded, resp.Status)
	assert.Equal(t, []string{eventImpression, eventImpression}, resp.Events)
	assert.Empty(t, resp.Warnings)
}

type plainBanner struct{}

func (plainBanner) View() mediation.View { return plainBanner{} }
func (plainBanner) LogicalWidth() int    { return 320 }
func (plainBanner) LogicalHeight() int   { return 50 }

func TestLoadBannerSimulationUnsupported(t *testing.T) {
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		callback.OnSuccess(plainBanner{})
		return plainBanner{}
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	resp := decodeResponse(t, post(`{"network": "line", "ad_size": {"w": 320, "h": 50}, "simulate": ["click"]}`))

	assert.Equal(t, statusLoaded, resp.Status)
	assert.Len(t, resp.Warnings, 1)
}

func TestLoadBannerBuildsConfiguration(t *testing.T) {
	adapter := &scriptedAdapter{load: func(callback mediation.AdLoadCallback) mediation.BannerAd {
		callback.OnFailure(errortypes.NewAdError(line.ErrorDomain, 101, "missing", nil))
		return nil
	}}
	post := newTestEndpoint(t, adapter, &fakeValidator{}, &metrics.NilMetricsEngine{})

	resp := decodeResponse(t, post(`{
		"network": "line",
		"ad_size": {"w": 300, "h": 250},
		"context": {"density": 2.0, "package_name": "com.example.app"},
		"is_testing": true,
		"tag_for_child_directed_treatment": 1,
		"max_ad_content_rating": "G",
		"server_parameters": {"application_id": "app", "slot_id": "slot", "ignored": 7}
	}`))

	assert.Equal(t, []string{"request.server_parameters.ignored is a number, not a string, and was ignored"}, resp.Warnings)

	assert.Equal(t, mediation.BannerAdConfiguration{
		Context:                         mediation.RenderContext{Density: 2, PackageName: "com.example.app"},
		ServerParameters:                mediation.ServerParameters{"application_id": "app", "slot_id": "slot"},
		IsTesting:                       true,
		TaggedForChildDirectedTreatment: mediation.TagTrue,
		TaggedForUnderAgeOfConsent:      mediation.TagUnspecified,
		MaxAdContentRating:              "G",
		AdSize:                          mediation.MediumRectangle,
	}, adapter.lastConfig)
}

func TestLoadBannerBadRequests(t *testing.T) {
	testCases := []struct {
		description string
		body        string
		validator   *fakeValidator
		expected    string
	}{
		{
			description: "not json",
			body:        `{`,
			expected:    "Invalid request format:",
		},
		{
			description: "missing network",
			body:        `{"ad_size": {"w": 320, "h": 50}}`,
			expected:    `request missing required field: "network"`,
		},
		{
			description: "unknown network",
			body:        `{"network": "other"}`,
			expected:    `request.network "other" is not a known adapter`,
		},
		{
			description: "negative tmax",
			body:        `{"network": "line", "tmax": -1}`,
			expected:    "request.tmax must be nonnegative. Got -1",
		},
		{
			description: "unknown simulation",
			body:        `{"network": "line", "simulate": ["swipe"]}`,
			expected:    `request.simulate[0] must be "click" or "impression". Got "swipe"`,
		},
		{
			description: "server parameters not an object",
			body:        `{"network": "line", "server_parameters": ["app"]}`,
			expected:    "request.server_parameters must be an object",
		},
		{
			description: "server parameters rejected by schema",
			body:        validRequest,
			validator:   &fakeValidator{err: errors.New("slot_id: String length must be greater than or equal to 1")},
			expected:    "request.server_parameters failed validation for line",
		},
		{
			description: "body too large",
			body:        `{"network": "line", "watermark": "` + strings.Repeat("x", 5000) + `"}`,
			expected:    "failed to read the request body",
		},
	}

	for _, test := range testCases {
		adapter := &scriptedAdapter{}
		validator := test.validator
		if validator == nil {
			validator = &fakeValidator{}
		}
		post := newTestEndpoint(t, adapter, validator, &metrics.NilMetricsEngine{})

		w := post(test.body)

		assert.Equal(t, http.StatusBadRequest, w.Code, test.description)
		assert.Contains(t, w.Body.String(), test.expected, test.description)
	}
}

func TestLoadBannerRequestIDFailure(t *testing.T) {
	endpoint, err := NewEndpoint(fakeUUIDGenerator{err: errors.New("no entropy")}, map[string]mediation.Adapter{"line": &scriptedAdapter{}}, &fakeValidator{}, newTestConfig(), &metrics.NilMetricsEngine{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodPost, "/mediation/banner", strings.NewReader(validRequest)), nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoadBannerWithLineAdapter(t *testing.T) {
	sdk := sandbox.New(sandbox.Options{
		Scenarios: map[string]sandbox.Scenario{
			"no-fill": {Error: fivead.ErrorNoFill},
		},
	})
	t.Cleanup(sdk.Close)
	validator, err := mediation.NewParamsValidator("../../static/mediation-params")
	require.NoError(t, err)
	me := &metrics.MetricsEngineMock{}
	me.On("RecordLoadRequest", line.AdapterName).Return()
	me.On("RecordLoadOutcome", mock.Anything).Return()
	me.On("RecordLoadTime", line.AdapterName, mock.Anything).Return()
	me.On("RecordDisplayEvent", line.AdapterName, mock.Anything).Return()
	post := newTestEndpoint(t, line.NewAdapter(sdk, line.WithMetrics(me)), validator, me)

	resp := decodeResponse(t, post(`{
		"network": "line",
		"ad_size": {"w": 320, "h": 50},
		"server_parameters": {"application_id": "app", "slot_id": "slot"},
		"simulate": ["click"]
	}`))
	assert.Equal(t, statusLoaded, resp.Status)
	assert.Equal(t, &mediation.Banner, resp.Size)
	assert.Equal(t, []string{eventClicked, eventLeftApplication}, resp.Events)

	resp = decodeResponse(t, post(`{
		"network": "line",
		"ad_size": {"w": 320, "h": 50},
		"server_parameters": {"application_id": "app", "slot_id": "no-fill"}
	}`))
	assert.Equal(t, statusFailed, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, line.SDKErrorDomain, resp.Error.Domain)
	assert.Equal(t, 3, resp.Error.Code)

	me.AssertCalled(t, "RecordLoadOutcome", metrics.LoadLabels{Adapter: line.AdapterName, Outcome: metrics.LoadSuccess})
	me.AssertCalled(t, "RecordLoadOutcome", metrics.LoadLabels{Adapter: line.AdapterName, Outcome: metrics.LoadNetworkError, ErrorCode: 3})
}
