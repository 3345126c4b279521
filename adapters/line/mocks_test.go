package line

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
	"github.com/prebid/prebid-mediation/logger"
	"github.com/prebid/prebid-mediation/mediation"
)

type mockSdkFactory struct {
	mock.Mock
}

func (m *mockSdkFactory) CreateFiveAdConfig(appID string) fivead.Config {
	args := m.Called(appID)
	return args.Get(0).(fivead.Config)
}

func (m *mockSdkFactory) CreateFiveAdCustomLayout(rc mediation.RenderContext, slotID string, widthInPixels int) fivead.CustomLayout {
	args := m.Called(rc, slotID, widthInPixels)
	layout, _ := args.Get(0).(fivead.CustomLayout)
	return layout
}

type mockSDK struct {
	mock.Mock
}

func (m *mockSDK) Initialize(config fivead.Config) error {
	args := m.Called(config)
	return args.Error(0)
}

func (m *mockSDK) IsInitialized() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockSDK) Version() string {
	args := m.Called()
	return args.String(0)
}

func (m *mockSDK) NewCustomLayout(slotID string, widthInPixels int) fivead.CustomLayout {
	args := m.Called(slotID, widthInPixels)
	return args.Get(0).(fivead.CustomLayout)
}

type mockCustomLayout struct {
	mock.Mock
}

// newMockCustomLayout returns a layout reporting size as its logical size.
func newMockCustomLayout(size mediation.AdSize) *mockCustomLayout {
	layout := &mockCustomLayout{}
	layout.On("SlotID").Return(testSlotID).Maybe()
	layout.On("LogicalWidth").Return(size.Width).Maybe()
	layout.On("LogicalHeight").Return(size.Height).Maybe()
	layout.On("SetViewEventListener", mock.Anything).Return().Maybe()
	return layout
}

func (m *mockCustomLayout) SlotID() string {
	return m.Called().String(0)
}

func (m *mockCustomLayout) LogicalWidth() int {
	return m.Called().Int(0)
}

func (m *mockCustomLayout) LogicalHeight() int {
	return m.Called().Int(0)
}

func (m *mockCustomLayout) SetLoadListener(listener fivead.LoadListener) {
	m.Called(listener)
}

func (m *mockCustomLayout) SetViewEventListener(listener fivead.ViewEventListener) {
	m.Called(listener)
}

func (m *mockCustomLayout) LoadAdAsync() {
	m.Called()
}

func (m *mockCustomLayout) EnableSound(enabled bool) {
	m.Called(enabled)
}

type mockAdLoadCallback struct {
	mock.Mock
}

func (m *mockAdLoadCallback) OnSuccess(ad mediation.BannerAd) mediation.BannerAdCallback {
	args := m.Called(ad)
	if events, ok := args.Get(0).(mediation.BannerAdCallback); ok {
		return events
	}
	return nil
}

func (m *mockAdLoadCallback) OnFailure(err *errortypes.AdError) {
	m.Called(err)
}

// capturedError returns the single AdError passed to OnFailure.
func (m *mockAdLoadCallback) capturedError() *errortypes.AdError {
	for _, call := range m.Calls {
		if call.Method == "OnFailure" {
			return call.Arguments.Get(0).(*errortypes.AdError)
		}
	}
	return nil
}

// recordingBannerCallback records display callbacks in the order they arrive.
type recordingBannerCallback struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingBannerCallback) ReportAdClicked()     { r.record("reportAdClicked") }
func (r *recordingBannerCallback) ReportAdImpression()  { r.record("reportAdImpression") }
func (r *recordingBannerCallback) OnAdLeftApplication() { r.record("onAdLeftApplication") }

func (r *recordingBannerCallback) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingBannerCallback) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type mockInitializationCallback struct {
	mock.Mock
}

func (m *mockInitializationCallback) OnInitializationSucceeded() {
	m.Called()
}

func (m *mockInitializationCallback) OnInitializationFailed(message string) {
	m.Called(message)
}

// recordingLogger keeps the warnings logged while it is the default logger.
type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Debugf(string, ...any) {}
func (r *recordingLogger) Infof(string, ...any)  {}
func (r *recordingLogger) Warnf(msg string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(msg, args...))
}
func (r *recordingLogger) Errorf(string, ...any) {}
func (r *recordingLogger) Fatalf(string, ...any) {}

func captureWarnings(t *testing.T) *recordingLogger {
	rec := &recordingLogger{}
	prev := logger.SetDefault(rec)
	t.Cleanup(func() { logger.SetDefault(prev) })
	return rec
}
