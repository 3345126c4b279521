// Package banner implements the /mediation/banner endpoint. It plays the part of a
// mediation host: it drives an adapter through one banner load and reports what the
// adapter told it.
package banner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"

	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/mediation"
	"github.com/prebid/prebid-mediation/metrics"
	"github.com/prebid/prebid-mediation/util/uuidutil"
)

type loadStatus string

// HostErrorDomain is used for errors raised by the endpoint itself rather than an adapter.
const HostErrorDomain = "org.prebid.mediation"

const (
	statusLoaded  loadStatus = "loaded"
	statusFailed  loadStatus = "failed"
	statusTimeout loadStatus = "timeout"
)

// Simulated interactions, applied in order once the banner has loaded.
const (
	simulateClick      = "click"
	simulateImpression = "impression"
)

// NewEndpoint returns the POST /mediation/banner handler.
func NewEndpoint(uuidGenerator uuidutil.UUIDGenerator, adapters map[string]mediation.Adapter, validator mediation.ParamsValidator, cfg *config.Configuration, me metrics.MetricsEngine) (httprouter.Handle, error) {
	if uuidGenerator == nil || len(adapters) == 0 || validator == nil || cfg == nil || me == nil {
		return nil, errors.New("NewEndpoint requires non-nil arguments.")
	}

	return httprouter.Handle((&endpointDeps{uuidGenerator, adapters, validator, cfg, me}).LoadBanner), nil
}

type endpointDeps struct {
	uuidGenerator   uuidutil.UUIDGenerator
	adapters        map[string]mediation.Adapter
	paramsValidator mediation.ParamsValidator
	cfg             *config.Configuration
	metricsEngine   metrics.MetricsEngine
}

type loadRequest struct {
	Network string `json:"network"`
	// TMax optionally shortens the configured load timeout, in milliseconds.
	TMax                         int64                   `json:"tmax"`
	AdSize                       mediation.AdSize        `json:"ad_size"`
	Context                      mediation.RenderContext `json:"context"`
	IsTesting                    bool                    `json:"is_testing"`
	TagForChildDirectedTreatment *mediation.Tag          `json:"tag_for_child_directed_treatment"`
	TagForUnderAgeOfConsent      *mediation.Tag          `json:"tag_for_under_age_of_consent"`
	MaxAdContentRating           string                  `json:"max_ad_content_rating"`
	Watermark                    string                  `json:"watermark"`
	Simulate                     []string                `json:"simulate"`

	serverParameters mediation.ServerParameters
}

type loadResponse struct {
	RequestID string              `json:"request_id"`
	Network   string              `json:"network"`
	Status    loadStatus          `json:"status"`
	Size      *mediation.AdSize   `json:"size,omitempty"`
	Error     *errortypes.AdError `json:"error,omitempty"`
	Events    []string            `json:"events"`
	Warnings  []string            `json:"warnings,omitempty"`
}

// interactiveView is implemented by views that can simulate user interaction.
type interactiveView interface {
	Click()
	Impression()
}

type destroyable interface {
	Destroy()
}

func (deps *endpointDeps) LoadBanner(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID, err := deps.uuidGenerator.Generate()
	if err != nil {
		glog.Errorf("Failed to generate a request ID: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	req, adapter, errL := deps.parseRequest(r)
	if errortypes.ContainsFatalError(errL) {
		w.WriteHeader(http.StatusBadRequest)
		for _, err := range errortypes.FatalOnly(errL) {
			w.Write([]byte(fmt.Sprintf("Invalid request format: %s\n", err.Error())))
		}
		return
	}
	warnings := errortypes.WarningOnly(errL)

	timeout := deps.cfg.Mediation.LoadTimeout()
	if req.TMax > 0 && time.Duration(req.TMax)*time.Millisecond < timeout {
		timeout = time.Duration(req.TMax) * time.Millisecond
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	host := newHostCallback()
	bannerAd := adapter.LoadBannerAd(req.bannerAdConfiguration(), host)
	if d, ok := bannerAd.(destroyable); ok {
		defer d.Destroy()
	}

	resp := loadResponse{
		RequestID: requestID,
		Network:   req.Network,
	}
	httpStatus := http.StatusOK

	select {
	case outcome := <-host.outcome:
		if outcome.err != nil {
			resp.Status = statusFailed
			resp.Error = outcome.err
			break
		}
		resp.Status = statusLoaded
		view := outcome.ad.View()
		resp.Size = &mediation.AdSize{Width: view.LogicalWidth(), Height: view.LogicalHeight()}
		warnings = append(warnings, deps.simulate(req.Simulate, view, host, deadline.C)...)
	case <-deadline.C:
		resp.Status = statusTimeout
		message := fmt.Sprintf("No load outcome from %s within %v.", req.Network, timeout)
		resp.Error = errortypes.NewAdError(HostErrorDomain, errortypes.TimeoutErrorCode, message, &errortypes.Timeout{Message: message})
		httpStatus = http.StatusGatewayTimeout
		deps.metricsEngine.RecordLoadOutcome(metrics.LoadLabels{
			Adapter: req.Network,
			Outcome: metrics.LoadTimeout,
		})
		glog.Warningf("Request %s: %s banner load timed out after %v", resp.RequestID, req.Network, timeout)
	case <-r.Context().Done():
		glog.V(1).Infof("Request %s: client went away before the %s banner loaded", resp.RequestID, req.Network)
		return
	}
	resp.Events = host.Events()
	for _, warning := range warnings {
		resp.Warnings = append(resp.Warnings, warning.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		glog.Errorf("Failed to send /mediation/banner response: %v", err)
	}
}

// simulate plays the requested interactions against a loaded view and waits for the host
// callbacks each one should produce. Simulation stops at the first one that did not arrive.
func (deps *endpointDeps) simulate(actions []string, view mediation.View, host *hostCallback, deadline <-chan time.Time) []error {
	if len(actions) == 0 {
		return nil
	}
	interactive, ok := view.(interactiveView)
	if !ok {
		return []error{&errortypes.Warning{
			Message:     "the loaded ad view does not support simulated interaction",
			WarningCode: errortypes.SimulationWarningCode,
		}}
	}

	for _, action := range actions {
		expect, trigger := eventImpression, interactive.Impression
		if action == simulateClick {
			expect, trigger = eventLeftApplication, interactive.Click
		}
		// An earlier callback of the same kind, such as an automatic impression, must not
		// satisfy this action.
		before, _ := host.count(expect)
		trigger()
		if !host.awaitCount(expect, before+1, deadline) {
			return []error{&errortypes.Warning{
				Message:     fmt.Sprintf("simulated %s produced no %s callback in time", action, expect),
				WarningCode: errortypes.SimulationWarningCode,
			}}
		}
	}
	return nil
}

func (deps *endpointDeps) parseRequest(httpRequest *http.Request) (req *loadRequest, adapter mediation.Adapter, errs []error) {
	var reader io.Reader = httpRequest.Body
	if deps.cfg.Mediation.MaxRequestSize > 0 {
		reader = http.MaxBytesReader(nil, httpRequest.Body, deps.cfg.Mediation.MaxRequestSize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		errs = []error{fmt.Errorf("failed to read the request body: %v", err)}
		return
	}

	req = &loadRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		errs = []error{err}
		return
	}
	if req.Network == "" {
		errs = append(errs, errors.New("request missing required field: \"network\""))
	} else if adapter = deps.adapters[req.Network]; adapter == nil {
		errs = append(errs, fmt.Errorf("request.network %q is not a known adapter", req.Network))
	}
	if req.TMax < 0 {
		errs = append(errs, fmt.Errorf("request.tmax must be nonnegative. Got %d", req.TMax))
	}
	for i, action := range req.Simulate {
		if action != simulateClick && action != simulateImpression {
			errs = append(errs, fmt.Errorf("request.simulate[%d] must be %q or %q. Got %q", i, simulateClick, simulateImpression, action))
		}
	}
	if len(errs) > 0 {
		return
	}

	params, err := extractServerParameters(body)
	if err != nil {
		errs = []error{err}
		return
	}
	if err := deps.paramsValidator.Validate(req.Network, params); err != nil {
		errs = []error{fmt.Errorf("request.server_parameters failed validation for %s: %v", req.Network, err)}
		return
	}
	req.serverParameters, errs = decodeServerParameters(params)
	return
}

// extractServerParameters returns the raw server_parameters object, or an empty object when
// the request has none.
func extractServerParameters(body []byte) (json.RawMessage, error) {
	value, dataType, _, err := jsonparser.Get(body, "server_parameters")
	if dataType == jsonparser.NotExist {
		return json.RawMessage("{}"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("request.server_parameters is malformed: %v", err)
	}
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("request.server_parameters must be an object. Got %s", dataType)
	}
	return json.RawMessage(value), nil
}

// decodeServerParameters keeps the string valued entries of a server_parameters object.
// Every other entry is dropped with a warning.
func decodeServerParameters(raw json.RawMessage) (mediation.ServerParameters, []error) {
	params := make(mediation.ServerParameters)
	var warnings []error
	err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			warnings = append(warnings, &errortypes.Warning{
				Message:     fmt.Sprintf("request.server_parameters.%s is a %s, not a string, and was ignored", key, dataType),
				WarningCode: errortypes.IgnoredServerParameterWarningCode,
			})
			return nil
		}
		parsed, err := jsonparser.ParseString(value)
		if err != nil {
			return err
		}
		params[string(key)] = parsed
		return nil
	})
	if err != nil {
		return nil, []error{fmt.Errorf("request.server_parameters is malformed: %v", err)}
	}
	return params, warnings
}

func (req *loadRequest) bannerAdConfiguration() mediation.BannerAdConfiguration {
	return mediation.BannerAdConfiguration{
		Context:                         req.Context,
		ServerParameters:                req.serverParameters,
		IsTesting:                       req.IsTesting,
		TaggedForChildDirectedTreatment: tagOrUnspecified(req.TagForChildDirectedTreatment),
		TaggedForUnderAgeOfConsent:      tagOrUnspecified(req.TagForUnderAgeOfConsent),
		MaxAdContentRating:              req.MaxAdContentRating,
		AdSize:                          req.AdSize,
		Watermark:                       req.Watermark,
	}
}

func tagOrUnspecified(tag *mediation.Tag) mediation.Tag {
	if tag == nil {
		return mediation.TagUnspecified
	}
	return *tag
}
