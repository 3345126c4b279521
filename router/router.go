package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/golang/glog"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/prebid/prebid-mediation/adapters/line"
	"github.com/prebid/prebid-mediation/config"
	"github.com/prebid/prebid-mediation/endpoints"
	"github.com/prebid/prebid-mediation/endpoints/banner"
	"github.com/prebid/prebid-mediation/endpoints/info"
	"github.com/prebid/prebid-mediation/fivead/sandbox"
	"github.com/prebid/prebid-mediation/mediation"
	metricsConf "github.com/prebid/prebid-mediation/metrics/config"
	"github.com/prebid/prebid-mediation/util/uuidutil"
	"github.com/prebid/prebid-mediation/version"
)

// NewJsonDirectoryServer is used to serve .json files from a directory as a single blob. For example,
// given a directory containing the files "a.json" and "b.json", this returns a Handle which serves JSON like:
//
//	{
//	  "a": { ... content from the file a.json ... },
//	  "b": { ... content from the file b.json ... }
//	}
//
// Only networks with a registered adapter are served.
func NewJsonDirectoryServer(validator mediation.ParamsValidator, networks []string) (httprouter.Handle, error) {
	data := make(map[string]json.RawMessage, len(networks))
	for _, network := range networks {
		schema := validator.Schema(network)
		if schema == "" {
			return nil, fmt.Errorf("no params schema exists for adapter %s", network)
		}
		data[network] = json.RawMessage(schema)
	}

	response, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal adapter param JSON-schema: %v", err)
	}

	return func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Add("Content-Type", "application/json")
		w.Write(response)
	}, nil
}

type NoCache struct {
	Handler http.Handler
}

func (m NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Add("Pragma", "no-cache")
	w.Header().Add("Expires", "0")
	m.Handler.ServeHTTP(w, r)
}

// Router serves the mediation endpoints and owns the adapters behind them.
type Router struct {
	*httprouter.Router
	MetricsEngine   *metricsConf.DetailedMetricsEngine
	ParamsValidator mediation.ParamsValidator
	Adapters        map[string]mediation.Adapter
	Shutdown        func()
}

func New(cfg *config.Configuration) (r *Router, err error) {
	r = &Router{
		Router: httprouter.New(),
	}

	sdk, err := newSandboxSDK(cfg.Sandbox)
	if err != nil {
		return nil, err
	}
	r.Shutdown = sdk.Close

	r.MetricsEngine = metricsConf.NewMetricsEngine(cfg, []string{line.AdapterName})
	r.Adapters = map[string]mediation.Adapter{
		line.AdapterName: line.NewAdapter(sdk,
			line.WithMetrics(r.MetricsEngine),
			line.WithAdapterVersion(cfg.Line.AdapterVersion),
			line.WithTestMode(cfg.Line.TestMode),
			line.WithSound(cfg.Line.EnableSound),
		),
	}
	initializeAdapters(r.Adapters, cfg.Mediation.AdSources)

	r.ParamsValidator, err = mediation.NewParamsValidator(cfg.Mediation.ParamsSchemaDir)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("failed to create the mediation params validator: %v", err)
	}

	bannerEndpoint, err := banner.NewEndpoint(uuidutil.UUIDRandomGenerator{}, r.Adapters, r.ParamsValidator, cfg, r.MetricsEngine)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("failed to create the banner endpoint handler: %v", err)
	}
	paramsEndpoint, err := NewJsonDirectoryServer(r.ParamsValidator, adapterNames(r.Adapters))
	if err != nil {
		sdk.Close()
		return nil, err
	}
	adapterDetailsEndpoint, err := info.NewAdapterDetailsEndpoint(cfg.Mediation.AdapterInfoDir, r.Adapters)
	if err != nil {
		sdk.Close()
		return nil, fmt.Errorf("failed to create the adapter info endpoint handler: %v", err)
	}

	r.POST("/mediation/banner", bannerEndpoint)
	r.GET("/mediation/params", paramsEndpoint)
	r.GET("/info/adapters", info.NewAdaptersEndpoint(r.Adapters))
	r.GET("/info/adapters/:adapterName", adapterDetailsEndpoint)
	r.GET("/status", endpoints.NewStatusEndpoint(cfg.StatusResponse))
	r.HandlerFunc("GET", "/version", endpoints.NewVersionEndpoint(version.Ver, version.Rev))

	return r, nil
}

func newSandboxSDK(cfg config.Sandbox) (*sandbox.SDK, error) {
	defaultScenario, err := newScenario(cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("sandbox.default: %v", err)
	}
	scenarios := make(map[string]sandbox.Scenario, len(cfg.Slots))
	for _, slot := range cfg.Slots {
		scenario, err := newScenario(slot)
		if err != nil {
			return nil, fmt.Errorf("sandbox slot %s: %v", slot.SlotID, err)
		}
		scenarios[slot.SlotID] = scenario
	}

	return sandbox.New(sandbox.Options{
		Version:         cfg.SDKVersion,
		Latency:         cfg.Latency(),
		Density:         cfg.Density,
		Scenarios:       scenarios,
		DefaultScenario: defaultScenario,
	}), nil
}

func newScenario(cfg config.SandboxScenario) (sandbox.Scenario, error) {
	code, err := cfg.ErrorCode()
	if err != nil {
		return sandbox.Scenario{}, err
	}
	return sandbox.Scenario{
		Width:          cfg.Width,
		Height:         cfg.Height,
		Error:          code,
		AutoImpression: cfg.AutoImpression,
	}, nil
}

// initializeAdapters hands every adapter the ad sources configured for its network.
// A failed initialization is not fatal: adapters initialize again on their first load.
func initializeAdapters(adapters map[string]mediation.Adapter, sources []config.AdSource) {
	byNetwork := make(map[string][]mediation.MediationConfiguration, len(adapters))
	for _, source := range sources {
		if _, ok := adapters[source.Network]; !ok {
			glog.Warningf("Ignoring ad source for unknown network %s", source.Network)
			continue
		}
		byNetwork[source.Network] = append(byNetwork[source.Network], mediation.MediationConfiguration{
			Format:           mediation.Format(source.Format),
			ServerParameters: mediation.ServerParameters(source.ServerParameters),
		})
	}

	for name, configs := range byNetwork {
		adapters[name].Initialize(mediation.RenderContext{}, initializationLogger{network: name}, configs)
	}
}

type initializationLogger struct {
	network string
}

func (l initializationLogger) OnInitializationSucceeded() {
	glog.Infof("Adapter %s initialized", l.network)
}

func (l initializationLogger) OnInitializationFailed(message string) {
	glog.Warningf("Adapter %s failed to initialize: %s", l.network, message)
}

func adapterNames(adapters map[string]mediation.Adapter) []string {
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportCORS allows the mediation endpoints to be called from any origin. Hosts
// authenticate nothing through cookies, so credentials are allowed as well.
func SupportCORS(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowCredentials: true,
		AllowOriginFunc: func(string) bool {
			return true
		},
		AllowedHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept"}})
	return c.Handler(handler)
}
