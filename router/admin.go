package router

import (
	"net/http"
	"net/http/pprof"

	gometrics "github.com/rcrowley/go-metrics"

	"github.com/prebid/prebid-mediation/endpoints"
	metricsConf "github.com/prebid/prebid-mediation/metrics/config"
	"github.com/prebid/prebid-mediation/version"
)

// Admin returns the handler for the admin server: pprof, the build version and, when
// enabled, a snapshot of the go-metrics registry.
func Admin(metricsEngine *metricsConf.DetailedMetricsEngine) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/version", endpoints.NewVersionEndpoint(version.Ver, version.Rev))
	if metricsEngine != nil && metricsEngine.GoMetrics != nil {
		registry := metricsEngine.GoMetrics.MetricsRegistry
		mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			gometrics.WriteJSONOnce(registry, w)
		})
	}
	return mux
}
