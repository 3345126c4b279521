package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/viper"

	"github.com/prebid/prebid-mediation/errortypes"
	"github.com/prebid/prebid-mediation/fivead"
)

// Configuration specifies the static application config.
type Configuration struct {
	ExternalURL string `mapstructure:"external_url"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	AdminPort   int    `mapstructure:"admin_port"`
	EnableGzip  bool   `mapstructure:"enable_gzip"`
	// StatusResponse is the string which will be returned by the /status endpoint when things are OK.
	// If empty, it will return a 204 with no content.
	StatusResponse string    `mapstructure:"status_response"`
	Metrics        Metrics   `mapstructure:"metrics"`
	Mediation      Mediation `mapstructure:"mediation"`
	Line           Line      `mapstructure:"line"`
	Sandbox        Sandbox   `mapstructure:"sandbox"`
}

// Metrics configures the metrics backends. Either, both or none may be enabled.
type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
	GoMetrics  GoMetrics         `mapstructure:"go_metrics"`
}

// PrometheusMetrics configures the prometheus scrape endpoint. A zero Port disables it.
type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

// GoMetrics configures the in-process go-metrics registry. When LogIntervalSeconds is
// positive the registry is periodically written to the application log.
type GoMetrics struct {
	Enabled            bool   `mapstructure:"enabled"`
	Prefix             string `mapstructure:"prefix"`
	LogIntervalSeconds int    `mapstructure:"log_interval_seconds"`
}

// Mediation configures the host facing /mediation endpoints.
type Mediation struct {
	ParamsSchemaDir string `mapstructure:"params_schema_dir"`
	AdapterInfoDir  string `mapstructure:"adapter_info_dir"`
	// LoadTimeoutMillis bounds how long an endpoint waits for an adapter's load outcome.
	LoadTimeoutMillis int   `mapstructure:"load_timeout_ms"`
	MaxRequestSize    int64 `mapstructure:"max_request_size"`
	// AdSources are handed to each adapter's Initialize at startup.
	AdSources []AdSource `mapstructure:"ad_sources"`
}

// AdSource is one ad source configured for a network, as a mediation host would know it.
type AdSource struct {
	Network          string            `mapstructure:"network"`
	Format           string            `mapstructure:"format"`
	ServerParameters map[string]string `mapstructure:"server_parameters"`
}

func (cfg *Mediation) LoadTimeout() time.Duration {
	return time.Duration(cfg.LoadTimeoutMillis) * time.Millisecond
}

// Line configures the LINE (FiveAd) adapter.
type Line struct {
	AdapterVersion string `mapstructure:"adapter_version"`
	// TestMode forces every FiveAd request into test mode, regardless of the host's testing flag.
	TestMode    bool `mapstructure:"test_mode"`
	EnableSound bool `mapstructure:"enable_sound"`
}

// Sandbox configures the in-process FiveAd SDK the server runs against.
type Sandbox struct {
	SDKVersion    string            `mapstructure:"sdk_version"`
	LatencyMillis int               `mapstructure:"latency_ms"`
	Density       float64           `mapstructure:"density"`
	Default       SandboxScenario   `mapstructure:"default"`
	Slots         []SandboxScenario `mapstructure:"slots"`
}

func (cfg *Sandbox) Latency() time.Duration {
	return time.Duration(cfg.LatencyMillis) * time.Millisecond
}

// SandboxScenario describes how the sandbox answers loads for one slot.
type SandboxScenario struct {
	SlotID         string `mapstructure:"slot_id"`
	Width          int    `mapstructure:"width"`
	Height         int    `mapstructure:"height"`
	Error          string `mapstructure:"error"`
	AutoImpression bool   `mapstructure:"auto_impression"`
}

// ErrorCode resolves the scenario's symbolic error name. It returns 0 when no error is set.
func (s *SandboxScenario) ErrorCode() (fivead.ErrorCode, error) {
	if s.Error == "" {
		return 0, nil
	}
	code, ok := fivead.ParseErrorCode(strings.ToUpper(s.Error))
	if !ok {
		return 0, fmt.Errorf("unknown FiveAd error code %q", s.Error)
	}
	return code, nil
}

func (cfg *Configuration) validate() []error {
	var errs []error
	errs = validatePort(errs, "port", cfg.Port)
	errs = validatePort(errs, "admin_port", cfg.AdminPort)
	if cfg.Port == cfg.AdminPort {
		errs = append(errs, fmt.Errorf("port and admin_port must differ, both are %d", cfg.Port))
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		errs = validatePort(errs, "metrics.prometheus.port", cfg.Metrics.Prometheus.Port)
		if cfg.Metrics.Prometheus.TimeoutMillisRaw <= 0 {
			errs = append(errs, errors.New("metrics.prometheus.timeout_ms must be positive"))
		}
	}
	if cfg.Mediation.LoadTimeoutMillis <= 0 {
		errs = append(errs, fmt.Errorf("mediation.load_timeout_ms must be positive, got %d", cfg.Mediation.LoadTimeoutMillis))
	}
	if cfg.Mediation.MaxRequestSize < 0 {
		errs = append(errs, fmt.Errorf("mediation.max_request_size must not be negative, got %d", cfg.Mediation.MaxRequestSize))
	}
	for i, source := range cfg.Mediation.AdSources {
		if source.Network == "" {
			errs = append(errs, fmt.Errorf("mediation.ad_sources[%d].network is required", i))
		}
	}
	return cfg.Sandbox.validate(errs)
}

func (cfg *Sandbox) validate(errs []error) []error {
	if cfg.LatencyMillis < 0 {
		errs = append(errs, fmt.Errorf("sandbox.latency_ms must not be negative, got %d", cfg.LatencyMillis))
	}
	if cfg.Density < 0 {
		errs = append(errs, fmt.Errorf("sandbox.density must not be negative, got %v", cfg.Density))
	}
	if _, err := cfg.Default.ErrorCode(); err != nil {
		errs = append(errs, fmt.Errorf("sandbox.default: %v", err))
	}
	seen := make(map[string]struct{}, len(cfg.Slots))
	for i, slot := range cfg.Slots {
		if slot.SlotID == "" {
			errs = append(errs, fmt.Errorf("sandbox.slots[%d].slot_id is required", i))
		} else if _, dup := seen[slot.SlotID]; dup {
			errs = append(errs, fmt.Errorf("sandbox.slots[%d].slot_id %q is duplicated", i, slot.SlotID))
		}
		seen[slot.SlotID] = struct{}{}
		if _, err := slot.ErrorCode(); err != nil {
			errs = append(errs, fmt.Errorf("sandbox.slots[%d]: %v", i, err))
		}
		if (slot.Width == 0) != (slot.Height == 0) {
			errs = append(errs, fmt.Errorf("sandbox.slots[%d] must set both width and height, or neither", i))
		}
	}
	return errs
}

func validatePort(errs []error, name string, port int) []error {
	if port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("%s must be in the range 1-65535, got %d", name, port))
	}
	return errs
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	glog.V(1).Infof("Resolved configuration: %+v", c)

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

// SetupViper sets the defaults, the config file lookup and the environment bindings.
// Environment variables override file values and are named PBM_<KEY> with "." replaced by "_",
// for example PBM_MEDIATION_LOAD_TIMEOUT_MS.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("external_url", "http://localhost:8000")
	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")

	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("metrics.go_metrics.enabled", false)
	v.SetDefault("metrics.go_metrics.prefix", "prebidmediation.")
	v.SetDefault("metrics.go_metrics.log_interval_seconds", 0)

	v.SetDefault("mediation.params_schema_dir", "static/mediation-params")
	v.SetDefault("mediation.adapter_info_dir", "static/adapter-info")
	v.SetDefault("mediation.load_timeout_ms", 5000)
	v.SetDefault("mediation.max_request_size", 64*1024)
	v.SetDefault("mediation.ad_sources", []AdSource{})

	v.SetDefault("line.adapter_version", "2.8.20240827.0")
	v.SetDefault("line.test_mode", false)
	v.SetDefault("line.enable_sound", false)

	v.SetDefault("sandbox.sdk_version", "2.8.20240827")
	v.SetDefault("sandbox.latency_ms", 100)
	v.SetDefault("sandbox.density", 1.0)
	v.SetDefault("sandbox.default.auto_impression", true)
	v.SetDefault("sandbox.slots", []SandboxScenario{})

	v.SetEnvPrefix("PBM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Warningf("Viper could not read config file %q: %v. Using defaults and environment.", filename, err)
		}
	}
}
