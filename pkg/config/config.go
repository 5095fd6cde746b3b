// Package config loads and validates runtime configuration for the
// rjsgo CLI and embedding host: GC tuning, diagnostics storage and
// telemetry export. Layering follows viper's usual precedence (flags >
// env > config file > defaults).
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	apperrors "github.com/rjsgo/rjsgo/pkg/errors"
)

// GcConfig mirrors internal/engine/gc.Opts in a form viper/mapstructure
// can populate from YAML, env vars or flags.
type GcConfig struct {
	InitialHeapBytes int     `mapstructure:"initial_heap_bytes"`
	InitGC           float64 `mapstructure:"init_gc"`
	SlowGrowthFactor float64 `mapstructure:"slow_growth_factor"`
	FastGrowthFactor float64 `mapstructure:"fast_growth_factor"`
}

// DiagnosticsConfig controls the opt-in GC history recorder and heap
// snapshot storage backend; none of this is consulted by the running
// engine, it exists purely for host-side observability.
type DiagnosticsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DatabaseDSN string `mapstructure:"database_dsn"`
	SnapshotDir string `mapstructure:"snapshot_dir"`

	COSEnabled   bool   `mapstructure:"cos_enabled"`
	COSBucketURL string `mapstructure:"cos_bucket_url"`
	COSSecretID  string `mapstructure:"cos_secret_id"`
	COSSecretKey string `mapstructure:"cos_secret_key"`
}

// TelemetryConfig controls the optional OTLP trace exporter.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	UseHTTP        bool    `mapstructure:"use_http"`
	SampleFraction float64 `mapstructure:"sample_fraction"`
}

// CLIConfig controls host process behavior not specific to any one
// component.
type CLIConfig struct {
	Verbose      bool   `mapstructure:"verbose"`
	PprofEnabled bool   `mapstructure:"pprof_enabled"`
	PprofFile    string `mapstructure:"pprof_file"`
}

// Config is the top-level configuration tree.
type Config struct {
	Gc          GcConfig           `mapstructure:"gc"`
	Diagnostics DiagnosticsConfig  `mapstructure:"diagnostics"`
	Telemetry   TelemetryConfig    `mapstructure:"telemetry"`
	CLI         CLIConfig          `mapstructure:"cli"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gc.initial_heap_bytes", 16*1024*1024)
	v.SetDefault("gc.init_gc", 0.95)
	v.SetDefault("gc.slow_growth_factor", 1.5)
	v.SetDefault("gc.fast_growth_factor", 3.0)

	v.SetDefault("diagnostics.enabled", false)
	v.SetDefault("diagnostics.database_dsn", "rjsgo-diagnostics.db")
	v.SetDefault("diagnostics.snapshot_dir", "./snapshots")
	v.SetDefault("diagnostics.cos_enabled", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "rjsgo")
	v.SetDefault("telemetry.use_http", false)
	v.SetDefault("telemetry.sample_fraction", 1.0)

	v.SetDefault("cli.verbose", false)
	v.SetDefault("cli.pprof_enabled", false)
}

// Load reads configuration from defaults, the file at path (if
// non-empty) and the environment (RJSGO_* vars). Viper gives environment
// values precedence over the file, and the file over defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RJSGO")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, apperrors.Wrap(err, apperrors.CodeConfig, "reading config file "+path)
			}
		}
	}

	return decode(v)
}

// LoadFromReader loads YAML configuration from r, used by tests and by
// embedders that keep configuration outside the filesystem.
func LoadFromReader(r io.Reader) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, "reading config stream")
	}
	if err := v.ReadConfig(bytes.NewReader(buf)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, "parsing config stream")
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfig, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the same constraints internal/engine/gc.Opts
// enforces, plus basic sanity on the other sections, so misconfiguration
// is caught before a heap is constructed.
func (c *Config) Validate() error {
	if c.Gc.FastGrowthFactor <= 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc.fast_growth_factor must be greater than 1")
	}
	if c.Gc.SlowGrowthFactor <= 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc.slow_growth_factor must be greater than 1")
	}
	if c.Gc.InitGC > 1.0 {
		return apperrors.New(apperrors.CodeConfig, "gc.init_gc must be less than or equal to 1")
	}
	if c.Gc.InitialHeapBytes <= 0 {
		return apperrors.New(apperrors.CodeConfig, "gc.initial_heap_bytes must be positive")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		return apperrors.New(apperrors.CodeConfig, "telemetry.otlp_endpoint is required when telemetry.enabled is true")
	}
	if c.Diagnostics.COSEnabled && c.Diagnostics.COSBucketURL == "" {
		return apperrors.New(apperrors.CodeConfig, "diagnostics.cos_bucket_url is required when diagnostics.cos_enabled is true")
	}
	return nil
}

func (c CLIConfig) String() string {
	return fmt.Sprintf("verbose=%v pprof=%v", c.Verbose, c.PprofEnabled)
}
