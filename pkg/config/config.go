package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/evstack/zerog-da/da/compression"
	"github.com/evstack/zerog-da/da/zerog"
)

const (
	FlagPrefix = "zgda."

	// FlagRootDir is a flag for specifying the root directory
	FlagRootDir = "home"

	// Data Availability configuration flags

	// FlagDAURL is a flag for specifying the disperser endpoint
	FlagDAURL = FlagPrefix + "da.url"
	// FlagDADisperserRetryDelay is a flag for the delay between submission attempts
	FlagDADisperserRetryDelay = FlagPrefix + "da.disperser_retry_delay"
	// FlagDAStatusRetryDelay is a flag for the delay between status polls
	FlagDAStatusRetryDelay = FlagPrefix + "da.status_retry_delay"
	// FlagDAMaxConcurrentSubmissions bounds the submissions admitted at once
	FlagDAMaxConcurrentSubmissions = FlagPrefix + "da.max_concurrent_submissions"
	// FlagDAConnections is the number of transport channels to the disperser
	FlagDAConnections = FlagPrefix + "da.connections"
	// FlagDARequestTimeout controls the per-request timeout of DisperseBlob and RetrieveBlob
	FlagDARequestTimeout = FlagPrefix + "da.request_timeout"
	// FlagDAStatusQueryTimeout controls the per-request timeout of GetBlobStatus
	FlagDAStatusQueryTimeout = FlagPrefix + "da.status_query_timeout"
	// FlagDAMaxBlobSize rejects larger blobs before they are sent
	FlagDAMaxBlobSize = FlagPrefix + "da.max_blob_size"

	// FlagCompression enables zstd compression of published blobs
	FlagCompression = FlagPrefix + "da.compression.enabled"
	// FlagCompressionLevel is the zstd level
	FlagCompressionLevel = FlagPrefix + "da.compression.zstd_level"
	// FlagCompressionMinRatio is the minimum saving required to keep a compressed blob
	FlagCompressionMinRatio = FlagPrefix + "da.compression.min_compression_ratio"

	// Instrumentation configuration flags

	// FlagPrometheus is a flag for enabling Prometheus metrics
	FlagPrometheus = FlagPrefix + "instrumentation.prometheus"
	// FlagPrometheusListenAddr is a flag for specifying the Prometheus listen address
	FlagPrometheusListenAddr = FlagPrefix + "instrumentation.prometheus_listen_addr"
	// FlagMaxOpenConnections is a flag for specifying the maximum number of open connections
	FlagMaxOpenConnections = FlagPrefix + "instrumentation.max_open_connections"
	// FlagTracing enables OpenTelemetry tracing
	FlagTracing = FlagPrefix + "instrumentation.tracing"
	// FlagTracingEndpoint configures the OTLP endpoint (host:port)
	FlagTracingEndpoint = FlagPrefix + "instrumentation.tracing_endpoint"
	// FlagTracingServiceName configures the service.name resource attribute
	FlagTracingServiceName = FlagPrefix + "instrumentation.tracing_service_name"
	// FlagTracingSampleRate configures the TraceID ratio-based sampler
	FlagTracingSampleRate = FlagPrefix + "instrumentation.tracing_sample_rate"

	// Logging configuration flags

	// FlagLogLevel is a flag for specifying the log level
	FlagLogLevel = FlagPrefix + "log.level"
	// FlagLogFormat is a flag for specifying the log format
	FlagLogFormat = FlagPrefix + "log.format"
	// FlagLogTrace is a flag for enabling stack traces in error logs
	FlagLogTrace = FlagPrefix + "log.trace"
)

// Environment variables understood by earlier deployments of the client.
// They override the config file but lose to ZGDA_ variables and flags.
const (
	EnvDisperserURL        = "ZG_DA_URL"
	EnvDisperserRetryDelay = "DISPERSER_RETRY_DELAY_MS"
	EnvStatusRetryDelay    = "STATUS_RETRY_DELAY_MS"
)

// ErrReadYaml is returned when the merged configuration cannot be decoded.
var ErrReadYaml = errors.New("reading YAML configuration failed")

// Config stores the zgda configuration.
type Config struct {
	RootDir string `mapstructure:"-" yaml:"-" comment:"Root directory where zgda files are located"`

	// Data availability configuration
	DA DAConfig `mapstructure:"da" yaml:"da"`

	// Instrumentation configuration
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation" yaml:"instrumentation"`

	// Logging configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DAConfig contains the disperser client parameters.
type DAConfig struct {
	URL                      string        `mapstructure:"url" yaml:"url" comment:"Disperser endpoint: host:port, http://host:port (plaintext) or https://host:port (TLS)."`
	DisperserRetryDelay      time.Duration `mapstructure:"disperser_retry_delay" yaml:"disperser_retry_delay" comment:"Fixed delay before a failed submission is retried."`
	StatusRetryDelay         time.Duration `mapstructure:"status_retry_delay" yaml:"status_retry_delay" comment:"Fixed delay between two status polls."`
	MaxConcurrentSubmissions int64         `mapstructure:"max_concurrent_submissions" yaml:"max_concurrent_submissions" comment:"Number of submissions admitted at once. Submissions beyond this wait."`
	Connections              int           `mapstructure:"connections" yaml:"connections" comment:"Number of transport channels. Each carries one RPC at a time."`
	RequestTimeout           time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" comment:"Deadline of a single DisperseBlob or RetrieveBlob call. 0 disables it."`
	StatusQueryTimeout       time.Duration `mapstructure:"status_query_timeout" yaml:"status_query_timeout" comment:"Deadline of a single GetBlobStatus call. 0 disables it."`
	MaxBlobSize              uint64        `mapstructure:"max_blob_size" yaml:"max_blob_size" comment:"Blobs larger than this are rejected locally. 0 disables the check."`

	Compression compression.Config `mapstructure:"compression" yaml:"compression"`
}

// ClientConfig converts the DA section into the disperser client configuration.
func (d DAConfig) ClientConfig() zerog.Config {
	return zerog.Config{
		URL:                      d.URL,
		DisperserRetryDelay:      d.DisperserRetryDelay,
		StatusRetryDelay:         d.StatusRetryDelay,
		MaxConcurrentSubmissions: d.MaxConcurrentSubmissions,
		Connections:              d.Connections,
		RequestTimeout:           d.RequestTimeout,
		StatusQueryTimeout:       d.StatusQueryTimeout,
		MaxBlobSize:              d.MaxBlobSize,
	}
}

// LogConfig contains all logging configuration parameters
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" comment:"Log level (debug, info, warn, error)"`
	Format string `mapstructure:"format" yaml:"format" comment:"Log format (text, json)"`
	Trace  bool   `mapstructure:"trace" yaml:"trace" comment:"Enable stack traces in error logs"`
}

// Validate checks every section of the config.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root directory cannot be empty")
	}

	var multiErr error
	if err := c.DA.ClientConfig().Validate(); err != nil {
		multiErr = errors.Join(multiErr, fmt.Errorf("da: %w", err))
	}
	if c.DA.Compression.Enabled {
		if err := c.DA.Compression.Validate(); err != nil {
			multiErr = errors.Join(multiErr, fmt.Errorf("da compression: %w", err))
		}
	}
	if c.Instrumentation != nil {
		if err := c.Instrumentation.ValidateBasic(); err != nil {
			multiErr = errors.Join(multiErr, fmt.Errorf("instrumentation: %w", err))
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		multiErr = errors.Join(multiErr, fmt.Errorf("log format must be text or json, got %q", c.Log.Format))
	}
	return multiErr
}

// ConfigPath returns the path to the configuration file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.RootDir, AppConfigDir, ConfigName)
}

// SaveAsYaml writes the configuration to ConfigPath, creating the directory
// if needed.
func (c *Config) SaveAsYaml() error {
	path := c.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("could not create directory %q: %w", filepath.Dir(path), err)
	}

	bz, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, bz, 0o600)
}

// AddGlobalFlags registers the logging and home directory flags shared by all
// subcommands.
func AddGlobalFlags(cmd *cobra.Command, defaultHome string) {
	def := DefaultConfig()

	cmd.PersistentFlags().String(FlagLogLevel, def.Log.Level, "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(FlagLogFormat, def.Log.Format, "Set the log format (text, json)")
	cmd.PersistentFlags().Bool(FlagLogTrace, def.Log.Trace, "Enable stack traces in error logs")
	cmd.PersistentFlags().String(FlagRootDir, DefaultRootDirWithName(defaultHome), "Root directory for application data")
}

// AddFlags adds the disperser client and instrumentation options to cmd.
func AddFlags(cmd *cobra.Command) {
	def := DefaultConfig()

	// Data Availability configuration flags
	cmd.Flags().String(FlagDAURL, def.DA.URL, "disperser endpoint (host:port, http://host:port or https://host:port)")
	cmd.Flags().Duration(FlagDADisperserRetryDelay, def.DA.DisperserRetryDelay, "delay before a failed submission is retried")
	cmd.Flags().Duration(FlagDAStatusRetryDelay, def.DA.StatusRetryDelay, "delay between blob status polls")
	cmd.Flags().Int64(FlagDAMaxConcurrentSubmissions, def.DA.MaxConcurrentSubmissions, "number of submissions admitted at once")
	cmd.Flags().Int(FlagDAConnections, def.DA.Connections, "number of transport channels to the disperser")
	cmd.Flags().Duration(FlagDARequestTimeout, def.DA.RequestTimeout, "per-request timeout of DisperseBlob and RetrieveBlob (0 for none)")
	cmd.Flags().Duration(FlagDAStatusQueryTimeout, def.DA.StatusQueryTimeout, "per-request timeout of GetBlobStatus (0 for none)")
	cmd.Flags().Uint64(FlagDAMaxBlobSize, def.DA.MaxBlobSize, "reject blobs larger than this many bytes (0 for no limit)")
	cmd.Flags().Bool(FlagCompression, def.DA.Compression.Enabled, "compress blobs with zstd before publishing")
	cmd.Flags().Int(FlagCompressionLevel, def.DA.Compression.ZstdLevel, "zstd compression level (1-22)")
	cmd.Flags().Float64(FlagCompressionMinRatio, def.DA.Compression.MinCompressionRatio, "minimum saving (0.0-1.0) required to store a blob compressed")

	// Instrumentation configuration flags
	instrDef := DefaultInstrumentationConfig()
	cmd.Flags().Bool(FlagPrometheus, instrDef.Prometheus, "enable Prometheus metrics")
	cmd.Flags().String(FlagPrometheusListenAddr, instrDef.PrometheusListenAddr, "Prometheus metrics listen address")
	cmd.Flags().Int(FlagMaxOpenConnections, instrDef.MaxOpenConnections, "maximum number of simultaneous connections for metrics")
	cmd.Flags().Bool(FlagTracing, instrDef.Tracing, "enable OpenTelemetry tracing")
	cmd.Flags().String(FlagTracingEndpoint, instrDef.TracingEndpoint, "OTLP endpoint for traces (host:port)")
	cmd.Flags().String(FlagTracingServiceName, instrDef.TracingServiceName, "OpenTelemetry service.name")
	cmd.Flags().Float64(FlagTracingSampleRate, instrDef.TracingSampleRate, "trace sampling rate (0.0-1.0)")
}

// Load loads the configuration in the following order of precedence:
// 1. DefaultConfig() (lowest priority)
// 2. YAML configuration file
// 3. Legacy environment variables (ZG_DA_URL, *_RETRY_DELAY_MS)
// 4. ZGDA_* environment variables
// 5. Command line flags (highest priority)
func Load(cmd *cobra.Command) (Config, error) {
	home, _ := cmd.Flags().GetString(FlagRootDir)
	if home == "" {
		home = DefaultRootDir
	} else if !filepath.IsAbs(home) {
		absHome, err := filepath.Abs(home)
		if err != nil {
			return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		home = absHome
	}

	v := viper.New()
	v.SetConfigType(ConfigExtension)
	v.SetConfigFile(filepath.Join(home, AppConfigDir, ConfigName))

	if err := bindFlags(EnvPrefix, cmd, v); err != nil {
		return Config{}, err
	}

	// a missing configuration file is not an error, defaults apply
	_ = v.ReadInConfig()

	cfg, err := loadFromViper(v, home)
	if err != nil {
		return cfg, err
	}

	if err := applyLegacyEnv(&cfg, cmd.Flags(), os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFromViper decodes the merged settings of v on top of DefaultConfig.
func loadFromViper(v *viper.Viper, home string) (Config, error) {
	cfg := DefaultConfig()
	cfg.RootDir = home

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, errors.Join(ErrReadYaml, fmt.Errorf("failed creating decoder: %w", err))
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return cfg, errors.Join(ErrReadYaml, fmt.Errorf("failed decoding viper: %w", err))
	}

	return cfg, nil
}

// applyLegacyEnv honours the variables older deployments set. A flag given on
// the command line or the matching ZGDA_ variable still wins.
func applyLegacyEnv(cfg *Config, flags *pflag.FlagSet, lookup func(string) (string, bool)) error {
	changed := func(name string) bool {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return true
		}
		val, ok := lookup(envName(EnvPrefix, name))
		return ok && val != ""
	}

	if val, ok := lookup(EnvDisperserURL); ok && val != "" && !changed(FlagDAURL) {
		cfg.DA.URL = val
	}

	delays := []struct {
		env  string
		flag string
		dst  *time.Duration
	}{
		{EnvDisperserRetryDelay, FlagDADisperserRetryDelay, &cfg.DA.DisperserRetryDelay},
		{EnvStatusRetryDelay, FlagDAStatusRetryDelay, &cfg.DA.StatusRetryDelay},
	}
	for _, d := range delays {
		val, ok := lookup(d.env)
		if !ok || val == "" || changed(d.flag) {
			continue
		}
		ms, err := strconv.ParseUint(strings.TrimSpace(val), 10, 63)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.env, val, err)
		}
		*d.dst = time.Duration(ms) * time.Millisecond
	}
	return nil
}

// envName returns the environment variable read for flag. Environment
// variables can't have dots or dashes in them, e.g. zgda.da.url is read from
// ZGDA_DA_URL.
func envName(prefix, flag string) string {
	key := strings.TrimPrefix(flag, FlagPrefix)
	return prefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func bindFlags(prefix string, cmd *cobra.Command, v *viper.Viper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bindFlags failed: %v", r)
		}
	}()

	bind := func(f *pflag.Flag) {
		key := strings.TrimPrefix(f.Name, FlagPrefix)
		if err := v.BindEnv(key, envName(prefix, f.Name)); err != nil {
			panic(err)
		}

		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}

	cmd.Flags().VisitAll(bind)
	cmd.PersistentFlags().VisitAll(bind)

	return err
}
