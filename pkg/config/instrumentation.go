package config

import (
	"errors"
	"strings"
)

// InstrumentationConfig defines the configuration for metrics and tracing.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	Prometheus bool `mapstructure:"prometheus" yaml:"prometheus" comment:"Enable Prometheus metrics"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus_listen_addr" yaml:"prometheus_listen_addr" comment:"Address to listen for Prometheus metrics"`

	// Maximum number of simultaneous connections.
	// 0 - unlimited.
	MaxOpenConnections int `mapstructure:"max_open_connections" yaml:"max_open_connections" comment:"Maximum number of simultaneous connections"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace" yaml:"namespace" comment:"Namespace for metrics"`

	// Tracing enables OpenTelemetry tracing when true.
	Tracing bool `mapstructure:"tracing" yaml:"tracing" comment:"Enable OpenTelemetry tracing"`

	// TracingEndpoint is the OTLP endpoint (host:port) for exporting traces.
	TracingEndpoint string `mapstructure:"tracing_endpoint" yaml:"tracing_endpoint" comment:"OTLP endpoint for traces (host:port)"`

	// TracingServiceName is the service.name resource attribute.
	TracingServiceName string `mapstructure:"tracing_service_name" yaml:"tracing_service_name" comment:"OpenTelemetry service.name for this process"`

	// TracingSampleRate is the TraceID ratio-based sampling rate (0.0 - 1.0).
	TracingSampleRate float64 `mapstructure:"tracing_sample_rate" yaml:"tracing_sample_rate" comment:"Sampling rate for traces (0.0-1.0)"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		MaxOpenConnections:   3,
		Namespace:            "zgda",
		Tracing:              false,
		TracingEndpoint:      "localhost:4318",
		TracingServiceName:   "zgda",
		TracingSampleRate:    0.1,
	}
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return errors.New("max_open_connections can't be negative")
	}
	if cfg.IsTracingEnabled() {
		if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
			return errors.New("tracing_sample_rate must be between 0 and 1")
		}
		if strings.TrimSpace(cfg.TracingEndpoint) == "" {
			return errors.New("tracing_endpoint cannot be empty")
		}
	}
	return nil
}

// IsPrometheusEnabled returns true if Prometheus metrics are enabled.
func (cfg *InstrumentationConfig) IsPrometheusEnabled() bool {
	return cfg != nil && cfg.Prometheus && cfg.PrometheusListenAddr != ""
}

// IsTracingEnabled returns true if OpenTelemetry tracing is enabled.
func (cfg *InstrumentationConfig) IsTracingEnabled() bool {
	return cfg != nil && cfg.Tracing && cfg.TracingEndpoint != ""
}
