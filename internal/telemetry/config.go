package telemetry

import "fmt"

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string `yaml:"-"`

	// ServiceVersion is the version of the service
	ServiceVersion string `yaml:"-"`

	// Environment is the deployment environment (dev, staging, production)
	Environment string `yaml:"environment"`

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector host:port (optional)
	// If empty, spans are recorded but not exported
	Endpoint string `yaml:"endpoint"`

	// Insecure sends spans over plain HTTP
	Insecure bool `yaml:"insecure"`

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64 `yaml:"sample_rate"`
}

// DefaultConfig returns the configuration used when nothing is configured:
// tracing disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "smartplan",
		ServiceVersion: "dev",
		Environment:    "development",
		SampleRate:     1.0,
	}
}

// Validate checks the sampling rate.
func (c Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	return nil
}
