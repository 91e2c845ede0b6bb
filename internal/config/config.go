// Package config loads smartplan.yaml.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// DefaultPath is read when no --config flag is given and the file exists.
const DefaultPath = "smartplan.yaml"

// Config is the smartplan configuration file.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	Telemetry  telemetry.Config `yaml:"telemetry"`
}

// ServerConfig configures `smartplan serve`.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	// HealthCheckTimeout bounds each readiness check.
	HealthCheckTimeout time.Duration `yaml:"health_check_timeout"`
}

// ListenAddr returns host:port for http.Server.
func (s ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SchedulingConfig holds planning defaults.
type SchedulingConfig struct {
	// WorkPerDayHours is the capacity used when a request does not set one.
	WorkPerDayHours float64 `yaml:"work_per_day_hours"`

	// Generator names the task generator used for goals without tasks.
	Generator string `yaml:"generator"`

	// GeneratorTimeout bounds one generator call.
	GeneratorTimeout time.Duration `yaml:"generator_timeout"`
}

// Preferences returns a fresh copy of the configured default preferences.
func (s SchedulingConfig) Preferences() plan.Preferences {
	return plan.Preferences{WorkPerDayHours: s.WorkPerDayHours}
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:            "0.0.0.0",
			Port:               8080,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       30 * time.Second,
			IdleTimeout:        60 * time.Second,
			ShutdownTimeout:    30 * time.Second,
			MaxBodyBytes:       1 << 20,
			HealthCheckTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Scheduling: SchedulingConfig{
			WorkPerDayHours:  plan.DefaultWorkPerDayHours,
			Generator:        "static",
			GeneratorTimeout: 30 * time.Second,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Load reads the configuration at path on top of the defaults. ${VAR}
// references are expanded from the environment before parsing.
//
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("read config file: %s", path), err)
	}

	if err := Parse([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, leaving fields absent from data unchanged.
// Unknown keys are rejected so typos do not go unnoticed.
func Parse(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

// Validate checks every section and reports the first problem as CONFIG-001.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigInvalidError(fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.NewConfigInvalidError("server.max_body_bytes must not be negative")
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":          c.Server.ReadTimeout,
		"server.write_timeout":         c.Server.WriteTimeout,
		"server.idle_timeout":          c.Server.IdleTimeout,
		"server.shutdown_timeout":      c.Server.ShutdownTimeout,
		"server.health_check_timeout":  c.Server.HealthCheckTimeout,
		"scheduling.generator_timeout": c.Scheduling.GeneratorTimeout,
	} {
		if d < 0 {
			return errors.NewConfigInvalidError(fmt.Sprintf("%s must not be negative", name))
		}
	}

	if _, err := log.FromStrings(c.Logging.Level, c.Logging.Format); err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}

	h := c.Scheduling.WorkPerDayHours
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return errors.NewConfigInvalidError(fmt.Sprintf("scheduling.work_per_day_hours must be a positive number, got %v", h))
	}
	if strings.TrimSpace(c.Scheduling.Generator) == "" {
		return errors.NewConfigInvalidError("scheduling.generator must not be empty")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return errors.NewConfigInvalidError(err.Error())
	}
	return nil
}
