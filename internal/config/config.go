// Package config loads and validates the watcher configuration.
//
// DESIGN: Configuration is built once at startup and passed to constructors
// as plain structs; nothing below cmd reads the environment. Precedence:
//
//	built-in defaults < YAML file (optional) < environment variables
//
// FILES:
//   - config.go:     Root Config struct, DefaultConfig(), Load(), Validate()
//   - env.go:        Environment variable overrides
//   - source.go:     Tail source settings (re-exported)
//   - alerts.go:     Alert rule settings (re-exported)
//   - notify.go:     Webhook settings (re-exported)
//   - monitoring.go: Logging and stats settings (re-exported)
package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
	"github.com/compresr/pool-watcher/internal/tail"
	"github.com/compresr/pool-watcher/internal/watcher"
)

// Defaults for fields that have no package-level default.
const (
	DefaultActivePool         = "blue"
	DefaultErrorRateThreshold = 2.0
	DefaultWindowSize         = 200
	DefaultCooldownSec        = 300
	DefaultPrefix             = "from: @Techalla"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = monitoring.FormatAuto
	DefaultLogOutput          = "stdout"
)

// warmupFloor mirrors the minimum window length the error-rate rule needs.
const warmupFloor = 50

// Config is the root configuration for the pool watcher.
type Config struct {
	Source     SourceConfig     `yaml:"source"`     // Access log to tail
	Alerts     AlertsConfig     `yaml:"alerts"`     // Failover and error-rate rules
	Notify     NotifyConfig     `yaml:"notify"`     // Webhook delivery
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging and stats
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			LogPath:      tail.DefaultLogPath,
			PollInterval: tail.DefaultPollInterval,
			WaitInterval: tail.DefaultWaitInterval,
		},
		Alerts: AlertsConfig{
			ActivePool:         DefaultActivePool,
			ErrorRateThreshold: DefaultErrorRateThreshold,
			WindowSize:         DefaultWindowSize,
			CooldownSec:        DefaultCooldownSec,
		},
		Notify: NotifyConfig{
			Prefix:    DefaultPrefix,
			Timeout:   notify.DefaultTimeout,
			QueueSize: notify.DefaultQueueSize,
			SigV4:     SigV4Config{Service: notify.DefaultService},
		},
		Monitoring: MonitoringConfig{
			LoggerConfig: LoggerConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
				Output: DefaultLogOutput,
			},
			StatsInterval: watcher.DefaultStatsInterval,
		},
	}
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandEnvWithDefaults expands environment variables with support for default values.
// Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(DefaultConfig())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes on top of the
// defaults. Supports ${VAR:-default} env var expansion, env overrides, and
// validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	// Source
	if strings.TrimSpace(c.Source.LogPath) == "" {
		add("source.log_path is required")
	}
	if c.Source.PollInterval < 0 {
		add("source.poll_interval must not be negative")
	}
	if c.Source.WaitInterval < 0 {
		add("source.wait_interval must not be negative")
	}

	// Alerts
	if c.Alerts.WindowSize < 1 {
		add("invalid alerts.window_size: %d (must be >= 1)", c.Alerts.WindowSize)
	}
	if math.IsNaN(c.Alerts.ErrorRateThreshold) || c.Alerts.ErrorRateThreshold < 0 {
		add("invalid alerts.error_rate_threshold: %v (must be >= 0)", c.Alerts.ErrorRateThreshold)
	}
	if c.Alerts.CooldownSec < 0 {
		add("invalid alerts.cooldown_sec: %d (must be >= 0)", c.Alerts.CooldownSec)
	}

	// Notify
	if c.Notify.WebhookURL != "" {
		u, err := url.Parse(c.Notify.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("notify.webhook_url must be an absolute http(s) URL")
		}
	}
	if c.Notify.Timeout < 0 {
		add("notify.timeout must not be negative")
	}
	if c.Notify.QueueSize < 0 {
		add("notify.queue_size must not be negative")
	}

	// Monitoring
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Monitoring.Level)); err != nil || c.Monitoring.Level == "" {
		add("invalid monitoring.log_level: %q", c.Monitoring.Level)
	}
	switch c.Monitoring.Format {
	case monitoring.FormatJSON, monitoring.FormatConsole, monitoring.FormatAuto:
	default:
		add("invalid monitoring.log_format: %q (must be json, console or auto)", c.Monitoring.Format)
	}
	if c.Monitoring.StatsInterval < 0 {
		add("monitoring.stats_interval must not be negative")
	}

	return errors.Join(errs...)
}

// Warnings returns settings that are valid but probably not intended.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Alerts.WindowSize > 0 && c.Alerts.WindowSize < warmupFloor {
		warnings = append(warnings, fmt.Sprintf(
			"alerts.window_size %d is below the %d-event warm-up floor: error-rate alerts will never fire",
			c.Alerts.WindowSize, warmupFloor))
	}
	if c.Alerts.ErrorRateThreshold >= 100 {
		warnings = append(warnings, "alerts.error_rate_threshold >= 100: error-rate alerts will never fire")
	}
	if c.Alerts.ActivePool == "" {
		warnings = append(warnings, "alerts.active_pool is empty: failover detection is disabled")
	}
	if c.Notify.WebhookURL == "" {
		warnings = append(warnings, "notify.webhook_url is empty: alerts are logged but not delivered")
		if c.Notify.SigV4.Enabled {
			warnings = append(warnings, "notify.sigv4 is enabled without a webhook_url")
		}
	}
	if c.Alerts.MaintenanceMode {
		warnings = append(warnings, "alerts.maintenance_mode is on: no alerts will fire")
	}
	return warnings
}

// Redacted returns a copy safe to print: the webhook URL keeps only its
// scheme and host.
func (c *Config) Redacted() *Config {
	out := *c
	if c.Notify.WebhookURL != "" {
		if u, err := url.Parse(c.Notify.WebhookURL); err == nil && u.Host != "" {
			out.Notify.WebhookURL = u.Scheme + "://" + u.Host + "/***"
		} else {
			out.Notify.WebhookURL = "***"
		}
	}
	return &out
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
