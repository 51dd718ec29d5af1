package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables recognised by applyEnvOverrides. The names match the
// deployment the watcher runs in next to nginx.
const (
	EnvLogFile            = "NGINX_LOG_FILE"
	EnvWebhookURL         = "SLACK_WEBHOOK_URL"
	EnvPrefix             = "SLACK_PREFIX"
	EnvActivePool         = "ACTIVE_POOL"
	EnvErrorRateThreshold = "ERROR_RATE_THRESHOLD"
	EnvWindowSize         = "WINDOW_SIZE"
	EnvCooldownSec        = "ALERT_COOLDOWN_SEC"
	EnvMaintenanceMode    = "MAINTENANCE_MODE"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Numeric values that do not parse are errors rather than silently ignored.
func (c *Config) applyEnvOverrides() error {
	var errs []error

	if v := os.Getenv(EnvLogFile); v != "" {
		c.Source.LogPath = v
	}

	// Set-but-empty is meaningful for these two: it disables delivery or
	// drops the prefix.
	if v, ok := os.LookupEnv(EnvWebhookURL); ok {
		c.Notify.WebhookURL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix); ok {
		c.Notify.Prefix = v
	}

	if v := os.Getenv(EnvActivePool); v != "" {
		c.Alerts.ActivePool = v
	}

	if v := os.Getenv(EnvErrorRateThreshold); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvErrorRateThreshold, err))
		} else {
			c.Alerts.ErrorRateThreshold = f
		}
	}

	if v := os.Getenv(EnvWindowSize); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvWindowSize, err))
		} else {
			c.Alerts.WindowSize = n
		}
	}

	if v := os.Getenv(EnvCooldownSec); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvCooldownSec, err))
		} else {
			c.Alerts.CooldownSec = n
		}
	}

	// Anything other than "true" (any case) turns maintenance off.
	if v, ok := os.LookupEnv(EnvMaintenanceMode); ok {
		c.Alerts.MaintenanceMode = strings.ToLower(v) == "true"
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Monitoring.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Monitoring.Format = strings.ToLower(v)
	}

	return errors.Join(errs...)
}
