// Monitoring configuration - logging and stats settings.
//
// DESIGN: Logging (zerolog) is for operators. The watcher additionally logs
// its counters every stats_interval. Types live in internal/monitoring so
// the logger can be built without importing this package.
package config

import "github.com/compresr/pool-watcher/internal/monitoring"

// MonitoringConfig is an alias for monitoring.Config.
type MonitoringConfig = monitoring.Config

// LoggerConfig is an alias for monitoring.LoggerConfig.
type LoggerConfig = monitoring.LoggerConfig
