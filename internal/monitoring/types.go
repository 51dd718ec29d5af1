// Package monitoring - types.go defines shared config types.
//
// DESIGN: Defined here ONCE and re-exported by internal/config so the
// config package can embed them without circular imports.
package monitoring

import "time"

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"log_level"`  // debug, info, warn, error
	Format string `yaml:"log_format"` // json, console, auto
	Output string `yaml:"log_output"` // stdout, stderr, or file path
}

// Config is the monitoring section of the watcher configuration.
type Config struct {
	LoggerConfig  `yaml:",inline"`
	StatsInterval time.Duration `yaml:"stats_interval"` // periodic stats log, 0 disables
	AlertLogPath  string        `yaml:"alert_log_path"` // JSONL journal of fired alerts, empty disables
}
