// Alert rule configuration re-exports.
//
// DESIGN: Alert config is defined in internal/alerts/types.go so the state
// machine never depends on this package.
package config

import "github.com/compresr/pool-watcher/internal/alerts"

// AlertsConfig is an alias for alerts.Config for use in main Config struct.
type AlertsConfig = alerts.Config
