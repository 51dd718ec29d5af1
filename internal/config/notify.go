// Notification configuration re-exports.
//
// DESIGN: Notify config is defined in internal/notify/config.go.
package config

import "github.com/compresr/pool-watcher/internal/notify"

// =============================================================================
// RE-EXPORTS FROM notify PACKAGE
// =============================================================================

// NotifyConfig is an alias for notify.Config for use in main Config struct.
type NotifyConfig = notify.Config

// SigV4Config is an alias for notify.SigV4Config.
type SigV4Config = notify.SigV4Config
