// Source configuration re-exports.
//
// DESIGN: Source config is defined in internal/tail/source.go.
// This file re-exports it for use by the main Config struct.
package config

import "github.com/compresr/pool-watcher/internal/tail"

// SourceConfig is an alias for tail.Config for use in main Config struct.
type SourceConfig = tail.Config
