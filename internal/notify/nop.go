package notify

import (
	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/alerts"
)

// Nop discards every alert.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(alerts.Alert) {}

// LogOnly writes alerts to the log instead of delivering them. Used for
// dry runs.
type LogOnly struct{}

// Notify logs the alert message.
func (LogOnly) Notify(a alerts.Alert) {
	log.Info().
		Str("alert_id", a.ID).
		Str("rule", a.Rule).
		Str("key", a.Key).
		Str("text", a.Message).
		Msg("alert (dry run)")
}
