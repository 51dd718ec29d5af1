// Package alerts is the alerting state machine.
//
// DESIGN: State owns everything that survives between log events:
//   - Window:     the last N events, sample for the error rate
//   - Cooldowns:  alert key -> last time the key was allowed to fire
//   - last pool:  the pool most recently seen serving traffic
//
// Two rules run per event (failover, then error rate). Fired alerts are
// handed to a Notifier; delivery outcome never feeds back into State.
package alerts

import (
	"time"
)

// Rule names.
const (
	RuleFailover      = "failover"
	RuleHighErrorRate = "high_error_rate"
)

// Cooldown key prefixes.
const (
	failoverKeyPrefix  = "failover_to_"
	errorRateKeyPrefix = "error_rate_"
)

// minWarmupEvents is the smallest window length at which the error-rate
// rule is evaluated, regardless of capacity.
const minWarmupEvents = 50

// Config is the static alerting configuration.
type Config struct {
	ActivePool         string  `yaml:"active_pool"`          // pool assumed active at startup
	ErrorRateThreshold float64 `yaml:"error_rate_threshold"` // percent, alert when strictly above
	WindowSize         int     `yaml:"window_size"`          // sliding window capacity (events)
	CooldownSec        int     `yaml:"cooldown_sec"`         // per-key alert cooldown
	MaintenanceMode    bool    `yaml:"maintenance_mode"`     // update the window, never alert
}

// Cooldown returns the cooldown interval as a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSec) * time.Second
}

// WarmupFloor returns the window length required before the error-rate rule
// is evaluated: max(50, half the window capacity).
func (c Config) WarmupFloor() int {
	return max(minWarmupEvents, int(float64(c.WindowSize)*0.5))
}

// Alert is a fired alert, ready for delivery.
type Alert struct {
	ID      string // unique per fired alert, for log correlation
	Rule    string // RuleFailover or RuleHighErrorRate
	Key     string // cooldown key that allowed this alert
	Message string // human readable body
	FiredAt time.Time

	FromPool     string  // failover only
	ToPool       string  // failover only
	ActivePool   string  // high error rate only
	ErrorRate    float64 // percent over the window at fire time
	WindowLen    int
	Release      string
	UpstreamAddr string
}

// Notifier delivers fired alerts. Implementations must not block the
// caller for long and must never surface delivery failures.
type Notifier interface {
	Notify(alert Alert)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(alert Alert)

// Notify calls f(alert).
func (f NotifierFunc) Notify(alert Alert) { f(alert) }

// Snapshot is a point-in-time view of State for status reporting.
type Snapshot struct {
	ActivePool  string
	WindowLen   int
	WindowCap   int
	ErrorRate   float64
	Fired       int64
	Suppressed  int64
	Maintenance bool
}
