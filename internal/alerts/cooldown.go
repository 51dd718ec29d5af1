package alerts

import "time"

// Cooldowns rate-limits alerts per key. A key is stamped when a check
// passes, not when its alert is delivered, so a continuously eligible key
// fires at most once per interval whatever happens downstream.
// Cooldowns is not safe for concurrent use.
type Cooldowns struct {
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// NewCooldowns creates a cooldown table. A nil clock means time.Now.
func NewCooldowns(interval time.Duration, now func() time.Time) *Cooldowns {
	if now == nil {
		now = time.Now
	}
	return &Cooldowns{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      now,
	}
}

// Allow reports whether key may fire now. On true the current time is
// recorded for key; on false the table is left untouched.
func (c *Cooldowns) Allow(key string) bool {
	now := c.now()
	if last, ok := c.last[key]; ok && now.Sub(last) < c.interval {
		return false
	}
	c.last[key] = now
	return true
}

// Last returns the time key last passed Allow.
func (c *Cooldowns) Last(key string) (time.Time, bool) {
	t, ok := c.last[key]
	return t, ok
}
