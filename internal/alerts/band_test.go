package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBand_RoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 7, band(6.6))
	assert.Equal(t, 7, band(7.2))
	assert.Equal(t, 6, band(6.4))
	assert.Equal(t, 8, band(7.6))
	assert.Equal(t, 6, band(6.5))
	assert.Equal(t, 8, band(7.5))
	assert.Equal(t, 0, band(0.4))
	assert.Equal(t, 100, band(100))
}

func TestCooldowns_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCooldowns(300*time.Second, func() time.Time { return now })

	assert.True(t, c.Allow("failover_to_green"))
	stamped, ok := c.Last("failover_to_green")
	assert.True(t, ok)
	assert.Equal(t, now, stamped)

	now = now.Add(299 * time.Second)
	assert.False(t, c.Allow("failover_to_green"))
	stamped, _ = c.Last("failover_to_green")
	assert.Equal(t, now.Add(-299*time.Second), stamped, "a refused check leaves the stamp alone")

	assert.True(t, c.Allow("failover_to_blue"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, c.Allow("failover_to_green"))
}

func TestCooldowns_ZeroIntervalAlwaysAllows(t *testing.T) {
	c := NewCooldowns(0, nil)
	assert.True(t, c.Allow("k"))
	assert.True(t, c.Allow("k"))
}
