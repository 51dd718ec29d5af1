package alerts

import (
	"fmt"
	"strings"
	"time"
)

// orNone renders an absent diagnostic field.
func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatFailover(a Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Failover Detected*: %s → %s\n", a.FromPool, a.ToPool)
	fmt.Fprintf(&b, "• time: %s\n", timestamp(a.FiredAt))
	fmt.Fprintf(&b, "• error_rate(%d): %.2f%%\n", a.WindowLen, a.ErrorRate)
	fmt.Fprintf(&b, "• release: %s\n", orNone(a.Release))
	fmt.Fprintf(&b, "• upstream: %s\n", orNone(a.UpstreamAddr))
	fmt.Fprintf(&b, "Action: Check health of %s and upstream logs.", a.FromPool)
	return b.String()
}

func formatHighErrorRate(a Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*High Error Rate*: %.2f%% over last %d requests\n", a.ErrorRate, a.WindowLen)
	fmt.Fprintf(&b, "• time: %s\n", timestamp(a.FiredAt))
	fmt.Fprintf(&b, "• active_pool: %s\n", orNone(a.ActivePool))
	fmt.Fprintf(&b, "• release: %s\n", orNone(a.Release))
	b.WriteString("Action: Inspect upstream errors, consider toggling pools.")
	return b.String()
}
