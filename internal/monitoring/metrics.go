// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters for the watch pipeline:
//   - lines/events/dropped: what came off the source and what parsed
//   - alerts:               alerts handed to the notifier
//   - notify_*:             delivery outcomes at the notifier boundary
//
// Stats() is logged periodically by the watcher and once at shutdown.
package monitoring

import (
	"sync/atomic"
)

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	lines          atomic.Int64
	events         atomic.Int64
	dropped        atomic.Int64
	panics         atomic.Int64
	alerts         atomic.Int64
	notifySent     atomic.Int64
	notifyFailed   atomic.Int64
	notifyDiscards atomic.Int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordLine records a raw line read from the source.
func (mc *MetricsCollector) RecordLine() { mc.lines.Add(1) }

// RecordEvent records a line that parsed into an event.
func (mc *MetricsCollector) RecordEvent() { mc.events.Add(1) }

// RecordDropped records a line that was rejected by the parser.
func (mc *MetricsCollector) RecordDropped() { mc.dropped.Add(1) }

// RecordPanic records a recovered panic while handling a line.
func (mc *MetricsCollector) RecordPanic() { mc.panics.Add(1) }

// RecordAlerts records n fired alerts.
func (mc *MetricsCollector) RecordAlerts(n int) { mc.alerts.Add(int64(n)) }

// RecordNotify records a delivery attempt outcome.
func (mc *MetricsCollector) RecordNotify(success bool) {
	if success {
		mc.notifySent.Add(1)
		return
	}
	mc.notifyFailed.Add(1)
}

// RecordNotifyDiscard records an alert dropped before delivery was attempted.
func (mc *MetricsCollector) RecordNotifyDiscard() { mc.notifyDiscards.Add(1) }

// Stats returns current metrics.
func (mc *MetricsCollector) Stats() map[string]int64 {
	return map[string]int64{
		"lines":           mc.lines.Load(),
		"events":          mc.events.Load(),
		"dropped":         mc.dropped.Load(),
		"panics":          mc.panics.Load(),
		"alerts":          mc.alerts.Load(),
		"notify_sent":     mc.notifySent.Load(),
		"notify_failed":   mc.notifyFailed.Load(),
		"notify_discards": mc.notifyDiscards.Load(),
	}
}
