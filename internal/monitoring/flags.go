// Package monitoring - flags.go flags pipeline anomalies.
//
// DESIGN: Flagger logs notable pipeline events at appropriate levels and
// bumps the matching counter:
//   - FlagParseFailure:  Debug when a line is rejected by the parser
//   - FlagPanic:         Error on a recovered panic while handling a line
//   - FlagNotifyFailure: Warn when the sink rejects or misses a delivery
//   - FlagQueueFull:     Warn when an alert is discarded before delivery
package monitoring

const maxLoggedLine = 256

// Flagger flags anomalies in the watch pipeline.
type Flagger struct {
	logger  *Logger
	metrics *MetricsCollector
}

// NewFlagger creates a new flagger. A nil logger discards output and a nil
// collector gets a private one.
func NewFlagger(logger *Logger, metrics *MetricsCollector) *Flagger {
	if logger == nil {
		logger = Nop()
	}
	if metrics == nil {
		metrics = NewMetricsCollector()
	}
	return &Flagger{logger: logger, metrics: metrics}
}

// Metrics returns the collector the flagger records into.
func (f *Flagger) Metrics() *MetricsCollector { return f.metrics }

// FlagParseFailure logs a line the parser rejected.
func (f *Flagger) FlagParseFailure(line string) {
	f.metrics.RecordDropped()
	f.logger.Debug().
		Str("line", truncate(line)).
		Msg("parse_failed")
}

// FlagPanic logs a recovered panic.
func (f *Flagger) FlagPanic(line string, panicValue interface{}, stack string) {
	f.metrics.RecordPanic()
	f.logger.Error().
		Str("line", truncate(line)).
		Interface("panic", panicValue).
		Str("stack", stack).
		Msg("panic_recovered")
}

// FlagNotifyFailure logs a failed delivery.
func (f *Flagger) FlagNotifyFailure(alertID, rule string, err error) {
	f.metrics.RecordNotify(false)
	f.logger.Warn().
		Str("alert_id", alertID).
		Str("rule", rule).
		Err(err).
		Msg("notify_failed")
}

// FlagNotifySent logs a successful delivery.
func (f *Flagger) FlagNotifySent(alertID, rule string, status int) {
	f.metrics.RecordNotify(true)
	f.logger.Debug().
		Str("alert_id", alertID).
		Str("rule", rule).
		Int("status", status).
		Msg("notify_sent")
}

// FlagQueueFull logs an alert discarded because the dispatch queue is full.
func (f *Flagger) FlagQueueFull(alertID, rule string) {
	f.metrics.RecordNotifyDiscard()
	f.logger.Warn().
		Str("alert_id", alertID).
		Str("rule", rule).
		Msg("notify_queue_full")
}

func truncate(s string) string {
	if len(s) <= maxLoggedLine {
		return s
	}
	return s[:maxLoggedLine] + "..."
}
