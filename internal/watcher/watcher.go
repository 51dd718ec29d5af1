// Package watcher runs the log-to-alert pipeline.
//
// DESIGN: One goroutine reads the source and feeds the alert state strictly
// in order:
//
//	Source.Next -> events.Parse -> State.HandleEvent -> Notifier
//
// A second goroutine logs counters and a state snapshot every
// StatsInterval. A panic while handling one line is recovered and that line
// is counted as dropped; the loop keeps going.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/events"
	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/tail"
)

// DefaultStatsInterval is used when no interval is configured explicitly.
const DefaultStatsInterval = 60 * time.Second

// StateMachine consumes events. *alerts.State implements it.
type StateMachine interface {
	HandleEvent(evt events.Event) []alerts.Alert
	Snapshot() alerts.Snapshot
}

// Watcher wires a source to the alert state.
type Watcher struct {
	source        tail.Source
	state         StateMachine
	logger        *monitoring.Logger
	flagger       *monitoring.Flagger
	statsInterval time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger used for stats output.
func WithLogger(l *monitoring.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFlagger sets the flagger for dropped lines and panics.
func WithFlagger(f *monitoring.Flagger) Option {
	return func(w *Watcher) {
		if f != nil {
			w.flagger = f
		}
	}
}

// WithStatsInterval sets how often stats are logged. Zero disables the
// periodic report; the final report at shutdown is always written.
func WithStatsInterval(d time.Duration) Option {
	return func(w *Watcher) { w.statsInterval = d }
}

// New creates a watcher.
func New(source tail.Source, state StateMachine, opts ...Option) *Watcher {
	w := &Watcher{
		source:        source,
		state:         state,
		logger:        monitoring.Nop(),
		statsInterval: DefaultStatsInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.flagger == nil {
		w.flagger = monitoring.NewFlagger(w.logger, nil)
	}
	return w
}

// Metrics returns the counters the watcher records into.
func (w *Watcher) Metrics() *monitoring.MetricsCollector {
	return w.flagger.Metrics()
}

// Run consumes the source until it is exhausted or ctx is cancelled. Both
// are clean shutdowns and return nil; read failures are returned.
func (w *Watcher) Run(ctx context.Context) error {
	statsCtx, stopStats := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if w.statsInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reportStats(statsCtx)
		}()
	}
	defer func() {
		stopStats()
		wg.Wait()
		w.logStats("watcher stopped")
	}()

	for {
		line, err := w.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			return fmt.Errorf("read source: %w", err)
		}
		w.HandleLine(line)
	}
}

// HandleLine processes one raw line.
func (w *Watcher) HandleLine(line string) {
	metrics := w.flagger.Metrics()
	metrics.RecordLine()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordDropped()
			w.flagger.FlagPanic(line, r, string(debug.Stack()))
		}
	}()

	if strings.TrimSpace(line) == "" {
		return
	}
	evt, ok := events.Parse(line)
	if !ok {
		w.flagger.FlagParseFailure(line)
		return
	}
	fired := w.state.HandleEvent(evt)
	metrics.RecordEvent()
	metrics.RecordAlerts(len(fired))
}

func (w *Watcher) reportStats(ctx context.Context) {
	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.logStats("watcher stats")
		}
	}
}

func (w *Watcher) logStats(msg string) {
	snap := w.state.Snapshot()
	ev := w.logger.Info().
		Str("active_pool", snap.ActivePool).
		Int("window_len", snap.WindowLen).
		Int("window_cap", snap.WindowCap).
		Float64("error_rate", snap.ErrorRate).
		Int64("alerts_fired", snap.Fired).
		Int64("alerts_suppressed", snap.Suppressed).
		Bool("maintenance", snap.Maintenance)
	for k, v := range w.flagger.Metrics().Stats() {
		ev = ev.Int64(k, v)
	}
	ev.Msg(msg)
}
