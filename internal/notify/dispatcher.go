package notify

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/monitoring"
)

// Dispatcher hands alerts to a slower notifier on a background goroutine.
// Notify never blocks: when the queue is full the alert is discarded.
type Dispatcher struct {
	next    alerts.Notifier
	flagger *monitoring.Flagger

	queue   chan alerts.Alert
	mu      sync.RWMutex
	running bool
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher in front of next.
func NewDispatcher(next alerts.Notifier, queueSize int, flagger *monitoring.Flagger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if flagger == nil {
		flagger = monitoring.NewFlagger(nil, nil)
	}
	return &Dispatcher{
		next:    next,
		flagger: flagger,
		queue:   make(chan alerts.Alert, queueSize),
	}
}

// Start starts the delivery worker.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	if d.running || d.stopped {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run()
}

// Stop stops accepting alerts, delivers what is already queued and waits
// for the worker to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	wasRunning := d.running
	close(d.queue)
	d.mu.Unlock()

	if wasRunning {
		d.wg.Wait()
	}
	log.Debug().Msg("notify dispatcher stopped")
}

// Notify enqueues alert for delivery.
func (d *Dispatcher) Notify(alert alerts.Alert) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.flagger.FlagQueueFull(alert.ID, alert.Rule)
		return
	}
	select {
	case d.queue <- alert:
	default:
		d.flagger.FlagQueueFull(alert.ID, alert.Rule)
	}
}

// Pending returns the number of queued alerts.
func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for alert := range d.queue {
		d.deliver(alert)
	}
}

func (d *Dispatcher) deliver(alert alerts.Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("alert_id", alert.ID).Msg("notifier panicked")
		}
	}()
	d.next.Notify(alert)
}
