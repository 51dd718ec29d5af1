package alerts

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/events"
)

// State is the long-lived alerting aggregate. Events are expected one at a
// time in arrival order; the mutex only guards against concurrent readers
// such as the stats reporter.
type State struct {
	cfg Config

	mu         sync.Mutex
	lastPool   string
	window     *events.Window
	cooldowns  *Cooldowns
	fired      int64
	suppressed int64

	notifier Notifier
	now      func() time.Time
}

// Option configures a State.
type Option func(*State)

// WithClock overrides the wall clock used for cooldowns and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNotifier sets the notifier that receives fired alerts.
func WithNotifier(n Notifier) Option {
	return func(s *State) {
		if n != nil {
			s.notifier = n
		}
	}
}

// NewState creates the alert state. Without WithNotifier, fired alerts are
// only returned from HandleEvent.
func NewState(cfg Config, opts ...Option) *State {
	s := &State{
		cfg:      cfg,
		lastPool: cfg.ActivePool,
		window:   events.NewWindow(cfg.WindowSize),
		notifier: NotifierFunc(func(Alert) {}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cooldowns = NewCooldowns(cfg.Cooldown(), s.now)
	return s
}

// ErrorRatePct returns the errored share of the current window in percent.
func (s *State) ErrorRatePct() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.ErrorRatePct()
}

// ActivePool returns the pool most recently observed serving traffic.
func (s *State) ActivePool() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPool
}

// Window returns a copy of the window contents, oldest first.
func (s *State) Window() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.List()
}

// Snapshot returns a consistent view of the state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ActivePool:  s.lastPool,
		WindowLen:   s.window.Len(),
		WindowCap:   s.window.Cap(),
		ErrorRate:   s.window.ErrorRatePct(),
		Fired:       s.fired,
		Suppressed:  s.suppressed,
		Maintenance: s.cfg.MaintenanceMode,
	}
}

// HandleEvent records evt in the window and evaluates the failover and
// error-rate rules. Fired alerts are passed to the notifier in order
// (failover first) and returned.
func (s *State) HandleEvent(evt events.Event) []Alert {
	fired := func() []Alert {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.evaluate(evt)
	}()

	for _, a := range fired {
		s.notifier.Notify(a)
	}
	return fired
}

// evaluate must be called with s.mu held.
func (s *State) evaluate(evt events.Event) []Alert {
	s.window.Add(evt)

	if s.cfg.MaintenanceMode {
		return nil
	}

	var fired []Alert
	pool := evt.PoolName()

	if pool != "" && s.lastPool != "" && pool != s.lastPool {
		key := failoverKeyPrefix + pool
		if s.allow(key) {
			a := Alert{
				ID:           uuid.NewString(),
				Rule:         RuleFailover,
				Key:          key,
				FiredAt:      s.now(),
				FromPool:     s.lastPool,
				ToPool:       pool,
				ErrorRate:    s.window.ErrorRatePct(),
				WindowLen:    s.window.Len(),
				Release:      evt.ReleaseName(),
				UpstreamAddr: evt.Upstream(),
			}
			a.Message = formatFailover(a)
			log.Info().
				Str("alert_id", a.ID).
				Str("from", a.FromPool).
				Str("to", a.ToPool).
				Float64("error_rate", a.ErrorRate).
				Msg("failover_detected")
			fired = append(fired, a)
		}
		// Pool tracking advances even when the alert was suppressed.
		s.lastPool = pool
	}

	if s.window.Len() >= s.cfg.WarmupFloor() {
		rate := s.window.ErrorRatePct()
		if rate > s.cfg.ErrorRateThreshold {
			key := errorRateKeyPrefix + strconv.Itoa(band(rate))
			if s.allow(key) {
				active := pool
				if active == "" {
					active = s.lastPool
				}
				a := Alert{
					ID:         uuid.NewString(),
					Rule:       RuleHighErrorRate,
					Key:        key,
					FiredAt:    s.now(),
					ActivePool: active,
					ErrorRate:  rate,
					WindowLen:  s.window.Len(),
					Release:    evt.ReleaseName(),
				}
				a.Message = formatHighErrorRate(a)
				log.Warn().
					Str("alert_id", a.ID).
					Float64("error_rate", rate).
					Int("window", a.WindowLen).
					Str("active_pool", active).
					Msg("high_error_rate")
				fired = append(fired, a)
			}
		}
	}

	s.fired += int64(len(fired))
	return fired
}

func (s *State) allow(key string) bool {
	if s.cooldowns.Allow(key) {
		return true
	}
	s.suppressed++
	log.Debug().Str("key", key).Msg("alert_suppressed")
	return false
}

// band coarsens a rate to a whole percent (half to even) so that small
// fluctuations share one cooldown key.
func band(rate float64) int {
	return int(math.RoundToEven(rate))
}
