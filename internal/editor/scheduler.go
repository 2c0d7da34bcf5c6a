package editor

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Trigger names what caused a save attempt.
type Trigger string

const (
	TriggerDebounce  Trigger = "debounce"
	TriggerKeepAlive Trigger = "keepalive"
)

const (
	DefaultDebounce  = 5 * time.Second
	DefaultKeepAlive = 30 * time.Second
)

// FireFunc performs a save. It must not call Close on the scheduler that invoked it.
type FireFunc func(ctx context.Context, trigger Trigger)

// Scheduler decides when an autosave happens. It owns two independent timers:
// a debounce timer restarted by every edit, and a keep-alive ticker that runs
// only while the editing surface has focus. Neither fires after Close, after
// Blur (keep-alive), or while suppressed.
type Scheduler struct {
	clock    clockwork.Clock
	quiet    time.Duration
	interval time.Duration
	fire     FireFunc
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	loops    sync.WaitGroup
	inflight sync.WaitGroup
	mu       sync.Mutex
	debounce clockwork.Timer
	gen      uint64
	tickDone chan struct{}
	suppress bool
	closed   bool
	lastEdit time.Time
}

// NewScheduler returns an idle scheduler. Non-positive durations fall back to the defaults.
func NewScheduler(clock clockwork.Clock, quiet, interval time.Duration, fire FireFunc, log *zap.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	if interval <= 0 {
		interval = DefaultKeepAlive
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:    clock,
		quiet:    quiet,
		interval: interval,
		fire:     fire,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Touch records an edit: it clears suppression and restarts the debounce countdown.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.suppress = false
	s.lastEdit = s.clock.Now()
	s.stopDebounceLocked()
	gen := s.gen
	s.debounce = s.clock.AfterFunc(s.quiet, func() {
		if !s.begin(func() bool { return gen == s.gen }) {
			return
		}
		defer s.inflight.Done()
		s.log.Debug("autosave_fire", zap.String("trigger", string(TriggerDebounce)))
		s.fire(s.ctx, TriggerDebounce)
	})
}

// Suppress blocks automatic saves until the next Touch and cancels a pending debounce.
func (s *Scheduler) Suppress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppress = true
	s.stopDebounceLocked()
}

// Focus starts the keep-alive ticker. Calling it while focused is a no-op.
func (s *Scheduler) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.tickDone != nil {
		return
	}
	ticker := s.clock.NewTicker(s.interval)
	done := make(chan struct{})
	s.tickDone = done
	s.loops.Add(1)
	go s.keepAlive(ticker, done)
}

// Blur cancels the keep-alive ticker.
func (s *Scheduler) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopKeepAliveLocked()
}

// Focused reports whether the keep-alive ticker is running.
func (s *Scheduler) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickDone != nil
}

// LastEdit returns the clock time of the most recent Touch.
func (s *Scheduler) LastEdit() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastEdit
}

// Close cancels both timers, cancels the context of any save in flight and waits for it.
// Nothing fires once Close has returned. Close is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopDebounceLocked()
	s.stopKeepAliveLocked()
	s.mu.Unlock()

	s.cancel()
	s.loops.Wait()
	s.inflight.Wait()
}

func (s *Scheduler) keepAlive(ticker clockwork.Ticker, done chan struct{}) {
	defer s.loops.Done()
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			if !s.begin(func() bool { return s.tickDone == done }) {
				continue
			}
			s.log.Debug("autosave_fire", zap.String("trigger", string(TriggerKeepAlive)))
			s.fire(s.ctx, TriggerKeepAlive)
			s.inflight.Done()
		}
	}
}

// begin decides under the lock whether a timer may still fire. current reports whether
// the timer is the live one; a true result must be paired with inflight.Done.
func (s *Scheduler) begin(current func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.suppress || !current() {
		return false
	}
	s.inflight.Add(1)
	return true
}

func (s *Scheduler) stopDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.gen++
}

func (s *Scheduler) stopKeepAliveLocked() {
	if s.tickDone != nil {
		close(s.tickDone)
		s.tickDone = nil
	}
}
