package session

import (
	"sync"
	"time"
)

// Record is one sealed review interval. Records are immutable once
// appended to a timer's history.
type Record struct {
	StartedAt time.Time     `json:"startedAt"`
	StoppedAt time.Time     `json:"stoppedAt"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Timer counts elapsed review time for one active form session. The
// live counter advances once per tick interval while the timer runs;
// Stop seals the interval into the history and resets the counter.
type Timer struct {
	clock    func() time.Time
	interval time.Duration

	mu        sync.Mutex
	running   bool
	startedAt time.Time
	ticks     int
	history   []Record
	stop      chan struct{}
	done      chan struct{}
}

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithTimerClock injects a deterministic time source for tests.
func WithTimerClock(clock func() time.Time) TimerOption {
	return func(t *Timer) { t.clock = clock }
}

// WithTickInterval overrides the one-second tick, for tests.
func WithTickInterval(d time.Duration) TimerOption {
	return func(t *Timer) { t.interval = d }
}

// NewTimer creates a stopped timer.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{
		clock:    time.Now,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins counting. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.startedAt = t.clock()
	t.ticks = 0
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.run(t.stop, t.done)
}

func (t *Timer) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.ticks++
			t.mu.Unlock()
		}
	}
}

// Running reports whether the timer is counting.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the live counter value. It advances in whole tick
// intervals, not wall-clock fractions.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.ticks) * t.interval
}

// Stop seals the current interval into the history, resets the live
// counter and returns the sealed record. Stopping a stopped timer
// returns false.
func (t *Timer) Stop() (Record, bool) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return Record{}, false
	}
	t.running = false
	rec := Record{
		StartedAt: t.startedAt,
		StoppedAt: t.clock(),
		Elapsed:   time.Duration(t.ticks) * t.interval,
	}
	t.history = append(t.history, rec)
	t.ticks = 0
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
	return rec, true
}

// History returns a copy of the sealed records in append order.
func (t *Timer) History() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.history))
	copy(out, t.history)
	return out
}

// Total sums all sealed intervals plus the live counter.
func (t *Timer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := time.Duration(t.ticks) * t.interval
	for _, rec := range t.history {
		total += rec.Elapsed
	}
	return total
}
