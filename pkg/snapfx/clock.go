package snapfx

import (
	"sync"
	"time"
)

// Clock schedules the callbacks behind Interval and Timeout. Callbacks may
// run on any goroutine; Interval and Timeout only use them to hand work to
// the runtime's Dispatcher.
type Clock interface {
	// Every calls fn every d until stop is called.
	Every(d time.Duration, fn func()) (stop func())
	// After calls fn once after d unless stop is called first.
	After(d time.Duration, fn func()) (stop func())
}

// callerClock is implemented by clocks whose callbacks run on the goroutine
// driving the clock. Only those may run timer callbacks inline when no
// Dispatcher is installed.
type callerClock interface {
	firesOnCaller()
}

// realClock is backed by the time package.
type realClock struct{}

func (realClock) Every(d time.Duration, fn func()) func() {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (realClock) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualClock is a Clock that only moves when Advance is called. Callbacks
// run on the goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Time
	period  time.Duration
	fn      func()
	stopped bool
}

// NewManualClock returns a ManualClock starting at the Unix epoch.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

// Now returns the clock's current time.
func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) firesOnCaller() {}

func (m *ManualClock) Every(d time.Duration, fn func()) func() {
	return m.add(d, d, fn)
}

func (m *ManualClock) After(d time.Duration, fn func()) func() {
	return m.add(d, 0, fn)
}

func (m *ManualClock) add(d, period time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{due: m.now.Add(d), period: period, fn: fn}
	m.timers = append(m.timers, t)
	return func() {
		m.mu.Lock()
		t.stopped = true
		m.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing due callbacks in time order.
// It returns how many callbacks fired.
func (m *ManualClock) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	fired := 0

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.due
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			t.stopped = true
		}

		m.mu.Unlock()
		t.fn()
		fired++
		m.mu.Lock()
	}

	m.now = target
	m.prune()
	m.mu.Unlock()
	return fired
}

// Active returns the number of timers that have not been stopped or fired.
func (m *ManualClock) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.timers)
}

func (m *ManualClock) nextDue(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) {
			next = t
		}
	}
	return next
}

func (m *ManualClock) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
}
