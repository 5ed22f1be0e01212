// Package host runs a snapfx Runtime on a single goroutine.
//
// The Loop is the runtime's execution stream: every burst, whether it comes
// from a timer tick, an HTTP handler or the CLI, is queued on one channel and
// run in order, followed by a flush.
package host

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/vango-dev/snapfx/pkg/snapfx"
)

// DefaultQueueSize is the dispatch queue capacity.
const DefaultQueueSize = 256

// ErrClosed is returned by Do after the loop has been closed.
var ErrClosed = errors.New("host: loop closed")

// Loop serializes bursts for one Runtime.
type Loop struct {
	rt      *snapfx.Runtime
	logger  *slog.Logger
	onError func(error)

	dispatchCh chan func()
	done       chan struct{}
	closed     atomic.Bool

	bursts  atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.dispatchCh = make(chan func(), n)
		}
	}
}

// WithLogger sets the logger. Default: the runtime's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithErrorHandler receives errors of dispatched bursts. Default: log them.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Loop) {
		l.onError = fn
	}
}

// New creates a Loop for rt and installs it as rt's Dispatcher.
func New(rt *snapfx.Runtime, opts ...Option) *Loop {
	l := &Loop{
		rt:         rt,
		logger:     rt.Logger(),
		dispatchCh: make(chan func(), DefaultQueueSize),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	rt.SetDispatcher(l)
	return l
}

// Runtime returns the runtime driven by the loop.
func (l *Loop) Runtime() *snapfx.Runtime {
	return l.rt
}

// Dispatch queues fn to run as its own burst. It never blocks: when the
// queue is full fn is dropped and logged, and after Close it is discarded.
func (l *Loop) Dispatch(fn func()) {
	if l.closed.Load() {
		return
	}
	select {
	case l.dispatchCh <- func() { l.report(l.execute(fn)) }:
	case <-l.done:
	default:
		l.dropped.Add(1)
		l.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Do runs fn as a burst on the loop and waits for it to finish, returning
// the burst's error. Use it to touch the runtime from other goroutines.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if l.closed.Load() {
		return ErrClosed
	}

	result := make(chan error, 1)
	task := func() { result <- l.execute(fn) }

	select {
	case l.dispatchCh <- task:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued bursts until ctx is cancelled or Close is called.
// It returns ctx.Err() on cancellation and nil after Close.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case fn := <-l.dispatchCh:
			fn()

		case <-ctx.Done():
			return ctx.Err()

		case <-l.done:
			return nil
		}
	}
}

// Close stops Run. Queued bursts that have not started are discarded.
func (l *Loop) Close() {
	if l.closed.Swap(true) {
		return
	}
	close(l.done)
	l.logger.Debug("loop closed", "bursts", l.bursts.Load(), "dropped", l.dropped.Load())
}

// Done is closed when the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Stats reports loop counters.
type Stats struct {
	Bursts  uint64 `json:"bursts"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
	Queued  int    `json:"queued"`
}

// Stats returns a snapshot of the loop counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Bursts:  l.bursts.Load(),
		Failed:  l.failed.Load(),
		Dropped: l.dropped.Load(),
		Queued:  len(l.dispatchCh),
	}
}

// execute runs fn as one burst with panic recovery.
func (l *Loop) execute(fn func()) (err error) {
	l.bursts.Add(1)
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("dispatch panic", "panic", r, "stack", string(debug.Stack()))
			err = &PanicError{Value: r}
		}
		if err != nil {
			l.failed.Add(1)
		}
	}()
	return l.rt.Burst(fn)
}

func (l *Loop) report(err error) {
	if err == nil {
		return
	}
	if l.onError != nil {
		l.onError(err)
		return
	}
	l.logger.Error("burst failed", "error", err)
}
