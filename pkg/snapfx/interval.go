package snapfx

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Dispatcher runs callbacks that arrive from outside the runtime's execution
// stream. Each dispatched callback must run as its own Burst.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Dispatch hands fn to the configured Dispatcher. Without one, fn runs
// immediately as a Burst and its error goes to the error handler; that is
// only safe on the goroutine that owns the runtime.
func (rt *Runtime) Dispatch(fn func()) {
	if rt.dispatcher != nil {
		rt.dispatcher.Dispatch(fn)
		return
	}
	rt.handleError(rt.Burst(fn))
}

// Interval calls fn every d, each call in its own burst, until the returned
// Cleanup runs or c is torn down. Return the Cleanup from the effect that
// started it:
//
//	snapfx.UseEffect(c, func() snapfx.Cleanup {
//	    return snapfx.Interval(c, time.Second, func() {
//	        timer.Update(func(n int) int { return n + 10 })
//	    })
//	}, snapfx.Once())
//
// fn must read state through Get or write through Update; values captured
// when the effect ran are stale by the second tick.
//
// With the real clock, ticks arrive on timer goroutines, so the runtime needs
// a Dispatcher (normally a host.Loop). Without one Interval panics with
// ErrNoDispatcher, which the effect reports as an EffectError.
func Interval(c *Instance, d time.Duration, fn func()) Cleanup {
	if d <= 0 {
		panic(fmt.Sprintf("snapfx: non-positive interval %v", d))
	}
	return schedule(c, fn, func(tick func()) func() {
		return c.rt.clock.Every(d, tick)
	})
}

// Timeout calls fn once after d, in its own burst, unless the returned
// Cleanup runs first or c is torn down.
func Timeout(c *Instance, d time.Duration, fn func()) Cleanup {
	return schedule(c, fn, func(tick func()) func() {
		return c.rt.clock.After(d, tick)
	})
}

func schedule(c *Instance, fn func(), start func(tick func()) func()) Cleanup {
	rt := c.rt
	if rt.dispatcher == nil {
		if _, ok := rt.clock.(callerClock); !ok {
			panic(ErrNoDispatcher)
		}
	}
	var stopped atomic.Bool

	stop := start(func() {
		rt.Dispatch(func() {
			if stopped.Load() || c.tornDown {
				return
			}
			fn()
		})
	})

	return func() {
		stopped.Store(true)
		stop()
	}
}
