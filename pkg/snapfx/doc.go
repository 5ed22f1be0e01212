// Package snapfx provides a component-local reactive state and effect runtime.
//
// A component is a plain function that is re-invoked every time its instance
// renders. During a render the component declares its hooks in a fixed order:
// state cells, effects and child slots. The declaration position is the
// hook's identity, so the same instance must declare the same hooks in the
// same order on every render.
//
// # State
//
// State[T] is a snapshot cell:
//
//	count := snapfx.UseState(c, 0)
//	value := count.Get()                            // committed snapshot
//	count.Set(value + 10)                           // queued for the next render
//	count.Update(func(n int) int { return n + 10 }) // composes with queued writes
//
// Writes never change what Get returns during the current burst. They are
// committed right before the owning instance renders again.
//
// # Effects
//
// Effects run after their instance commits, in declaration order:
//
//	snapfx.UseEffect(c, func() snapfx.Cleanup {
//	    log.Println("count is", count.Get())
//	    return nil
//	}, snapfx.On(count.Get()))
//
// The dependency argument selects when the effect re-runs:
//
//	snapfx.Always()   // every commit
//	snapfx.Once()     // first commit only
//	snapfx.On(a, b)   // when a or b changed, per the runtime's Comparer
//
// A returned Cleanup runs before the same effect runs again and when the
// instance is unmounted.
//
// # Bursts and flushing
//
// All writes made inside one Burst are collapsed and flushed together:
//
//	rt.Burst(func() {
//	    count.Set(1)
//	    label.Set("one")
//	}) // one re-render of the owning instance
//
// # Stale closures
//
// Callbacks that outlive a render (timers, subscriptions, handlers) must not
// use a value captured during that render to compute the next state. They
// either call Get at call time or use Update:
//
//	snapfx.Interval(c, time.Second, func() {
//	    timer.Update(func(n int) int { return n + 10 })
//	})
//
// # Thread Safety
//
// A Runtime is single-threaded. Every call into it must happen on one
// goroutine, normally the host loop (see package host). Timer goroutines
// only hand callbacks to the Dispatcher.
package snapfx
