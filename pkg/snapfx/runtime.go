package snapfx

import (
	"errors"
	"log/slog"
)

// Runtime owns mounted instances, the render queue and the policies shared
// by every instance: comparer, clock, dispatcher, observer and logger.
//
// A Runtime does not run a loop of its own. The host calls Burst (or
// Flush after direct writes) on its own execution stream.
type Runtime struct {
	logger     *slog.Logger
	comparer   Comparer
	observer   Observer
	clock      Clock
	dispatcher Dispatcher
	onError    func(error)
	budget     stormBudget

	roots []*Instance
	queue renderQueue

	burstDepth int
	flushing   bool

	// errs collects non-fatal failures (effect panics) until the current
	// Flush or Mount returns them.
	errs []error
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithComparer sets the dependency and state comparison policy.
// Default: DefaultComparer.
func WithComparer(cmp Comparer) Option {
	return func(rt *Runtime) {
		rt.comparer = cmp
	}
}

// WithObserver sets the observer notified of runtime events.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithClock sets the clock used by Interval and Timeout. Default: the real
// clock.
func WithClock(clock Clock) Option {
	return func(rt *Runtime) {
		rt.clock = clock
	}
}

// WithDispatcher sets where Interval and Timeout callbacks are sent.
// Default: run them synchronously as a Burst on the calling goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(rt *Runtime) {
		rt.dispatcher = d
	}
}

// WithErrorHandler sets the handler for errors of dispatched bursts, which
// have no caller to return to. Default: log them.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

// WithMaxBatchesPerFlush sets the storm budget. Zero disables the limit.
// Default: DefaultMaxBatchesPerFlush.
func WithMaxBatchesPerFlush(n int) Option {
	return func(rt *Runtime) {
		rt.budget.maxBatches = n
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		logger:   slog.Default(),
		comparer: DefaultComparer,
		clock:    realClock{},
		budget:   stormBudget{maxBatches: DefaultMaxBatchesPerFlush},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// SetDispatcher replaces the dispatcher. Hosts that own a loop install
// themselves here.
func (rt *Runtime) SetDispatcher(d Dispatcher) {
	rt.dispatcher = d
}

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Mount creates a root instance of comp, renders it, commits it and runs its
// effects. A failing first render tears the instance down again and returns
// the error with a nil instance. Effect failures are returned alongside a
// usable instance.
//
// Mount does not flush. Writes made by the new instance's effects stay
// queued until the host's next Burst or Flush.
func (rt *Runtime) Mount(name string, comp Component) (*Instance, error) {
	if rt.flushing {
		return rt.mount(nil, name, comp)
	}

	rt.flushing = true
	c, err := func() (*Instance, error) {
		defer func() { rt.flushing = false }()
		return rt.mount(nil, name, comp)
	}()
	return c, errors.Join(err, rt.drainErrors())
}

func (rt *Runtime) mount(parent *Instance, name string, comp Component) (*Instance, error) {
	c := newInstance(rt, parent, name, comp)
	if parent != nil {
		parent.children = append(parent.children, c)
	} else {
		rt.roots = append(rt.roots, c)
	}

	rt.logger.Debug("mounted", "instance", c.id, "name", name)
	rt.emit(Event{Kind: EventMount, Instance: c.id, Name: name, Slot: -1})

	if err := rt.process(c); err != nil {
		if !c.tornDown {
			err = errors.Join(err, rt.Unmount(c))
		}
		return nil, err
	}
	return c, nil
}

// process commits, renders, reconciles and runs effects for c. Only fatal
// errors are returned; effect failures go to rt.report.
func (rt *Runtime) process(c *Instance) error {
	c.commit()
	if err := c.render(); err != nil {
		return err
	}
	if err := c.reconcileChildren(); err != nil {
		return err
	}
	if c.tornDown {
		return nil
	}
	rt.report(c.runEffects())
	return nil
}

// Roots returns the mounted root instances.
func (rt *Runtime) Roots() []*Instance {
	return append([]*Instance(nil), rt.roots...)
}

func (rt *Runtime) removeRoot(c *Instance) {
	for i, r := range rt.roots {
		if r == c {
			rt.roots = append(rt.roots[:i], rt.roots[i+1:]...)
			return
		}
	}
}

func (rt *Runtime) report(err error) {
	if err != nil {
		rt.errs = append(rt.errs, err)
	}
}

func (rt *Runtime) drainErrors() error {
	errs := rt.errs
	rt.errs = nil
	return errors.Join(errs...)
}

func (rt *Runtime) handleError(err error) {
	if err == nil {
		return
	}
	if rt.onError != nil {
		rt.onError(err)
		return
	}
	rt.logger.Error("burst failed", "error", err)
}

func (rt *Runtime) emit(ev Event) {
	if rt.observer != nil {
		rt.observer.Observe(ev)
	}
}
