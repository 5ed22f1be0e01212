package snapfx

import "errors"

// runCleanupIfPresent invokes and clears the cleanup stored by the last run
// of slot idx. At most one cleanup is ever live per slot.
func (rt *Runtime) runCleanupIfPresent(c *Instance, idx int, e *effectSlot) (err error) {
	if e.cleanup == nil {
		return nil
	}
	fn := e.cleanup
	e.cleanup = nil

	defer func() {
		if r := recover(); r != nil {
			err = &EffectError{Instance: c.id, Name: c.name, Slot: idx, Phase: "cleanup", Panic: r}
			rt.logger.Error("effect cleanup failed", "instance", c.id, "name", c.name, "slot", idx, "error", err)
			rt.emit(Event{Kind: EventEffectError, Instance: c.id, Name: c.name, Slot: idx, Err: err})
		}
	}()

	fn()
	rt.emit(Event{Kind: EventCleanup, Instance: c.id, Name: c.name, Slot: idx})
	return nil
}

// runUnmountFn invokes one OnUnmount callback. A panic is reported as an
// EffectError with phase "unmount" so teardown can finish.
func (rt *Runtime) runUnmountFn(c *Instance, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EffectError{Instance: c.id, Name: c.name, Slot: -1, Phase: "unmount", Panic: r}
			rt.logger.Error("unmount callback failed", "instance", c.id, "name", c.name, "error", err)
			rt.emit(Event{Kind: EventEffectError, Instance: c.id, Name: c.name, Slot: -1, Err: err})
		}
	}()
	fn()
	return nil
}

// Unmount tears c down:
//  1. child instances, last created first
//  2. effect cleanups, in declaration order
//  3. OnUnmount callbacks, last registered first
//
// It then releases the slot arena and drops c from the render queue.
// Writes to c's state after this point are ignored. Unmounting an instance
// twice returns a *DoubleTeardownError.
func (rt *Runtime) Unmount(c *Instance) error {
	if c.tornDown {
		return &DoubleTeardownError{Instance: c.id, Name: c.name}
	}

	err := rt.teardown(c)

	if c.parent != nil {
		c.parent.removeChild(c)
	} else {
		rt.removeRoot(c)
	}
	return err
}

func (rt *Runtime) teardown(c *Instance) error {
	c.tornDown = true

	var errs []error

	children := c.children
	c.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		errs = append(errs, rt.teardown(children[i]))
	}

	for i := range c.slots {
		if e := c.slots[i].effect; e != nil {
			errs = append(errs, rt.runCleanupIfPresent(c, i, e))
		}
	}

	fns := c.unmountFns
	c.unmountFns = nil
	for i := len(fns) - 1; i >= 0; i-- {
		errs = append(errs, rt.runUnmountFn(c, fns[i]))
	}

	c.slots = nil
	rt.queue.remove(c)

	rt.logger.Debug("unmounted", "instance", c.id, "name", c.name)
	rt.emit(Event{Kind: EventUnmount, Instance: c.id, Name: c.name, Slot: -1})
	return errors.Join(errs...)
}
