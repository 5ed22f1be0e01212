package snapfx

import (
	"errors"
	"fmt"
)

// Cleanup releases whatever an effect run acquired. It is called before the
// same effect runs again and when its instance is torn down.
type Cleanup func()

// effectSlot is the per-position state of a declared effect.
type effectSlot struct {
	// fn and deps are the declaration from the render in progress.
	fn   func() Cleanup
	deps Deps

	// tracked records whether the first declaration carried a dependency
	// list. Switching between Always and a list is a shape change.
	tracked bool

	// lastDeps is the dependency list of the last run. ran == false is the
	// no-prior-run sentinel.
	lastDeps Deps
	ran      bool

	// cleanup belongs to the last run only.
	cleanup Cleanup

	runs int
}

// shouldRun decides whether the current declaration qualifies.
func (e *effectSlot) shouldRun(eq Comparer) bool {
	switch {
	case !e.ran:
		return true
	case e.deps == nil:
		return true
	case len(e.deps) == 0:
		return false
	}
	for i := range e.deps {
		if !eq(e.lastDeps[i], e.deps[i]) {
			return true
		}
	}
	return false
}

// UseEffect declares an effect at the next slot of c. fn runs after c
// commits when deps qualifies (see Deps), after the previous run's cleanup.
// fn may return nil.
//
// The dependency list must keep its shape across renders: the same marker
// kind and, for On, the same length.
func UseEffect(c *Instance, fn func() Cleanup, deps Deps) {
	idx, existing := c.useSlot(SlotEffect)

	e := c.slots[idx].effect
	if !existing {
		e = &effectSlot{tracked: deps != nil}
		c.slots[idx].effect = e
	}

	if existing {
		if e.tracked != (deps != nil) {
			panic(c.shapeError(idx, "dependency marker changed between Always and a list"))
		}
		if e.ran && deps != nil && len(deps) != len(e.lastDeps) {
			panic(c.shapeError(idx, fmt.Sprintf("dependency list length changed from %d to %d", len(e.lastDeps), len(deps))))
		}
	}

	e.fn = fn
	e.deps = deps
}

// runEffects is the registry pass for one commit of c. Slots run in
// ascending declaration order. Failures are reported and do not stop later
// slots.
func (c *Instance) runEffects() error {
	var errs []error
	for i := range c.slots {
		if c.tornDown {
			break
		}
		e := c.slots[i].effect
		if e == nil || !e.shouldRun(c.rt.comparer) {
			continue
		}
		if err := c.runEffect(i, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runEffect runs one qualifying slot: previous cleanup first, then the new
// body. lastDeps is updated even when the body fails, so a failed Once effect
// is not retried.
func (c *Instance) runEffect(idx int, e *effectSlot) error {
	cleanupErr := c.rt.runCleanupIfPresent(c, idx, e)

	e.lastDeps = e.deps.clone()
	e.ran = true
	e.runs++

	if e.fn == nil {
		return cleanupErr
	}

	err := c.invokeEffect(idx, e)
	if err != nil {
		c.rt.logger.Error("effect failed", "instance", c.id, "name", c.name, "slot", idx, "error", err)
		c.rt.emit(Event{Kind: EventEffectError, Instance: c.id, Name: c.name, Slot: idx, Err: err})
	} else {
		c.rt.emit(Event{Kind: EventEffectRun, Instance: c.id, Name: c.name, Slot: idx})
	}
	return errors.Join(cleanupErr, err)
}

func (c *Instance) invokeEffect(idx int, e *effectSlot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.cleanup = nil
			err = &EffectError{Instance: c.id, Name: c.name, Slot: idx, Phase: "effect", Panic: r}
		}
	}()
	cleanup := e.fn()
	if c.tornDown {
		// The body unmounted c. Teardown already ran, so nothing else will
		// call this cleanup.
		e.cleanup = cleanup
		return c.rt.runCleanupIfPresent(c, idx, e)
	}
	e.cleanup = cleanup
	return nil
}
