package snapfx

import "fmt"

// State is a snapshot cell owned by one instance.
//
// Get always returns the value committed before the current render. Set and
// Update queue the next value; it becomes visible when the owning instance
// is flushed. Reading through Get at call time, or writing through Update,
// is the only supported way for long-lived callbacks to see fresh state.
type State[T any] struct {
	inst *Instance
	slot int

	current    T
	pending    T
	hasPending bool

	// equal overrides the runtime comparer for skip-if-unchanged checks.
	equal func(a, b T) bool
}

// StateOption configures a State when it is first declared.
type StateOption[T any] func(*State[T])

// WithEquals sets the equality used to decide whether a write changes the
// committed value.
func WithEquals[T any](fn func(a, b T) bool) StateOption[T] {
	return func(s *State[T]) {
		s.equal = fn
	}
}

// UseState declares a state cell at the next slot of c. The initial value
// and options are only used on the first render; later renders return the
// same cell.
func UseState[T any](c *Instance, initial T, opts ...StateOption[T]) *State[T] {
	idx, existing := c.useSlot(SlotState)
	if existing {
		s, ok := c.slots[idx].state.(*State[T])
		if !ok {
			panic(c.shapeError(idx, fmt.Sprintf("state declared as %T, now %T", c.slots[idx].state, s)))
		}
		return s
	}

	s := &State[T]{inst: c, slot: idx, current: initial}
	for _, opt := range opts {
		opt(s)
	}
	c.slots[idx].state = s
	return s
}

// Get returns the committed snapshot. It never observes a queued write.
func (s *State[T]) Get() T {
	return s.current
}

// Set queues v as the next value. Within one burst the last Set wins.
func (s *State[T]) Set(v T) {
	s.write(func(T) T { return v })
}

// Update queues fn applied to the latest queued value, or to the committed
// value when nothing is queued. Updates compose in call order.
func (s *State[T]) Update(fn func(prev T) T) {
	s.write(fn)
}

// Instance returns the owning instance.
func (s *State[T]) Instance() *Instance {
	return s.inst
}

func (s *State[T]) write(fn func(T) T) {
	if s.inst.tornDown {
		s.inst.rt.logger.Debug("dropped write to torn down instance",
			"instance", s.inst.id, "name", s.inst.name, "slot", s.slot)
		return
	}

	base := s.current
	if s.hasPending {
		base = s.pending
	}
	next := fn(base)

	if !s.hasPending && s.equals(next, s.current) {
		return
	}

	s.pending = next
	s.hasPending = true
	s.inst.rt.requestRender(s.inst)
}

func (s *State[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return s.inst.rt.comparer(a, b)
}

// commit implements cell.
func (s *State[T]) commit() bool {
	if !s.hasPending {
		return false
	}
	changed := !s.equals(s.pending, s.current)

	var zero T
	s.current = s.pending
	s.pending = zero
	s.hasPending = false
	return changed
}

// snapshot implements cell.
func (s *State[T]) snapshot() any {
	return s.current
}
