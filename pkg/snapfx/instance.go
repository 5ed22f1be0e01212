package snapfx

import (
	"fmt"
	"time"
)

// Component is a computation body. It is invoked once per render of its
// instance and declares hooks on c in a fixed order.
type Component func(c *Instance)

// SlotKind identifies what a declaration slot holds.
type SlotKind uint8

const (
	SlotState SlotKind = iota + 1
	SlotEffect
	SlotChild
)

// String returns a human-readable name for the slot kind.
func (k SlotKind) String() string {
	switch k {
	case SlotState:
		return "State"
	case SlotEffect:
		return "Effect"
	case SlotChild:
		return "Child"
	default:
		return "Unknown"
	}
}

// cell is the type-erased view of a State[T] used by commit and teardown.
type cell interface {
	commit() bool
	snapshot() any
}

// slot is one entry of an instance's declaration arena. Exactly one of the
// pointer fields is set, matching kind.
type slot struct {
	kind   SlotKind
	state  cell
	effect *effectSlot
	child  *childSlot
}

// Instance is a mounted component. It owns its state cells, effect slots and
// child instances, addressed by declaration position. The arena is allocated
// during the first render and reused by every later render.
type Instance struct {
	id     uint64
	name   string
	rt     *Runtime
	comp   Component
	parent *Instance

	// children are mounted child instances in creation order.
	children []*Instance

	slots     []slot
	slotIdx   int
	rendering bool

	// rendered is set once the first render completes, which locks in the
	// slot shape.
	rendered bool
	renders  int

	// unmountFns are registered via OnUnmount.
	unmountFns []func()

	tornDown bool
}

func newInstance(rt *Runtime, parent *Instance, name string, comp Component) *Instance {
	return &Instance{
		id:     nextID(),
		name:   name,
		rt:     rt,
		comp:   comp,
		parent: parent,
	}
}

// ID returns the instance's stable handle.
func (c *Instance) ID() uint64 { return c.id }

// Name returns the name the instance was mounted with.
func (c *Instance) Name() string { return c.name }

// Parent returns the owning instance, or nil for a root.
func (c *Instance) Parent() *Instance { return c.parent }

// Runtime returns the runtime the instance is mounted in.
func (c *Instance) Runtime() *Runtime { return c.rt }

// Renders returns how many times the component body has run.
func (c *Instance) Renders() int { return c.renders }

// IsTornDown reports whether the instance has been unmounted.
func (c *Instance) IsTornDown() bool { return c.tornDown }

// Children returns a copy of the mounted child instances.
func (c *Instance) Children() []*Instance {
	return append([]*Instance(nil), c.children...)
}

func (c *Instance) removeChild(child *Instance) {
	for i, ch := range c.children {
		if ch == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	for i := range c.slots {
		if cs := c.slots[i].child; cs != nil && cs.inst == child {
			cs.inst = nil
		}
	}
}

// useSlot claims the next declaration position for a hook of the given kind.
// It returns the slot index and whether the slot already existed.
//
// It panics with ErrHookOutsideRender or a *SlotShapeError; render converts
// the latter into the error returned to the host.
func (c *Instance) useSlot(kind SlotKind) (int, bool) {
	if !c.rendering {
		panic(ErrHookOutsideRender)
	}

	idx := c.slotIdx
	c.slotIdx++

	if idx < len(c.slots) {
		if got := c.slots[idx].kind; got != kind {
			panic(c.shapeError(idx, fmt.Sprintf("expected %s hook, got %s", got, kind)))
		}
		return idx, true
	}
	if c.rendered {
		panic(c.shapeError(idx, fmt.Sprintf("extra %s hook, first render declared %d slots", kind, len(c.slots))))
	}

	c.slots = append(c.slots, slot{kind: kind})
	return idx, false
}

func (c *Instance) shapeError(idx int, reason string) *SlotShapeError {
	return &SlotShapeError{Instance: c.id, Name: c.name, Slot: idx, Reason: reason}
}

// render invokes the component body once.
func (c *Instance) render() (err error) {
	start := time.Now()
	c.slotIdx = 0
	c.rendering = true

	defer func() {
		c.rendering = false
		if r := recover(); r != nil {
			err = renderFailure(c, r)
		}
	}()

	c.comp(c)

	if c.rendered && c.slotIdx != len(c.slots) {
		return c.shapeError(c.slotIdx, fmt.Sprintf("expected %d hooks, got %d", len(c.slots), c.slotIdx))
	}
	c.rendered = true
	c.renders++

	c.rt.emit(Event{Kind: EventRender, Instance: c.id, Name: c.name, Slot: -1, Duration: time.Since(start)})
	return nil
}

// commit moves every pending state value into current. It returns the
// number of cells whose committed value changed.
func (c *Instance) commit() int {
	changed := 0
	for i := range c.slots {
		s := c.slots[i].state
		if s == nil || !s.commit() {
			continue
		}
		changed++
		c.rt.emit(Event{Kind: EventCommit, Instance: c.id, Name: c.name, Slot: i, Value: s.snapshot()})
	}
	return changed
}

// OnUnmount registers fn to run when c is torn down, after its effect
// cleanups. Callbacks run in reverse registration order. Registering on an
// instance that is already torn down runs fn immediately; a panic there is
// logged and emitted as an effect error event.
//
// OnUnmount is not a hook: every call registers fn again, so call it from a
// Once effect or from the host rather than from the component body.
func OnUnmount(c *Instance, fn func()) {
	if c.tornDown {
		_ = c.rt.runUnmountFn(c, fn)
		return
	}
	c.unmountFns = append(c.unmountFns, fn)
}
