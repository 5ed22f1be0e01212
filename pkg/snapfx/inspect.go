package snapfx

// InstanceInfo is a read-only snapshot of a mounted instance.
type InstanceInfo struct {
	ID       uint64         `json:"id"`
	Name     string         `json:"name"`
	Renders  int            `json:"renders"`
	Slots    []SlotInfo     `json:"slots"`
	Children []InstanceInfo `json:"children,omitempty"`
}

// SlotInfo describes one declaration slot.
type SlotInfo struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`

	// Value is the committed value of a state slot.
	Value any `json:"value,omitempty"`
	// Pending reports whether a state slot has a queued write.
	Pending bool `json:"pending,omitempty"`

	// Runs and HasCleanup describe an effect slot.
	Runs       int  `json:"runs,omitempty"`
	HasCleanup bool `json:"hasCleanup,omitempty"`

	// Child is the mounted child's ID for a child slot, zero if none.
	Child uint64 `json:"child,omitempty"`
}

// pendingReporter is implemented by State[T].
type pendingReporter interface {
	isPending() bool
}

func (s *State[T]) isPending() bool { return s.hasPending }

// Inspect returns a snapshot of c and its children.
func (c *Instance) Inspect() InstanceInfo {
	info := InstanceInfo{ID: c.id, Name: c.name, Renders: c.renders}

	for i, s := range c.slots {
		si := SlotInfo{Index: i, Kind: s.kind.String()}
		switch {
		case s.state != nil:
			si.Value = s.state.snapshot()
			if p, ok := s.state.(pendingReporter); ok {
				si.Pending = p.isPending()
			}
		case s.effect != nil:
			si.Runs = s.effect.runs
			si.HasCleanup = s.effect.cleanup != nil
		case s.child != nil && s.child.inst != nil:
			si.Child = s.child.inst.id
		}
		info.Slots = append(info.Slots, si)
	}

	for _, ch := range c.children {
		info.Children = append(info.Children, ch.Inspect())
	}
	return info
}

// Instances returns snapshots of every mounted root and its descendants.
func (rt *Runtime) Instances() []InstanceInfo {
	out := make([]InstanceInfo, 0, len(rt.roots))
	for _, r := range rt.roots {
		out = append(out, r.Inspect())
	}
	return out
}
