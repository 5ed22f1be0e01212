package snapfx

// childSlot holds one conditionally mounted child instance.
type childSlot struct {
	name    string
	comp    Component
	visible bool
	inst    *Instance
}

// UseChild declares a child slot at the next position of c. After c commits,
// the child is mounted when visible is true and torn down when it is false.
// A mounted child's effects run before c's own effects for that commit.
//
// The returned instance is the child mounted by a previous commit, or nil.
// Re-rendering c does not re-render the child; the child renders when its
// own state changes.
func UseChild(c *Instance, name string, comp Component, visible bool) *Instance {
	idx, existing := c.useSlot(SlotChild)

	cs := c.slots[idx].child
	if !existing {
		cs = &childSlot{}
		c.slots[idx].child = cs
	}
	cs.name = name
	cs.comp = comp
	cs.visible = visible
	return cs.inst
}

// reconcileChildren mounts and unmounts children to match the declarations
// of the render that just finished. It returns a fatal error only; effect
// failures of a newly mounted child are reported through rt.report.
func (c *Instance) reconcileChildren() error {
	for i := range c.slots {
		cs := c.slots[i].child
		if cs == nil {
			continue
		}
		switch {
		case cs.visible && cs.inst == nil:
			inst, err := c.rt.mount(c, cs.name, cs.comp)
			if err != nil {
				return err
			}
			if c.tornDown {
				// An effect of the new child unmounted c.
				return nil
			}
			cs.inst = inst
		case !cs.visible && cs.inst != nil:
			child := cs.inst
			cs.inst = nil
			if err := c.rt.Unmount(child); err != nil {
				c.rt.report(err)
			}
		case cs.inst != nil:
			cs.inst.comp = cs.comp
		}
	}
	return nil
}
