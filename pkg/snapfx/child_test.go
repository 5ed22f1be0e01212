package snapfx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUseChildMountsAndUnmounts(t *testing.T) {
	rt := newTestRuntime(t)

	var log []string
	child := func(c *Instance) {
		UseEffect(c, func() Cleanup {
			log = append(log, "child mount")
			return func() { log = append(log, "child cleanup") }
		}, Once())
	}

	var show *State[bool]
	var mounted *Instance
	parent := mustMount(t, rt, "parent", func(c *Instance) {
		show = UseState(c, false)
		mounted = UseChild(c, "child", child, show.Get())
		v := show.Get()
		UseEffect(c, func() Cleanup {
			if v {
				log = append(log, "parent sees shown")
			}
			return nil
		}, On(v))
	})

	if len(parent.Children()) != 0 {
		t.Fatalf("child mounted while hidden")
	}

	_ = rt.Burst(func() { show.Set(true) })
	if got := len(parent.Children()); got != 1 {
		t.Fatalf("len(Children()) = %d, want 1", got)
	}
	kid := parent.Children()[0]
	if kid.Parent() != parent || kid.Name() != "child" {
		t.Errorf("child = %s with parent %v", kid.Name(), kid.Parent())
	}

	_ = rt.Burst(func() { show.Set(false) })
	if !kid.IsTornDown() {
		t.Error("child should be torn down after hiding")
	}
	if got := len(parent.Children()); got != 0 {
		t.Errorf("len(Children()) = %d, want 0", got)
	}
	if mounted != kid {
		t.Errorf("UseChild returned %v during the hiding render, want the mounted child", mounted)
	}

	want := []string{"child mount", "parent sees shown", "child cleanup"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("lifecycle (-want +got):\n%s", diff)
	}
}

func TestUnmountParentTearsDownChildrenFirst(t *testing.T) {
	rt := newTestRuntime(t)

	var log []string
	child := func(c *Instance) {
		UseEffect(c, func() Cleanup {
			return func() { log = append(log, "child") }
		}, Once())
	}

	parent := mustMount(t, rt, "parent", func(c *Instance) {
		UseChild(c, "child", child, true)
		UseEffect(c, func() Cleanup {
			return func() { log = append(log, "parent") }
		}, Once())
	})
	kid := parent.Children()[0]

	if err := rt.Unmount(parent); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if diff := cmp.Diff([]string{"child", "parent"}, log); diff != "" {
		t.Errorf("teardown order (-want +got):\n%s", diff)
	}
	if !kid.IsTornDown() {
		t.Error("child not torn down")
	}
	if err := rt.Unmount(kid); err == nil {
		t.Error("Unmount() of a torn down child should fail")
	}
}

func TestUnmountChildDirectlyAllowsRemount(t *testing.T) {
	rt := newTestRuntime(t)

	mounts := 0
	child := func(c *Instance) {
		UseEffect(c, func() Cleanup {
			mounts++
			return nil
		}, Once())
	}

	var tick *State[int]
	parent := mustMount(t, rt, "parent", func(c *Instance) {
		tick = UseState(c, 0)
		UseChild(c, "child", child, true)
	})

	if err := rt.Unmount(parent.Children()[0]); err != nil {
		t.Fatalf("Unmount(child) error = %v", err)
	}
	rerender(tick)
	mustFlush(t, rt)

	if mounts != 2 {
		t.Errorf("mounts = %d, want 2", mounts)
	}
}
