package snapfx

import (
	"io"
	"log/slog"
	"testing"
)

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func mustMount(t *testing.T, rt *Runtime, name string, comp Component) *Instance {
	t.Helper()
	c, err := rt.Mount(name, comp)
	if err != nil {
		t.Fatalf("Mount(%q) error = %v", name, err)
	}
	return c
}

func mustFlush(t *testing.T, rt *Runtime) {
	t.Helper()
	if err := rt.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

// rerender queues one more render of the instance owning tick.
func rerender(tick *State[int]) {
	tick.Update(func(n int) int { return n + 1 })
}

// recorder collects events of the given kinds.
type recorder struct {
	kinds  map[EventKind]bool
	events []Event
}

func newRecorder(kinds ...EventKind) *recorder {
	r := &recorder{kinds: make(map[EventKind]bool)}
	for _, k := range kinds {
		r.kinds[k] = true
	}
	return r
}

func (r *recorder) Observe(ev Event) {
	if len(r.kinds) == 0 || r.kinds[ev.Kind] {
		r.events = append(r.events, ev)
	}
}
