package snapfx

import (
	"fmt"
	"time"
)

// EventKind identifies a runtime event.
type EventKind uint8

const (
	EventMount EventKind = iota + 1
	EventRender
	EventCommit
	EventEffectRun
	EventEffectError
	EventCleanup
	EventUnmount
	EventFlushStart
	EventFlushEnd
)

var eventKindNames = map[EventKind]string{
	EventMount:       "mount",
	EventRender:      "render",
	EventCommit:      "commit",
	EventEffectRun:   "effect",
	EventEffectError: "effect_error",
	EventCleanup:     "cleanup",
	EventUnmount:     "unmount",
	EventFlushStart:  "flush_start",
	EventFlushEnd:    "flush_end",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event describes one step of the runtime. Fields that do not apply to a
// kind are zero; Slot is -1 for instance-level and flush-level events.
type Event struct {
	Kind     EventKind
	Instance uint64
	Name     string
	Slot     int
	// Batch is the number of batches run, set on EventFlushEnd.
	Batch int
	// Value is the newly committed value, set on EventCommit.
	Value    any
	Duration time.Duration
	Err      error
}

// Observer receives runtime events synchronously, on the runtime's
// execution stream. Observers must not call back into the runtime.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

type multiObserver []Observer

func (m multiObserver) Observe(ev Event) {
	for _, o := range m {
		o.Observe(ev)
	}
}

// Observers fans events out to every non-nil observer, in order.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}
