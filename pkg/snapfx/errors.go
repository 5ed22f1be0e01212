package snapfx

import (
	"errors"
	"fmt"
)

// ErrStaleSlotShape is wrapped by SlotShapeError. The slot count, a slot's
// kind, or an effect's dependency shape differs between renders of the same
// instance. It is fatal for the flush that detects it.
var ErrStaleSlotShape = errors.New("snapfx: slot shape changed between renders")

// ErrDoubleTeardown is wrapped by DoubleTeardownError.
var ErrDoubleTeardown = errors.New("snapfx: instance already torn down")

// ErrEffectCallback is wrapped by EffectError. The effect body (or the
// cleanup that preceded it) panicked.
var ErrEffectCallback = errors.New("snapfx: effect callback failed")

// ErrRender is wrapped by RenderError. The component body panicked.
var ErrRender = errors.New("snapfx: render failed")

// ErrRenderStorm is returned by Flush when more batches were needed than the
// storm budget allows. This usually means an effect writes state that
// re-triggers itself on every commit.
var ErrRenderStorm = errors.New("snapfx: render storm budget exceeded")

// ErrHookOutsideRender is the panic value of UseState, UseEffect and UseChild
// when they are called on an instance that is not currently rendering.
var ErrHookOutsideRender = errors.New("snapfx: hook called outside render")

// ErrNoDispatcher is the panic value of Interval and Timeout when the
// runtime's clock fires on its own goroutines and no Dispatcher is set.
// Install one with host.New or WithDispatcher.
var ErrNoDispatcher = errors.New("snapfx: timers on a real clock need a Dispatcher")

// SlotShapeError reports a declaration that does not match the shape locked
// in by the instance's first render.
type SlotShapeError struct {
	Instance uint64
	Name     string
	Slot     int
	Reason   string
}

func (e *SlotShapeError) Error() string {
	return fmt.Sprintf("snapfx: %s#%d slot %d: %s", e.Name, e.Instance, e.Slot, e.Reason)
}

func (e *SlotShapeError) Unwrap() error { return ErrStaleSlotShape }

// DoubleTeardownError is returned by Unmount for an instance that was
// already torn down.
type DoubleTeardownError struct {
	Instance uint64
	Name     string
}

func (e *DoubleTeardownError) Error() string {
	return fmt.Sprintf("snapfx: %s#%d: teardown called twice", e.Name, e.Instance)
}

func (e *DoubleTeardownError) Unwrap() error { return ErrDoubleTeardown }

// EffectError reports a panicking effect body or cleanup. When the body
// failed, the slot is left without a stored cleanup: the previous cleanup
// already ran and the failed run registered none.
type EffectError struct {
	Instance uint64
	Name     string
	Slot     int
	// Phase is "effect", "cleanup" or "unmount". Unmount failures have
	// Slot -1.
	Phase string
	// Panic is the recovered value.
	Panic any
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("snapfx: %s#%d slot %d: %s panicked: %v", e.Name, e.Instance, e.Slot, e.Phase, e.Panic)
}

// Unwrap exposes ErrEffectCallback and, when the panic value is an error,
// that error too.
func (e *EffectError) Unwrap() []error {
	if err, ok := e.Panic.(error); ok {
		return []error{ErrEffectCallback, err}
	}
	return []error{ErrEffectCallback}
}

// RenderError reports a panicking component body.
type RenderError struct {
	Instance uint64
	Name     string
	Panic    any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("snapfx: %s#%d: render panicked: %v", e.Name, e.Instance, e.Panic)
}

func (e *RenderError) Unwrap() []error {
	if err, ok := e.Panic.(error); ok {
		return []error{ErrRender, err}
	}
	return []error{ErrRender}
}

// renderFailure converts a value recovered from a component body into the
// error reported to the host.
func renderFailure(c *Instance, r any) error {
	if err, ok := r.(*SlotShapeError); ok {
		return err
	}
	return &RenderError{Instance: c.id, Name: c.name, Panic: r}
}
