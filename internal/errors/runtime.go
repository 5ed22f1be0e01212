package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/snapfx/pkg/host"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

// FromRuntime maps an error returned by the runtime or the host loop to a
// coded Error wrapping it. Joined errors take the code of their most
// specific member. Errors the runtime does not know are E140.
func FromRuntime(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}

	var (
		shape  *snapfx.SlotShapeError
		effect *snapfx.EffectError
		render *snapfx.RenderError
		double *snapfx.DoubleTeardownError
		panicE *host.PanicError
	)

	switch {
	case stderrors.Is(err, snapfx.ErrHookOutsideRender):
		return New("E006").Wrap(err)
	case stderrors.As(err, &shape):
		return New("E001").Wrap(err).
			WithSuggestion(fmt.Sprintf("Check the hooks of component %q around slot %d.", shape.Name, shape.Slot))
	case stderrors.Is(err, snapfx.ErrRenderStorm):
		return New("E005").Wrap(err).
			WithSuggestion("Raise runtime.maxBatchesPerFlush only if the feedback loop is intended.")
	case stderrors.As(err, &render):
		return New("E004").Wrap(err).
			WithSuggestion(fmt.Sprintf("Component %q panicked with: %v", render.Name, render.Panic))
	case stderrors.As(err, &effect):
		return New("E003").Wrap(err).
			WithSuggestion(fmt.Sprintf("The %s of slot %d in %q panicked with: %v", effect.Phase, effect.Slot, effect.Name, effect.Panic))
	case stderrors.As(err, &double):
		return New("E002").Wrap(err)
	case stderrors.As(err, &panicE):
		return New("E007").Wrap(err)
	case stderrors.Is(err, host.ErrClosed):
		return New("E008").Wrap(err)
	}
	return New("E140").Wrap(err)
}
