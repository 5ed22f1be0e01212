package telemetry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/snapfx/pkg/snapfx"
)

func newRuntime(t *testing.T, o snapfx.Observer) *snapfx.Runtime {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return snapfx.New(snapfx.WithLogger(logger), snapfx.WithObserver(o))
}

// counter is a component with one state cell and one effect on it. The
// effect returns a cleanup, so every re-run and the teardown run one.
func counter(count **snapfx.State[int]) snapfx.Component {
	return func(c *snapfx.Instance) {
		n := snapfx.UseState(c, 0)
		*count = n
		snapfx.UseEffect(c, func() snapfx.Cleanup {
			return func() {}
		}, snapfx.On(n.Get()))
	}
}

func failing(c *snapfx.Instance) {
	snapfx.UseEffect(c, func() snapfx.Cleanup {
		panic("boom")
	}, snapfx.Once())
}
