package demo

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

type fixture struct {
	rt    *snapfx.Runtime
	clock *snapfx.ManualClock
	page  *Page
	inst  *snapfx.Instance
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := snapfx.NewManualClock()
	rt := snapfx.New(
		snapfx.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		snapfx.WithClock(clock),
	)

	var logs bytes.Buffer
	page := NewPage(
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithInterval(time.Second),
	)
	inst, err := rt.Mount("learn-state-and-effects", page.LearnStateAndEffects)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return &fixture{rt: rt, clock: clock, page: page, inst: inst, logs: &logs}
}

func (f *fixture) burst(t *testing.T, fn func()) {
	t.Helper()
	if err := f.rt.Burst(fn); err != nil {
		t.Fatalf("Burst() error = %v", err)
	}
}

func (f *fixture) wantLog(t *testing.T, line string) {
	t.Helper()
	if !strings.Contains(f.logs.String(), line) {
		t.Errorf("logs missing %q:\n%s", line, f.logs.String())
	}
}

func TestMountRunsEveryEffectOnce(t *testing.T) {
	f := newFixture(t)

	f.wantLog(t, `msg="count in effect" count=0`)
	f.wantLog(t, `msg="isShow in effect" isShow=false`)
	f.wantLog(t, `msg="studyMessage in effect" studyMessage="Let's learn about state and effects"`)

	want := View{
		Heading:     "Learning state and effects (0)",
		Message:     InitialMessage,
		ToggleLabel: "Show",
	}
	if diff := cmp.Diff(want, f.page.View()); diff != "" {
		t.Errorf("View() mismatch (-want +got):\n%s", diff)
	}
}

func TestIncrementReadsSnapshot(t *testing.T) {
	f := newFixture(t)

	f.burst(t, f.page.Increment)

	f.wantLog(t, `msg="count in event handler" count=0`)
	f.wantLog(t, `msg="count in effect" count=10`)
	if got := f.page.View().Count; got != 10 {
		t.Errorf("Count = %d, want 10", got)
	}
	if got := f.page.View().Heading; got != "Learning state and effects (10)" {
		t.Errorf("Heading = %q", got)
	}

	// Both presses compute from the same snapshot.
	f.burst(t, func() {
		f.page.Increment()
		f.page.Increment()
	})
	if got := f.page.View().Count; got != 20 {
		t.Errorf("Count after double press = %d, want 20", got)
	}
}

func TestChangeMessage(t *testing.T) {
	f := newFixture(t)

	f.burst(t, f.page.ChangeMessage)
	f.wantLog(t, `msg="studyMessage in effect" studyMessage="You've got this! 😄"`)
	if got := f.page.View().Message; got != ChangedMessage {
		t.Errorf("Message = %q, want %q", got, ChangedMessage)
	}

	renders := f.inst.Renders()
	f.burst(t, f.page.ChangeMessage)
	if got := f.inst.Renders(); got != renders {
		t.Errorf("Renders() = %d after unchanged write, want %d", got, renders)
	}
}

func TestToggleMountsTickingChild(t *testing.T) {
	f := newFixture(t)

	f.burst(t, f.page.Toggle)
	f.wantLog(t, `msg="isShow in event handler" isShow=false`)
	f.wantLog(t, `msg="isShow in effect" isShow=true`)

	child := f.page.Child()
	if child == nil {
		t.Fatal("Child() = nil after showing")
	}
	if got := f.page.View().ButtonLabel; got != "+10 (0)" {
		t.Errorf("ButtonLabel = %q, want %q", got, "+10 (0)")
	}

	for i := 1; i <= 3; i++ {
		if n := f.clock.Advance(time.Second); n != 1 {
			t.Fatalf("tick %d fired %d callbacks, want 1", i, n)
		}
		if got, want := f.page.View().Timer, i*TickStep; got != want {
			t.Errorf("Timer after tick %d = %d, want %d", i, got, want)
		}
	}
	if got := f.page.View().ButtonLabel; got != "+10 (30)" {
		t.Errorf("ButtonLabel = %q, want %q", got, "+10 (30)")
	}

	f.burst(t, f.page.Toggle)
	if !child.IsTornDown() {
		t.Error("child not torn down after hiding")
	}
	if f.page.Child() != nil {
		t.Error("Child() != nil after hiding")
	}
	if got := f.clock.Active(); got != 0 {
		t.Errorf("clock.Active() = %d after hiding, want 0", got)
	}
	if n := f.clock.Advance(5 * time.Second); n != 0 {
		t.Errorf("Advance after hiding fired %d callbacks, want 0", n)
	}
	if got := f.page.View(); got.ShowButton || got.Timer != 0 || got.ButtonLabel != "" {
		t.Errorf("View() after hiding = %+v", got)
	}
}

func TestCountButtonTimerProgression(t *testing.T) {
	clock := snapfx.NewManualClock()
	rt := snapfx.New(
		snapfx.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		snapfx.WithClock(clock),
	)

	var seen []int
	c, err := rt.Mount(ChildName, CountButton(CountButtonProps{
		Interval: 500 * time.Millisecond,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnRender: func(timer int) { seen = append(seen, timer) },
	}))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	clock.Advance(1500 * time.Millisecond)
	if diff := cmp.Diff([]int{0, 10, 20, 30}, seen); diff != "" {
		t.Errorf("timer renders mismatch (-want +got):\n%s", diff)
	}

	if err := rt.Unmount(c); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	clock.Advance(10 * time.Second)
	if len(seen) != 4 {
		t.Errorf("renders after unmount = %v, want none added", seen)
	}
}

func TestHandlersBeforeMountAreNoops(t *testing.T) {
	p := NewPage()
	p.Increment()
	p.Toggle()
	p.ChangeMessage()
	if p.Child() != nil {
		t.Error("Child() != nil before mount")
	}
}
