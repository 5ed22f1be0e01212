package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vango-dev/snapfx/pkg/snapfx"
)

func TestPrometheus_CountsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg))
	rt := newRuntime(t, m)

	var count *snapfx.State[int]
	c, err := rt.Mount("counter", counter(&count))
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	if err := rt.Burst(func() { count.Set(1) }); err != nil {
		t.Fatalf("Burst() error = %v", err)
	}

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"renders", m.rendersTotal.WithLabelValues("counter"), 2},
		{"commits", m.commitsTotal.WithLabelValues("counter"), 1},
		{"effect runs", m.effectRuns.WithLabelValues("counter"), 2},
		{"cleanups", m.cleanupsTotal.WithLabelValues("counter"), 1},
		{"mounted", m.mounted, 1},
		{"flushes", m.flushesTotal, 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if err := rt.Unmount(c); err != nil {
		t.Fatalf("Unmount() error = %v", err)
	}
	if got := testutil.ToFloat64(m.mounted); got != 0 {
		t.Errorf("mounted after Unmount = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.cleanupsTotal.WithLabelValues("counter")); got != 2 {
		t.Errorf("cleanups after Unmount = %v, want 2", got)
	}
}

func TestPrometheus_EffectErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg))
	rt := newRuntime(t, m)

	if _, err := rt.Mount("failing", failing); err == nil {
		t.Fatal("Mount() error = nil, want effect error")
	}
	if got := testutil.ToFloat64(m.effectErrors.WithLabelValues("failing")); got != 1 {
		t.Errorf("effect errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.effectRuns.WithLabelValues("failing")); got != 0 {
		t.Errorf("effect runs = %v, want 0", got)
	}
}

func TestPrometheus_EmptyFlushNotCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg))
	rt := newRuntime(t, m)

	if err := rt.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := testutil.ToFloat64(m.flushesTotal); got != 0 {
		t.Errorf("flushes = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(m.flushDuration); got != 1 {
		t.Errorf("flush duration series = %d, want 1", got)
	}
}

func TestPrometheus_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("demo"), WithSubsystem("ui"))
	m.Observe(snapfx.Event{Kind: snapfx.EventMount, Slot: -1})

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "demo_ui_mounted_instances" {
			found = true
		}
	}
	if !found {
		t.Error("demo_ui_mounted_instances not registered")
	}
}
