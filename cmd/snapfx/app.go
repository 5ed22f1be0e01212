package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vango-dev/snapfx/internal/config"
	"github.com/vango-dev/snapfx/internal/demo"
	"github.com/vango-dev/snapfx/internal/errors"
	"github.com/vango-dev/snapfx/pkg/host"
	"github.com/vango-dev/snapfx/pkg/snapfx"
	"github.com/vango-dev/snapfx/pkg/telemetry"
)

// runFlags are shared by demo and serve.
type runFlags struct {
	configPath string
	ticks      int
	interval   time.Duration
	logLevel   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Config file (default: snapfx.json or snapfx.yaml in the working directory)")
	cmd.Flags().IntVarP(&f.ticks, "ticks", "n", 0, "Ticks to wait for before hiding the button (default from config)")
	cmd.Flags().DurationVarP(&f.interval, "interval", "i", 0, "Tick interval (default from config)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// load reads the configuration and applies command-line overrides.
func (f *runFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return nil, err
	}

	if f.ticks > 0 {
		cfg.Demo.Ticks = f.ticks
	}
	if f.interval > 0 {
		cfg.Demo.Interval = f.interval.String()
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is one runtime driven by a host loop, with the demo page mounted on
// it.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	rt       *snapfx.Runtime
	loop     *host.Loop
	page     *demo.Page
	ticks    chan struct{}
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

func newApp(cfg *config.Config, logger *slog.Logger, observers ...snapfx.Observer) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		ticks:    make(chan struct{}, 64),
	}

	observers = append(observers,
		telemetry.Prometheus(
			telemetry.WithRegistry(a.registry),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		),
		telemetry.Tracing(telemetry.WithTracerName(cfg.Tracing.TracerName)),
		snapfx.ObserverFunc(a.watchTicks),
	)

	opts, err := cfg.RuntimeOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts,
		snapfx.WithLogger(logger.With("component", "runtime")),
		snapfx.WithObserver(snapfx.Observers(observers...)),
	)

	a.rt = snapfx.New(opts...)
	a.loop = host.New(a.rt, host.WithLogger(logger.With("component", "loop")))
	a.page = demo.NewPage(
		demo.WithInterval(cfg.Interval()),
		demo.WithLogger(logger.With("component", "page")),
	)
	return a, nil
}

// watchTicks signals every committed CountButton timer value.
func (a *app) watchTicks(ev snapfx.Event) {
	if ev.Kind != snapfx.EventCommit || ev.Name != demo.ChildName {
		return
	}
	select {
	case a.ticks <- struct{}{}:
	default:
	}
}

// start runs the loop until the returned stop is called.
func (a *app) start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.loop.Run(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("loop stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		a.loop.Close()
		<-done
	}
}

// do runs fn as a burst on the loop, converting runtime errors to coded
// ones.
func (a *app) do(ctx context.Context, fn func()) error {
	if err := a.loop.Do(ctx, fn); err != nil {
		return errors.FromRuntime(err)
	}
	return nil
}

func (a *app) mountPage(ctx context.Context) error {
	var mountErr error
	err := a.do(ctx, func() {
		_, mountErr = a.rt.Mount("learn-state-and-effects", a.page.LearnStateAndEffects)
	})
	if err != nil {
		return err
	}
	if mountErr != nil {
		return errors.FromRuntime(mountErr)
	}
	return nil
}

// waitTicks blocks until n more timer commits have happened.
func (a *app) waitTicks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-a.ticks:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// snapshot is what demo prints.
type snapshot struct {
	View      demo.View             `json:"view"`
	Instances []snapfx.InstanceInfo `json:"instances"`
	Loop      host.Stats            `json:"loop"`
}

func (a *app) snapshot(ctx context.Context) (snapshot, error) {
	var s snapshot
	err := a.do(ctx, func() {
		s.View = a.page.View()
		s.Instances = a.rt.Instances()
	})
	s.Loop = a.loop.Stats()
	return s, err
}
