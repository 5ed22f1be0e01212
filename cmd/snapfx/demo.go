package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/snapfx/internal/config"
)

func demoCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the state and effects page once",
		Long: `Run the learn-state-and-effects page on a host loop with a real clock.

The demo:
  1. shows the CountButton, which starts ticking
  2. presses +10 (the handler logs the pre-write snapshot)
  3. waits for the configured number of ticks
  4. changes the study message
  5. hides the CountButton, which stops its interval
and prints the final view and instance snapshot as JSON.

Examples:
  snapfx demo
  snapfx demo --ticks=5 --interval=200ms
  snapfx demo --config=snapfx.yaml --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDemo(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags.register(cmd)
	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config, out, logOut io.Writer) error {
	a, err := newApp(cfg, newLogger(cfg, logOut))
	if err != nil {
		return err
	}
	stop := a.start(ctx)
	defer stop()

	if err := a.mountPage(ctx); err != nil {
		return err
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"show", func() error { return a.do(ctx, a.page.Toggle) }},
		{"increment", func() error { return a.do(ctx, a.page.Increment) }},
		{"wait", func() error { return a.waitTicks(ctx, cfg.Demo.Ticks) }},
		{"change message", func() error { return a.do(ctx, a.page.ChangeMessage) }},
		{"hide", func() error { return a.do(ctx, a.page.Toggle) }},
	}
	for _, step := range steps {
		a.logger.Debug("demo step", "step", step.name)
		if err := step.fn(); err != nil {
			return err
		}
	}

	s, err := a.snapshot(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
