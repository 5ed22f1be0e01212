package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/snapfx/internal/config"
	"github.com/vango-dev/snapfx/internal/errors"
	"github.com/vango-dev/snapfx/pkg/devtools"
)

func serveCmd() *cobra.Command {
	var (
		flags runFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the page behind the devtools server",
		Long: `Mount the learn-state-and-effects page, show the ticking CountButton
and serve devtools until interrupted.

Routes:
  GET /healthz       health check
  GET /metrics       Prometheus metrics
  GET /snapshot      mounted instances as JSON
  GET /devtools/ws   websocket stream of runtime events

The server has no authentication. Keep --addr on a loopback address;
browser websocket clients are only accepted from loopback origins.

Examples:
  snapfx serve
  snapfx serve --addr=127.0.0.1:9090 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Devtools.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Devtools listen address (default from config)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logOut io.Writer) error {
	logger := newLogger(cfg, logOut)
	hub := devtools.NewHub(devtools.WithHubLogger(logger.With("component", "devtools")))
	a, err := newApp(cfg, logger, hub)
	if err != nil {
		return err
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	stop := a.start(ctx)
	defer stop()

	if err := a.mountPage(ctx); err != nil {
		return err
	}
	if err := a.do(ctx, a.page.Toggle); err != nil {
		return err
	}

	if !devtools.IsLoopbackAddr(cfg.Devtools.Addr) {
		a.logger.Warn("devtools listening beyond loopback; the server has no authentication", "addr", cfg.Devtools.Addr)
	}
	srv := devtools.NewServer(a.loop, hub,
		devtools.WithGatherer(a.registry),
		devtools.WithLogger(a.logger.With("component", "devtools")),
	)
	if err := srv.ListenAndServe(ctx, cfg.Devtools.Addr); err != nil {
		return errors.New("E142").
			WithSuggestion("Pick another address with --addr").
			Wrap(err)
	}
	return nil
}
