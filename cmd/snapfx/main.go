package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/snapfx/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}

	if err := rootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "snapfx",
		Short: "Snapshot state and effects runtime",
		Long: `snapfx runs components whose state reads are snapshots and whose
effects run after each commit when their dependencies change.

Commands:
  • demo   run the learn-state-and-effects page once and print it
  • serve  run the page behind the devtools server until interrupted`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		demoCmd(),
		serveCmd(),
		versionCmd(),
	)
	return root
}
