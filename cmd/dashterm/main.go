package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/dashterm/internal/app"
)

var (
	flagConfigFilePath string        // value of --config flag
	flagFrontend       string        // value of --frontend flag
	flagVerbose        bool          // value of --verbose flag
	flagPoll           time.Duration // value of --poll flag

	exitCode int
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "config file to load (default ~/.config/dashterm/config.toml)")
	rootCmd.Flags().StringVar(&flagFrontend, "frontend", "", `window to use: "tea" or "classic"`)
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.Flags().DurationVar(&flagPoll, "poll", 0, "backend health poll interval (default 2s)")

	rootCmd.AddCommand(versionCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dashterm: %v\n", err)
		return 1
	}
	return exitCode
}

var rootCmd = &cobra.Command{
	Use:           "dashterm",
	Short:         "Run a dashboard with its HTTP backend and a terminal frontend",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode = app.Run(cmd.Context(), app.Options{
			ConfigPath: flagConfigFilePath,
			Frontend:   flagFrontend,
			Verbose:    flagVerbose,
			PollEvery:  flagPoll,
			Stderr:     cmd.ErrOrStderr(),
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print build information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Fprintln(out, "dashterm: version info not available")
			return
		}
		fmt.Fprintf(out, "dashterm: %s\n", info.Main.Version)
		fmt.Fprintf(out, "go:       %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Fprintf(out, "commit:   %s\n", s.Value)
			case "vcs.time":
				fmt.Fprintf(out, "date:     %s\n", s.Value)
			case "vcs.modified":
				fmt.Fprintf(out, "dirty:    %s\n", s.Value)
			}
		}
	},
}
