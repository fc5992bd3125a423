package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tao/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "taoc",
	Short:         "Type checker and concretizer for tao syntax trees",
	Long:          `taoc checks parsed tao modules, infers their types and concretizes generic code for the backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		if err := setupTracing(cmd); err != nil {
			return err
		}
		return startProfiling(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finish(cmd.ErrOrStderr())
	},
}

// errFailed means diagnostics were already printed; only the exit code is left.
var errFailed = errors.New("check failed")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(concretizeCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (default from config, 100)")
	rootCmd.PersistentFlags().String("config", "", "path to tao.toml or tao.yaml (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace mode (stream|ring); a ring is dumped when a command fails")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring trace")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")
}

// finish releases what PersistentPreRunE set up. Cobra skips post-run hooks
// when a command fails, so main calls it as well.
func finish(errOut io.Writer) {
	stopProfiling(errOut)
	closeTracing(errOut)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		dumpTraceRing(os.Stderr)
		finish(os.Stderr)
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "taoc: %v\n", err)
		}
		os.Exit(1)
	}
}
