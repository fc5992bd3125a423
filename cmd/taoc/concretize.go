package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tao/internal/diag"
	"tao/internal/diagfmt"
	"tao/internal/driver"
	"tao/internal/mono"
)

var concretizeCmd = &cobra.Command{
	Use:   "concretize [flags] <file.tast|file.json>",
	Short: "Check a syntax tree and write its concretized program as msgpack",
	Args:  cobra.ExactArgs(1),
	RunE:  runConcretize,
}

func init() {
	concretizeCmd.Flags().StringP("output", "o", "", "output file (default: <input>.mono.mpk)")
	concretizeCmd.Flags().Int("mono-jobs", 1, "specialization workers")
	concretizeCmd.Flags().String("entry", "main", "attribute marking the entry definition")
}

// outputName derives the default export path from the input path.
func outputName(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".mono.mpk"
}

func runConcretize(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	input := args[0]
	if output == "" {
		output = outputName(input)
	}

	opts := driverOptions(cfg, timings)
	opts.Emit = func(res *driver.Result) error {
		// #nosec G304 -- output path comes from the command line
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := mono.Export(f, res.Mono); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}

	res, err := driver.CheckFile(cmd.Context(), input, opts)
	if err != nil {
		return err
	}
	bag := withoutCode(res.Bag, diag.ObsTimings)
	bag.Sort()
	if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, res.FileSet, diagfmt.PrettyOpts{Color: useColor, ShowNotes: true}); err != nil {
		return err
	}
	if res.Failed() || res.Mono == nil {
		return errFailed
	}
	if timings && res.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}
	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d specializations to %s\n", len(res.Mono.Defs), output)
	}
	return nil
}
