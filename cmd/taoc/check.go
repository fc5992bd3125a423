package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"tao/internal/buildpipeline"
	"tao/internal/diag"
	"tao/internal/diagfmt"
	"tao/internal/driver"
	"tao/internal/hir"
	"tao/internal/mono"
	"tao/internal/project"
	"tao/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.tast|file.json|directory>...",
	Short: "Type check syntax trees and concretize their entry points",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "files checked in parallel (0=auto)")
	checkCmd.Flags().Int("mono-jobs", 1, "specialization workers per file")
	checkCmd.Flags().String("entry", "main", "attribute marking the entry definition")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().Bool("emit-mono", false, "print the concretized program of every file that checks")
	checkCmd.Flags().Bool("emit-hir", false, "print the typed tree of every file that lowers without errors")
}

type checkFlags struct {
	quiet    bool
	timings  bool
	ui       progressMode
	emitMono bool
	emitHIR  bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	root := cmd.Root().PersistentFlags()
	if f.quiet, err = root.GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if f.timings, err = root.GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = parseProgressMode(uiValue); err != nil {
		return f, err
	}
	if f.emitMono, err = cmd.Flags().GetBool("emit-mono"); err != nil {
		return f, fmt.Errorf("failed to get emit-mono flag: %w", err)
	}
	if f.emitHIR, err = cmd.Flags().GetBool("emit-hir"); err != nil {
		return f, fmt.Errorf("failed to get emit-hir flag: %w", err)
	}
	return f, nil
}

// monoDumps collects --emit-mono output per file so it prints in input order.
type monoDumps struct {
	mu  sync.Mutex
	out map[*driver.Result]*bytes.Buffer
}

func (m *monoDumps) emit(res *driver.Result) error {
	var buf bytes.Buffer
	if err := mono.Print(&buf, res.Mono); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.out[res] = &buf
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	paths, err := collectInputs(args)
	if err != nil {
		return err
	}
	names := buildpipeline.DisplayNames(paths, ".")
	if len(names) != len(paths) {
		// одинаковые пути: показываем как есть
		names = paths
	}

	opts := driverOptions(cfg, flags.timings)
	totals := &buildpipeline.Timings{}
	opts.Totals = totals
	dumps := &monoDumps{out: make(map[*driver.Result]*bytes.Buffer)}
	if flags.emitMono {
		opts.Emit = dumps.emit
	}

	var results []*driver.Result
	if wantProgress(flags.ui, len(paths), flags.quiet, cfg.Emit.Format) {
		results, err = checkWithUI(cmd.Context(), paths, names, opts, cfg.Check.Jobs, cmd.ErrOrStderr())
	} else {
		results, err = driver.CheckFiles(cmd.Context(), paths, names, opts, cfg.Check.Jobs)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printDiagnostics(out, cfg.Emit.Format, results, flags); err != nil {
		return err
	}
	if flags.emitHIR {
		for _, res := range results {
			if res.HIR == nil || res.Failed() {
				continue
			}
			fmt.Fprintf(out, "== %s (hir)\n", res.Path)
			if err := hir.Dump(out, res.HIR); err != nil {
				return err
			}
		}
	}
	if flags.emitMono {
		for _, res := range results {
			if buf, ok := dumps.out[res]; ok {
				fmt.Fprintf(out, "== %s\n", res.Path)
				if _, err := buf.WriteTo(out); err != nil {
					return err
				}
			}
		}
	}
	if driver.Failed(results) {
		return errFailed
	}
	if !flags.quiet && cfg.Emit.Format == "pretty" {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d file(s)\n", len(results))
		if flags.timings && len(results) > 1 {
			printTotals(cmd.ErrOrStderr(), totals)
		}
	}
	return nil
}

func printTotals(w io.Writer, totals *buildpipeline.Timings) {
	fmt.Fprintln(w, "stage totals:")
	for _, st := range buildpipeline.Stages {
		fmt.Fprintf(w, "  %-8s %8.2f ms\n", st, float64(totals.Duration(st).Microseconds())/1000)
	}
}

func driverOptions(cfg project.Config, timings bool) driver.Options {
	return driver.Options{
		MaxDiagnostics: cfg.Check.MaxDiagnostics,
		Timings:        timings,
		Mono: mono.Options{
			EntryAttr: cfg.Check.EntryAttr,
			Jobs:      cfg.Check.MonoJobs,
		},
	}
}

// checkWithUI runs the check in the background while the progress view
// consumes its events.
func checkWithUI(ctx context.Context, paths, names []string, opts driver.Options, jobs int, out io.Writer) ([]*driver.Result, error) {
	events := make(chan buildpipeline.Event, 64)
	opts.Progress = buildpipeline.ChannelSink{Ch: events}

	var (
		results []*driver.Result
		runErr  error
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		defer close(events)
		results, runErr = driver.CheckFiles(ctx, paths, names, opts, jobs)
	}()
	uiErr := ui.Run("taoc check", names, events, out)
	// view closed early: keep the workers from blocking on a full channel
	go func() {
		for range events {
		}
	}()
	<-done
	if runErr != nil {
		return results, runErr
	}
	return results, uiErr
}

type fileDiagnostics struct {
	Path string `json:"path"`
	diagfmt.DiagnosticsOutput
}

type checkOutput struct {
	Files []fileDiagnostics `json:"files"`
}

func printDiagnostics(w io.Writer, format string, results []*driver.Result, flags checkFlags) error {
	if format == "json" {
		doc := checkOutput{Files: make([]fileDiagnostics, 0, len(results))}
		for _, res := range results {
			res.Bag.Sort()
			doc.Files = append(doc.Files, fileDiagnostics{
				Path: res.Path,
				DiagnosticsOutput: diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
					IncludePositions: true,
					IncludeNotes:     true,
				}),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	for _, res := range results {
		res.Bag.Dedup()
		bag := withoutCode(res.Bag, diag.ObsTimings)
		bag.Sort()
		if flags.quiet {
			bag = withoutSeverity(bag, diag.SevInfo)
		}
		if err := diagfmt.Pretty(w, bag, res.FileSet, diagfmt.PrettyOpts{Color: useColor, ShowNotes: true}); err != nil {
			return err
		}
		if flags.timings && res.Timer != nil && !flags.quiet {
			fmt.Fprintf(w, "timings for %s:\n%s", res.Path, res.Timer.Summary())
		}
	}
	return nil
}

func withoutCode(bag *diag.Bag, code diag.Code) *diag.Bag {
	return filterBag(bag, func(d diag.Diagnostic) bool { return d.Code != code })
}

func withoutSeverity(bag *diag.Bag, sev diag.Severity) *diag.Bag {
	return filterBag(bag, func(d diag.Diagnostic) bool { return d.Severity != sev })
}

func filterBag(bag *diag.Bag, keep func(diag.Diagnostic) bool) *diag.Bag {
	out := diag.NewBag(int(bag.Cap()))
	for _, d := range bag.Items() {
		if keep(d) {
			out.Add(d)
		}
	}
	return out
}
