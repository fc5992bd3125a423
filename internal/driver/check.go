// Package driver runs the checking pipeline over syntax tree files.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tao/internal/ast"
	"tao/internal/buildpipeline"
	"tao/internal/diag"
	"tao/internal/hir"
	"tao/internal/lower"
	"tao/internal/mono"
	"tao/internal/observ"
	"tao/internal/source"
	"tao/internal/trace"
)

// Options configures a check.
type Options struct {
	MaxDiagnostics int
	Mono           mono.Options
	// Timings records phase durations and appends them as an info diagnostic.
	Timings bool
	// Progress receives per-stage events; nil disables them.
	Progress buildpipeline.ProgressSink
	// Emit runs after a successful concretization, as the emit stage.
	Emit func(*Result) error
	// Name is the file name used in progress events; the path when empty.
	Name string
	// Totals, when set, accumulates stage durations over every checked file.
	Totals *buildpipeline.Timings
}

// Result is everything known about one checked file.
type Result struct {
	Path    string
	FileSet *source.FileSet
	File    source.FileID
	Bag     *diag.Bag
	Module  *ast.Module
	HIR     *hir.Program
	Mono    *mono.Program
	Timer   *observ.Timer
}

// Failed reports whether the file has errors.
func (r *Result) Failed() bool { return r.Bag.HasErrors() }

type run struct {
	opts  Options
	res   *Result
	name  string
	timer *observ.Timer
}

func (r *run) stage(st buildpipeline.Stage, status buildpipeline.Status, err error, elapsed time.Duration) {
	buildpipeline.Emit(r.opts.Progress, buildpipeline.Event{File: r.name, Stage: st, Status: status, Err: err, Elapsed: elapsed})
}

// phase times one stage; the returned func finishes it with the outcome.
func (r *run) phase(st buildpipeline.Stage) func(note string, status buildpipeline.Status, err error) {
	r.stage(st, buildpipeline.StatusWorking, nil, 0)
	started := time.Now()
	end := func(string) {}
	if r.timer != nil {
		end = r.timer.Start(string(st))
	}
	return func(note string, status buildpipeline.Status, err error) {
		end(note)
		elapsed := time.Since(started)
		if r.opts.Totals != nil {
			r.opts.Totals.Add(st, elapsed)
		}
		r.stage(st, status, err, elapsed)
	}
}

func (r *run) skipFrom(st buildpipeline.Stage) {
	skip := false
	for _, s := range buildpipeline.Stages {
		skip = skip || s == st
		if skip {
			r.stage(s, buildpipeline.StatusSkipped, nil, 0)
		}
	}
}

// CheckFile decodes the tree at path, lowers and solves it, and when that
// produced no errors concretizes it. Problems with the input are diagnostics
// in the result; the error is reserved for cancellation and internal failures
// of concretization.
func CheckFile(ctx context.Context, path string, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID)
	span.WithExtra("path", path)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	r := &run{
		opts: opts,
		name: opts.Name,
		res: &Result{
			Path:    path,
			FileSet: source.NewFileSet(),
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	if r.name == "" {
		r.name = path
	}
	if opts.Timings {
		r.timer = observ.NewTimer()
		r.res.Timer = r.timer
	}
	defer r.appendTimings()
	// lowering may reach one problem from several uses
	rep := &diag.CountingReporter{Next: diag.NewDedupReporter(diag.BagReporter{Bag: r.res.Bag})}

	if err := ctx.Err(); err != nil {
		r.skipFrom(buildpipeline.StageDecode)
		return r.res, err
	}

	done := r.phase(buildpipeline.StageDecode)
	if !r.decode(rep) {
		done("", buildpipeline.StatusError, nil)
		r.skipFrom(buildpipeline.StageLower)
		return r.res, nil
	}
	done("", buildpipeline.StatusDone, nil)

	done = r.phase(buildpipeline.StageLower)
	r.res.HIR = lower.Check(ctx, r.res.Module, r.res.File, rep)
	if rep.Errors > 0 {
		done(fmt.Sprintf("%d errors", rep.Errors), buildpipeline.StatusError, nil)
		r.skipFrom(buildpipeline.StageMono)
		return r.res, nil
	}
	done(fmt.Sprintf("%d defs", len(r.res.HIR.Defs)), buildpipeline.StatusDone, nil)

	done = r.phase(buildpipeline.StageMono)
	prog, err := mono.Concretize(ctx, r.res.HIR, opts.Mono, rep)
	if err != nil || prog == nil {
		done("", buildpipeline.StatusError, err)
		r.skipFrom(buildpipeline.StageEmit)
		return r.res, err
	}
	r.res.Mono = prog
	done(fmt.Sprintf("%d specializations", len(prog.Defs)), buildpipeline.StatusDone, nil)

	if opts.Emit == nil {
		r.stage(buildpipeline.StageEmit, buildpipeline.StatusSkipped, nil, 0)
		return r.res, nil
	}
	done = r.phase(buildpipeline.StageEmit)
	if err := opts.Emit(r.res); err != nil {
		done("", buildpipeline.StatusError, err)
		return r.res, fmt.Errorf("emit %s: %w", path, err)
	}
	done("", buildpipeline.StatusDone, nil)
	return r.res, nil
}

// decode reads the tree and registers the source text it embeds. Spans in the
// tree are byte offsets into that text, so it is stored without normalization.
func (r *run) decode(rep diag.Reporter) bool {
	path := r.res.Path
	fs := r.res.FileSet

	format, err := ast.FormatForPath(path)
	if err != nil {
		r.res.File = fs.Add(path, nil, source.FileVirtual)
		diag.ReportError(rep, diag.IOLoadFileError, source.Span{File: r.res.File}, err.Error()).Emit()
		return false
	}
	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		r.res.File = fs.Add(path, nil, source.FileVirtual)
		msg := err.Error()
		if errors.Is(err, os.ErrNotExist) {
			msg = fmt.Sprintf("file %s does not exist", path)
		}
		diag.ReportError(rep, diag.IOLoadFileError, source.Span{File: r.res.File}, msg).Emit()
		return false
	}
	mod, err := ast.Decode(bytes.NewReader(data), format)
	if err != nil {
		r.res.File = fs.Add(path, nil, source.FileVirtual)
		diag.ReportError(rep, diag.IODecodeError, source.Span{File: r.res.File}, err.Error()).Emit()
		return false
	}
	r.res.Module = mod
	r.res.File = fs.Add(sourcePath(path, mod.Source.Path), []byte(mod.Source.Text), source.FileVirtual)
	return true
}

// sourcePath resolves the source path a tree names relative to the tree file.
func sourcePath(treePath, named string) string {
	switch {
	case named == "":
		return treePath
	case filepath.IsAbs(named):
		return named
	}
	return filepath.Join(filepath.Dir(treePath), named)
}
