package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"tao/internal/buildpipeline"
	"tao/internal/trace"
)

// CheckFiles checks every path, at most jobs at a time (GOMAXPROCS when
// jobs <= 0). Results keep the order of paths and every file gets its own bag.
// One file failing internally does not stop the others; the first such error
// is returned alongside all results.
func CheckFiles(ctx context.Context, paths []string, names []string, opts Options, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "check-files", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	if len(names) != len(paths) {
		names = paths
	}
	buildpipeline.Queue(opts.Progress, names)

	results := make([]*Result, len(paths))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, p := range paths {
		fileOpts := opts
		fileOpts.Name = names[i]
		g.Go(func() error {
			res, err := CheckFile(ctx, p, fileOpts)
			results[i] = res
			return err
		})
	}
	return results, g.Wait()
}

// Failed reports whether any result has errors.
func Failed(results []*Result) bool {
	for _, r := range results {
		if r == nil || r.Failed() {
			return true
		}
	}
	return false
}
