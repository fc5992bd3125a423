package diag

import (
	set "github.com/hashicorp/go-set/v3"

	"tao/internal/source"
)

// DedupReporter forwards the first of several identical reports: same code,
// primary span and message. A def reached from many call sites can otherwise
// report the same problem once per site.
type DedupReporter struct {
	next Reporter
	seen *set.Set[dedupKey]
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: set.New[dedupKey](16)}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil || r.next == nil {
		return
	}
	if !r.seen.Insert(keyOf(&Diagnostic{Code: code, Primary: primary, Message: msg})) {
		return
	}
	r.next.Report(code, sev, primary, msg, notes)
}
