package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// NextSeq returns the next global event number.
func NextSeq() uint64 { return seq.Add(1) }

// Span is an open begin/end pair. The zero and nil spans are inert.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{}
	}
	now := time.Now()
	s := &Span{t: t, id: spanIDs.Add(1), parent: parent, scope: scope, name: name, started: now}
	t.Emit(&Event{Time: now, Kind: KindSpanBegin, Scope: scope, SpanID: s.id, ParentID: parent, Name: name})
	return s
}

// End emits the end event and returns how long the span was open.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	s.t.Emit(&Event{
		Time:     now,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.t == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID is 0 for inert spans, so children of a skipped span become roots.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits a single event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, SpanID: spanIDs.Add(1), ParentID: parent, Name: name, Detail: detail})
}
