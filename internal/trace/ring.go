package trace

import (
	"io"
	"os"
	"sync"
)

// RingTracer keeps the most recent events for post-mortem dumps.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	level  Level
}

const defaultRingSize = 4096

func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = defaultRingSize
	}
	return &RingTracer{events: make([]Event, size), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()
	t.events[t.next] = *ev
	t.next++
	if t.next == len(t.events) {
		t.next = 0
		t.full = true
	}
}

// Snapshot returns the retained events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.next]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.next:]...)
	return append(out, t.events[:t.next]...)
}

// Dump writes the retained events to w as text.
func (t *RingTracer) Dump(w io.Writer) error {
	st := NewStreamTracer(w, LevelDebug, FormatText)
	events := t.Snapshot()
	if len(events) > 0 {
		st.start = events[0].Time
	}
	for i := range events {
		ev := events[i]
		st.Emit(&ev)
	}
	return st.Flush()
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }

func isStdStream(w io.Writer) bool {
	return w == os.Stdout || w == os.Stderr
}
