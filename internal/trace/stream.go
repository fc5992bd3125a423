package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

// StreamTracer writes every event to w as soon as it is emitted.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	start  time.Time
	depth  map[uint64]int // open span -> nesting depth
	err    error
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{
		w:      w,
		level:  level,
		format: format,
		start:  time.Now(),
		depth:  make(map[uint64]int),
	}
}

func (t *StreamTracer) Emit(ev *Event) {
	if t.level == LevelError || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ev.Seq = NextSeq()

	d := 0
	if ev.ParentID != 0 {
		d = t.depth[ev.ParentID] + 1
	}
	switch ev.Kind {
	case KindSpanBegin:
		t.depth[ev.SpanID] = d
	case KindSpanEnd:
		delete(t.depth, ev.SpanID)
	}

	var line []byte
	if t.format == FormatNDJSON {
		line = encodeNDJSON(ev)
	} else {
		line = []byte(t.text(ev, d))
	}
	if t.err == nil {
		_, t.err = t.w.Write(line)
	}
}

func (t *StreamTracer) text(ev *Event, depth int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] %s", float64(ev.Time.Sub(t.start).Microseconds())/1000, strings.Repeat("  ", depth))
	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("> ")
	case KindSpanEnd:
		sb.WriteString("< ")
	default:
		sb.WriteString("* ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	// ключи сортируем, иначе вывод нестабилен
	for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
		if i == 0 {
			sb.WriteString(" {")
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", k, ev.Extra[k])
	}
	if len(ev.Extra) > 0 {
		sb.WriteByte('}')
	}
	sb.WriteByte('\n')
	return sb.String()
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span"`
	ParentID uint64            `json:"parent,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func encodeNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// Flush returns the first write error, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok && t.err == nil {
		t.err = f.Flush()
	}
	return t.err
}

// Close flushes and closes the writer when it is a Closer other than a std stream.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
