package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// specialization workers emit from several goroutines.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}

// Format is the encoding of streamed events.
type Format uint8

const (
	FormatText Format = iota
	FormatNDJSON
)

// Mode selects where events go.
type Mode uint8

const (
	// ModeStream writes events as they happen.
	ModeStream Mode = iota
	// ModeRing keeps the last events in memory.
	ModeRing
)

// ParseMode accepts "stream" or "ring".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	}
	return ModeStream, fmt.Errorf("invalid trace mode %q (want stream|ring)", s)
}

// Config describes a tracer.
type Config struct {
	Level Level
	Mode  Mode
	// Output wins over Path. Path "-" or "" is stderr; a .ndjson path selects NDJSON.
	Output   io.Writer
	Path     string
	Format   Format
	RingSize int
}

// New builds the tracer described by cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode == ModeRing {
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	}
	w := cfg.Output
	format := cfg.Format
	if w == nil {
		switch cfg.Path {
		case "", "-":
			w = os.Stderr
		default:
			f, err := os.Create(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("trace: open output: %w", err)
			}
			w = f
			if strings.HasSuffix(cfg.Path, ".ndjson") {
				format = FormatNDJSON
			}
		}
	}
	return NewStreamTracer(w, cfg.Level, format), nil
}
