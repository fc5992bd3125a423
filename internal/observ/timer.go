// Package observ measures how long the phases of a check take.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step.
type Phase struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects phases in the order they start. Not safe for concurrent use;
// the driver keeps one per file.
type Timer struct {
	phases []Phase
	starts []time.Time
}

func NewTimer() *Timer { return &Timer{} }

// Start begins a phase; calling the returned func ends it with note.
func (t *Timer) Start(name string) func(note string) {
	idx := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name})
	t.starts = append(t.starts, time.Now())
	return func(note string) {
		t.phases[idx].Dur = time.Since(t.starts[idx])
		t.phases[idx].Note = note
	}
}

// Phases returns the measured phases.
func (t *Timer) Phases() []Phase { return t.phases }

// Total sums all phases.
func (t *Timer) Total() time.Duration {
	var d time.Duration
	for _, p := range t.phases {
		d += p.Dur
	}
	return d
}

// Summary renders one line per phase plus the total.
func (t *Timer) Summary() string {
	var sb strings.Builder
	for _, p := range t.phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms", p.Name, ms(p.Dur))
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "total", ms(t.Total()))
	return sb.String()
}

// PhaseReport is the JSON form of a phase.
type PhaseReport struct {
	Name string  `json:"name"`
	MS   float64 `json:"ms"`
	Note string  `json:"note,omitempty"`
}

// Report is the JSON form of a timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	r := Report{TotalMS: ms(t.Total()), Phases: make([]PhaseReport, len(t.phases))}
	for i, p := range t.phases {
		r.Phases[i] = PhaseReport{Name: p.Name, MS: ms(p.Dur), Note: p.Note}
	}
	return r
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
