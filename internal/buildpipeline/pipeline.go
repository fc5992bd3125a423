// Package buildpipeline describes the stages a checked file goes through and
// the progress events the driver publishes while running them.
package buildpipeline

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Stage is one step of checking a file.
type Stage string

const (
	StageDecode Stage = "decode"
	StageLower  Stage = "lower"
	StageMono   Stage = "mono"
	StageEmit   Stage = "emit"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageDecode, StageLower, StageMono, StageEmit}

// Status is where a file is within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	// StatusSkipped means an earlier stage reported errors.
	StatusSkipped Status = "skipped"
)

// Event reports progress of one file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Sinks are called from worker
// goroutines and must not block for long.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into Ch.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

// FuncSink adapts a function.
type FuncSink func(Event)

func (f FuncSink) OnEvent(ev Event) { f(ev) }

// Emit sends ev to sink when there is one.
func Emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

// Queue announces every file as queued for decoding.
func Queue(sink ProgressSink, files []string) {
	for _, f := range files {
		Emit(sink, Event{File: f, Stage: StageDecode, Status: StatusQueued})
	}
}

// Timings accumulates stage durations over many files. Safe for concurrent use.
type Timings struct {
	mu     sync.Mutex
	stages map[Stage]time.Duration
}

// Add records dur for stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] += dur
}

// Duration returns the recorded total for stage.
func (t *Timings) Duration(stage Stage) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stages[stage]
}

// DisplayNames shortens paths relative to base for progress output and drops
// duplicates, keeping the input order.
func DisplayNames(files []string, base string) []string {
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		name := filepath.Clean(f)
		if base != "" {
			if abs, err := filepath.Abs(name); err == nil {
				if rel, err := filepath.Rel(base, abs); err == nil && !strings.HasPrefix(rel, "..") {
					name = rel
				}
			}
		}
		name = filepath.ToSlash(name)
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
