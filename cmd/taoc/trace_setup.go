package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tao/internal/trace"
)

// activeTracer is closed after the command and dumped when it is a ring.
var activeTracer trace.Tracer = trace.Nop

// setupTracing builds the tracer the trace flags describe and puts it into
// the command context.
func setupTracing(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	// --trace без уровня означает phase
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	tracer, err := trace.New(trace.Config{Level: level, Mode: mode, Path: output, RingSize: ringSize})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	activeTracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return nil
}

func closeTracing(errOut io.Writer) {
	if err := activeTracer.Flush(); err != nil {
		fmt.Fprintf(errOut, "trace: flush error: %v\n", err)
	}
	if err := activeTracer.Close(); err != nil {
		fmt.Fprintf(errOut, "trace: close error: %v\n", err)
	}
	activeTracer = trace.Nop
}

// dumpTraceRing writes the last events of a ring tracer, for post-mortems.
func dumpTraceRing(w io.Writer) {
	ring, ok := activeTracer.(*trace.RingTracer)
	if !ok {
		return
	}
	fmt.Fprintln(w, "--- trace (most recent events) ---")
	if err := ring.Dump(w); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}
