// Package prof wires Go's runtime profilers to taoc flags.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Config names the output files; empty paths disable that profile.
type Config struct {
	CPU     string
	Mem     string
	Runtime string
}

// Session is a running set of profiles.
type Session struct {
	cfg   Config
	cpu   *os.File
	trace *os.File
}

// Start begins the CPU profile and runtime trace cfg asks for. The heap
// profile is written by Stop, after the work it should describe.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPU != "" {
		f, err := os.Create(cfg.CPU)
		if err != nil {
			return nil, fmt.Errorf("prof: cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("prof: cpu profile: %w", err)
		}
		s.cpu = f
	}
	if cfg.Runtime != "" {
		f, err := os.Create(cfg.Runtime)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("prof: runtime trace: %w", err)
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("prof: runtime trace: %w", err)
		}
		s.trace = f
	}
	return s, nil
}

func (s *Session) stopCPU() error {
	if s.cpu == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpu.Close()
	s.cpu = nil
	return err
}

// Stop ends every profile and writes the heap profile. It is safe to call on
// a nil session and more than once.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs []error
	errs = append(errs, s.stopCPU())
	if s.trace != nil {
		rtrace.Stop()
		errs = append(errs, s.trace.Close())
		s.trace = nil
	}
	if s.cfg.Mem != "" {
		errs = append(errs, writeHeap(s.cfg.Mem))
		s.cfg.Mem = ""
	}
	return errors.Join(errs...)
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prof: heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("prof: heap profile: %w", err)
	}
	return f.Close()
}
