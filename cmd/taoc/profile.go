package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tao/internal/prof"
)

var profSession *prof.Session

func startProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Runtime, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if cfg == (prof.Config{}) {
		return nil
	}
	profSession, err = prof.Start(cfg)
	return err
}

func stopProfiling(errOut io.Writer) {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(errOut, "profile: %v\n", err)
	}
	profSession = nil
}
