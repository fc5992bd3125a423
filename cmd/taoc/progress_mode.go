package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode is the value of `check --ui`.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressAlways
	progressNever
)

var progressSpellings = map[string]progressMode{
	"":       progressAuto,
	"auto":   progressAuto,
	"on":     progressAlways,
	"always": progressAlways,
	"off":    progressNever,
	"never":  progressNever,
}

func parseProgressMode(value string) (progressMode, error) {
	if m, ok := progressSpellings[strings.ToLower(strings.TrimSpace(value))]; ok {
		return m, nil
	}
	return progressAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// wantProgress decides whether check runs behind the progress view. The view
// owns the terminal, so it is never used for quiet runs or JSON output, and
// in auto mode only for several files on an interactive stderr.
func wantProgress(mode progressMode, files int, quiet bool, format string) bool {
	if quiet || format != "pretty" {
		return false
	}
	switch mode {
	case progressAlways:
		return true
	case progressNever:
		return false
	}
	return files > 1 && isTerminal(os.Stderr)
}
