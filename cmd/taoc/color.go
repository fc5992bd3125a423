package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// useColor is decided once per run by setupColor.
var useColor bool

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		useColor = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	case "on":
		useColor = true
	case "off":
		useColor = false
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	color.NoColor = !useColor
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
