package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"tao/internal/project"
)

// loadSettings reads the project config and lets explicitly set flags win.
func loadSettings(cmd *cobra.Command) (project.Config, error) {
	root := cmd.Root().PersistentFlags()
	path, err := root.GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg project.Config
	if path != "" {
		cfg, err = project.Load(path)
	} else {
		cfg, err = project.Discover(".")
	}
	if err != nil {
		return project.Config{}, err
	}

	if root.Changed("max-diagnostics") {
		if cfg.Check.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	local := cmd.Flags()
	if f := local.Lookup("jobs"); f != nil && f.Changed {
		if cfg.Check.Jobs, err = local.GetInt("jobs"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if f := local.Lookup("mono-jobs"); f != nil && f.Changed {
		if cfg.Check.MonoJobs, err = local.GetInt("mono-jobs"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get mono-jobs flag: %w", err)
		}
	}
	if f := local.Lookup("entry"); f != nil && f.Changed {
		if cfg.Check.EntryAttr, err = local.GetString("entry"); err != nil {
			return project.Config{}, fmt.Errorf("failed to get entry flag: %w", err)
		}
	}
	if f := local.Lookup("format"); f != nil && f.Changed {
		format, err := local.GetString("format")
		if err != nil {
			return project.Config{}, fmt.Errorf("failed to get format flag: %w", err)
		}
		cfg.Emit.Format = strings.ToLower(format)
	}
	if err := cfg.Validate(); err != nil {
		source := "flags"
		if cfg.Path != "" {
			source = cfg.Path
		}
		return project.Config{}, fmt.Errorf("invalid settings (%s): %w", source, err)
	}
	return cfg, nil
}

var treeExts = []string{".tast", ".mpk", ".msgpack", ".json"}

// collectInputs expands directories into the tree files below them, sorted.
func collectInputs(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// CheckFile reports missing files as diagnostics
			out = append(out, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(treeExts, strings.ToLower(filepath.Ext(path))) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no syntax trees found in %s", arg)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}
