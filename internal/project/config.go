// Package project loads tao.toml or tao.yaml, the per-project settings of taoc.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are the config files looked up, in order of preference.
var FileNames = []string{"tao.toml", "tao.yaml", "tao.yml"}

// Config is the merged project configuration.
type Config struct {
	Package Package `toml:"package" yaml:"package"`
	Check   Check   `toml:"check" yaml:"check"`
	Emit    Emit    `toml:"emit" yaml:"emit"`

	// Path is the file the config came from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

type Package struct {
	Name string `toml:"name" yaml:"name"`
}

type Check struct {
	// EntryAttr marks the entry definition.
	EntryAttr string `toml:"entry_attr" yaml:"entry_attr"`
	// MaxDiagnostics caps diagnostics per file.
	MaxDiagnostics int `toml:"max_diagnostics" yaml:"max_diagnostics"`
	// Jobs is how many files are checked at once; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs" yaml:"jobs"`
	// MonoJobs is the number of specialization workers per file.
	MonoJobs int `toml:"mono_jobs" yaml:"mono_jobs"`
}

type Emit struct {
	// Format is "pretty" or "json".
	Format string `toml:"format" yaml:"format"`
}

// Default returns the settings used without a config file.
func Default() Config {
	return Config{
		Check: Check{EntryAttr: "main", MaxDiagnostics: 100, MonoJobs: 1},
		Emit:  Emit{Format: "pretty"},
	}
}

// ErrUnknownFormat is returned for a config file that is neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config format")

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the user
	if err != nil {
		return Config{}, fmt.Errorf("project: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data, picking the format from the extension of path.
func Parse(data []byte, path string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, fmt.Errorf("project: %s: %w", path, err)
		}
		if und := md.Undecoded(); len(und) > 0 {
			return Config{}, fmt.Errorf("project: %s: unknown key %s", path, und[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("project: %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("project: %s: %w", path, ErrUnknownFormat)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("project: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the checker cannot use.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Check.EntryAttr) == "" {
		errs = append(errs, errors.New("check.entry_attr must not be empty"))
	}
	if c.Check.MaxDiagnostics <= 0 {
		errs = append(errs, fmt.Errorf("check.max_diagnostics must be positive, got %d", c.Check.MaxDiagnostics))
	}
	if c.Check.Jobs < 0 {
		errs = append(errs, fmt.Errorf("check.jobs must not be negative, got %d", c.Check.Jobs))
	}
	if c.Check.MonoJobs < 0 {
		errs = append(errs, fmt.Errorf("check.mono_jobs must not be negative, got %d", c.Check.MonoJobs))
	}
	switch c.Emit.Format {
	case "pretty", "json":
	default:
		errs = append(errs, fmt.Errorf("emit.format must be pretty or json, got %q", c.Emit.Format))
	}
	return errors.Join(errs...)
}

// Find walks up from dir to the nearest directory holding a config file.
func Find(dir string) (path string, ok bool, err error) {
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("project: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("project: %w", err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover loads the config nearest to dir, or the defaults when there is none.
func Discover(dir string) (Config, error) {
	path, ok, err := Find(dir)
	if err != nil || !ok {
		return Default(), err
	}
	return Load(path)
}
