package ast

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is an on-disk encoding of a Module.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "msgpack"
}

// FormatForPath picks the encoding from the file extension: .json is JSON,
// .tast and .mpk are msgpack.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".tast", ".mpk", ".msgpack":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("ast: unknown tree format for %q (want .tast, .mpk or .json)", path)
}

// Decode reads a module.
func Decode(r io.Reader, format Format) (*Module, error) {
	var m Module
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("ast: decode json: %w", err)
		}
	default:
		dec := msgpack.NewDecoder(bufio.NewReader(r))
		dec.SetCustomStructTag("json")
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("ast: decode msgpack: %w", err)
		}
	}
	return &m, nil
}

// Encode writes a module.
func Encode(w io.Writer, m *Module, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("ast: encode json: %w", err)
		}
	default:
		enc := msgpack.NewEncoder(w)
		enc.SetCustomStructTag("json")
		enc.SetOmitEmpty(true)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("ast: encode msgpack: %w", err)
		}
	}
	return nil
}

// ReadFile decodes the module stored at path.
func ReadFile(path string) (*Module, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, format)
}
