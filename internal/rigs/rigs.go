// Package rigs bundles physics3.json rigs used by presets and tests.
package rigs

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed data/*.physics3.json
var files embed.FS

const (
	suffix = ".physics3.json"

	// Prefix marks a rig source as a builtin name rather than a file path.
	Prefix = "builtin:"
)

var ErrNotFound = errors.New("rigs: no such builtin rig")

// Names lists the builtin rigs, sorted.
func Names() []string {
	entries, err := files.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(names)
	return names
}

// Get returns the JSON of a builtin rig.
func Get(name string) ([]byte, error) {
	data, err := files.ReadFile(path.Join("data", name+suffix))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// Read loads a rig from "builtin:<name>" or a file path.
func Read(source string) ([]byte, error) {
	if name, ok := strings.CutPrefix(source, Prefix); ok {
		return Get(name)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read rig: %w", err)
	}
	return data, nil
}

// Resolve maps a rig argument to a source Read accepts and the builtin
// name presets are keyed by. "hair" and "builtin:hair" both resolve to the
// builtin; anything else is a file path with no name.
func Resolve(arg string) (source, name string) {
	if name, ok := strings.CutPrefix(arg, Prefix); ok {
		return arg, name
	}
	for _, n := range Names() {
		if n == arg {
			return Prefix + arg, arg
		}
	}
	return arg, ""
}
