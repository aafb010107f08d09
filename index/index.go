// Package index defines the symbol index consulted by the analyzer for
// cross-file existence checks, with an in-memory implementation and a file
// format for snapshots produced by a workspace scan.
package index

import (
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/pdxlint/pkg"
)

// Index reports whether an entity of kind is declared anywhere in the
// project. Implementations must be safe for concurrent use.
type Index interface {
	Has(kind, name string) bool
}

var (
	ErrRead   = pkg.NewError("read symbol index")
	ErrDecode = pkg.NewError("decode symbol index")
)

// Map is an in-memory Index keyed by kind and then name. The zero value is
// empty and ready to use.
type Map struct {
	mu    sync.RWMutex
	names map[string]map[string]struct{}
}

// New returns a Map holding the given names per kind.
func New(names map[string][]string) *Map {
	m := &Map{}
	for kind, list := range names {
		m.Add(kind, list...)
	}

	return m
}

// Has implements Index.
func (m *Map) Has(kind, name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.names[kind][name]

	return ok
}

// Add declares names under kind.
func (m *Map) Add(kind string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.names == nil {
		m.names = map[string]map[string]struct{}{}
	}

	set, ok := m.names[kind]
	if !ok {
		set = map[string]struct{}{}
		m.names[kind] = set
	}

	for _, n := range names {
		set[n] = struct{}{}
	}
}

// Merge adds every entry of other to m.
func (m *Map) Merge(other *Map) {
	for kind, names := range other.Snapshot() {
		m.Add(kind, names...)
	}
}

// Kinds returns the sorted kinds with at least one name.
func (m *Map) Kinds() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.names))
}

// Len returns the number of names across all kinds.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, set := range m.names {
		n += len(set)
	}

	return n
}

// Snapshot returns a copy of the index with names sorted per kind.
func (m *Map) Snapshot() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.names))
	for kind, set := range m.names {
		out[kind] = slices.Sorted(maps.Keys(set))
	}

	return out
}

// file is the on-disk form of an index: a mapping from kind to names.
// JSON is a subset of YAML, so both are accepted.
type file map[string][]string

// Read decodes an index document from r.
func Read(r io.Reader) (*Map, error) {
	var f file

	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, ErrDecode.Wrap(err)
	}

	return New(f), nil
}

// ReadFile decodes the index document at path.
func ReadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("path", path))
	}

	return m, nil
}

// Write encodes m to w, as JSON if json is set and YAML otherwise.
func (m *Map) Write(w io.Writer, json bool) error {
	var opts []yaml.EncodeOption
	if json {
		opts = append(opts, yaml.JSON())
	}

	data, err := yaml.MarshalWithOptions(file(m.Snapshot()), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// WriteFile writes m to path, choosing JSON for a .json extension.
func (m *Map) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return m.Write(f, strings.EqualFold(filepath.Ext(path), ".json"))
}
