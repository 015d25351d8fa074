// Package index holds the in-memory directory table for a zip archive and
// the codec that persists it to a sidecar index file.
package index

import (
	"fmt"
	"iter"

	"github.com/meigma/zipidx/internal/ziptype"
)

// Table maps member paths to their directory entries.
//
// Entries keep the order the central directory produced so that encoding a
// table built from the same archive bytes is deterministic. Preload data
// holds raw stored bytes for a subset of entries; those members are served
// without touching the archive.
//
// A Table is immutable after construction aside from AddPreload, which the
// builder calls before the table is shared.
type Table struct {
	entries []ziptype.Entry
	byPath  map[string]int
	preload map[string][]byte
}

// FromEntries builds a table from raw central-directory entries, normalizing
// paths for the given convention. Directory placeholders (entries whose raw
// path ends in a separator) are dropped; they carry no data.
func FromEntries(raw []ziptype.Entry, conv ziptype.Convention) (*Table, error) {
	t := &Table{
		entries: make([]ziptype.Entry, 0, len(raw)),
		byPath:  make(map[string]int, len(raw)),
	}
	for _, e := range raw {
		path := ziptype.NormalizePath(e.Path, conv)
		if path == "" {
			continue
		}
		if _, ok := t.byPath[path]; ok {
			return nil, fmt.Errorf("duplicate member path %q", path)
		}
		e.Path = path
		t.byPath[path] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Lookup returns the entry for the given path.
func (t *Table) Lookup(path string) (ziptype.Entry, bool) {
	i, ok := t.byPath[path]
	if !ok {
		return ziptype.Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns an iterator over all entries in central-directory order.
func (t *Table) Entries() iter.Seq[ziptype.Entry] {
	return func(yield func(ziptype.Entry) bool) {
		for _, e := range t.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// AddPreload attaches raw stored bytes for an existing entry.
//
// The data must be exactly the member's stored form: still compressed for
// deflated members. The size is checked against the entry's compressed size
// so a payload can never disagree with the table it belongs to.
func (t *Table) AddPreload(path string, data []byte) error {
	e, ok := t.Lookup(path)
	if !ok {
		return fmt.Errorf("preload path %q not in table", path)
	}
	if uint64(len(data)) != e.CompressedSize {
		return fmt.Errorf("preload %q: got %d bytes, entry records %d", path, len(data), e.CompressedSize)
	}
	if t.preload == nil {
		t.preload = make(map[string][]byte)
	}
	t.preload[path] = data
	return nil
}

// Preload returns the inlined stored bytes for path, if any.
func (t *Table) Preload(path string) ([]byte, bool) {
	data, ok := t.preload[path]
	return data, ok
}

// PreloadLen returns the number of preloaded members.
func (t *Table) PreloadLen() int {
	return len(t.preload)
}
