package zipidx

import (
	"fmt"
	"iter"
	"os"
	"path"
	"path/filepath"

	"github.com/meigma/zipidx/internal/index"
	"github.com/meigma/zipidx/internal/ziptype"
)

// buildConfig holds configuration for index creation.
type buildConfig struct {
	conv     Convention
	convSet  bool
	path     string
	patterns []string
}

// BuildOption configures WriteIndex.
type BuildOption func(*buildConfig)

// BuildWithPreload adds glob patterns selecting members whose raw bytes are
// inlined into the index. Patterns use path.Match semantics: "*" matches
// within a path segment, never across separators. A pattern matching
// nothing is not an error.
func BuildWithPreload(patterns ...string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.patterns = append(cfg.patterns, patterns...)
	}
}

// BuildWithConvention targets the index at a specific path convention
// instead of the archive's own. This allows building windows indexes on
// posix hosts and vice versa.
func BuildWithConvention(conv Convention) BuildOption {
	return func(cfg *buildConfig) {
		cfg.conv = conv
		cfg.convSet = true
	}
}

// BuildWithPath overrides the sidecar output path. The default is
// IndexPath(archive, convention).
func BuildWithPath(p string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.path = p
	}
}

// WriteIndex builds a sidecar index for the archive and writes it.
//
// The table is always rebuilt from the archive's central directory, so the
// written index reflects the archive as it is on disk, not the table this
// handle was opened with. The write replaces any existing sidecar
// atomically (temp file + rename). Archive read failures propagate as
// ErrArchiveUnreadable; persistence failures are ErrIndexWrite.
func (a *Archive) WriteIndex(opts ...BuildOption) error {
	cfg := buildConfig{conv: a.conv}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.path == "" {
		cfg.path = IndexPath(a.path, cfg.conv)
	}

	t, err := a.buildTable(cfg.conv, cfg.patterns)
	if err != nil {
		return err
	}

	data, err := index.Encode(t, cfg.conv)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(cfg.path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIndexWrite, cfg.path, err)
	}
	a.log().Debug("index written", "path", cfg.path, "entries", t.Len(), "preload", t.PreloadLen())
	return nil
}

// buildTable scans the archive and attaches preload payloads for matching
// members.
func (a *Archive) buildTable(conv Convention, patterns []string) (*index.Table, error) {
	raw, err := a.reader.List(a.path)
	if err != nil {
		return nil, err
	}
	t, err := index.FromEntries(raw, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, a.path, err)
	}

	if len(patterns) == 0 {
		return t, nil
	}
	for e := range t.Entries() {
		ok, err := matchAny(patterns, e.Path, conv)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		data, err := a.reader.ReadRaw(a.path, e)
		if err != nil {
			return nil, err
		}
		if err := t.AddPreload(e.Path, data); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, a.path, err)
		}
	}
	return t, nil
}

// matchAny reports whether any pattern matches the path. Matching runs in
// slash form so patterns are convention-independent.
func matchAny(patterns []string, p string, conv Convention) (bool, error) {
	slashPath := ziptype.ToSlash(p, conv)
	for _, pattern := range patterns {
		ok, err := path.Match(pattern, slashPath)
		if err != nil {
			return false, fmt.Errorf("preload pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// VerifyIndex is the opt-in staleness check: it decodes the sidecar index
// that Open would use and compares its table against a fresh central
// directory scan. It returns false when the sidecar is missing, corrupt,
// built for another convention, or disagrees with the archive. The read
// fast path never performs this check.
func (a *Archive) VerifyIndex() (bool, error) {
	fresh, err := a.buildTable(a.conv, nil)
	if err != nil {
		return false, err
	}

	for _, candidate := range []string{IndexPath(a.path, a.conv), a.path + IndexSuffix} {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		t, conv, err := index.Decode(data)
		if err != nil || conv != a.conv {
			continue
		}
		return tablesEqual(t, fresh), nil
	}
	return false, nil
}

// tablesEqual compares entry sequences; preload payloads are a cache
// detail and do not affect equality.
func tablesEqual(a, b *index.Table) bool {
	if a.Len() != b.Len() {
		return false
	}
	next, stop := iter.Pull(b.Entries())
	defer stop()
	for ea := range a.Entries() {
		eb, ok := next()
		if !ok || ea != eb {
			return false
		}
	}
	return true
}

// writeFileAtomic writes data to a temp file then renames to target,
// ensuring atomic replacement of the target file.
func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".zipidx-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
