package zipidx

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"

	"github.com/meigma/zipidx/internal/index"
	"github.com/meigma/zipidx/internal/zipfile"
	"github.com/meigma/zipidx/internal/ziptype"
)

// ArchiveReader is the native-archive collaborator: it parses the central
// directory and reads raw member bytes. The default implementation uses
// archive/zip; tests inject counting stubs to observe slow-path access.
type ArchiveReader interface {
	// List parses the central directory into raw entries. Paths are
	// returned as stored in the archive.
	List(archivePath string) ([]Entry, error)

	// ReadRaw returns a member's stored bytes, still compressed for
	// deflated members.
	ReadRaw(archivePath string, e Entry) ([]byte, error)
}

// Archive provides access to the members of a zip archive through a
// directory table loaded either from a sidecar index (fast path) or from a
// live central-directory scan (fallback).
//
// The table is immutable after Open, so an Archive is safe for concurrent
// readers. No file handle is retained between reads.
//
// Archive implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS.
type Archive struct {
	path      string
	conv      Convention
	table     *index.Table
	reader    ArchiveReader
	fromIndex bool
	noIndex   bool
	logger    *slog.Logger
}

// Interface compliance.
var (
	_ fs.FS         = (*Archive)(nil)
	_ fs.StatFS     = (*Archive)(nil)
	_ fs.ReadFileFS = (*Archive)(nil)
	_ fs.ReadDirFS  = (*Archive)(nil)
)

// Option configures an Archive before it is opened.
type Option func(*Archive)

// WithConvention sets the path convention the loader expects. Defaults to
// the running platform's convention. An index recorded under any other
// convention is rejected rather than producing lookups with the wrong
// separators.
func WithConvention(conv Convention) Option {
	return func(a *Archive) {
		a.conv = conv
	}
}

// WithLogger sets the logger. A nil logger discards all output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithArchiveReader replaces the native-archive collaborator.
func WithArchiveReader(r ArchiveReader) Option {
	return func(a *Archive) {
		a.reader = r
	}
}

// WithoutIndex disables the sidecar lookup, forcing a live scan.
func WithoutIndex() Option {
	return func(a *Archive) {
		a.noIndex = true
	}
}

// Open opens a zip archive for member access.
//
// Open first tries the sidecar index paths for the configured convention
// ("<zip>.<convention>.idx", then "<zip>.idx"). A readable index whose
// recorded convention matches is adopted without any archive parsing. On
// any index failure Open falls back to scanning the archive's central
// directory; the fallback table is never persisted. Archive-level failures
// are returned as ErrArchiveUnreadable.
func Open(archivePath string, opts ...Option) (*Archive, error) {
	a := newArchive(archivePath, opts)

	if !a.noIndex && a.loadSidecar() {
		return a, nil
	}
	if err := a.scan(); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenWithIndex opens an archive using explicitly provided index bytes,
// bypassing both the sidecar lookup and the central directory. This is the
// entry point for inlined indexes (see InlineSource).
//
// Unlike Open there is nothing to fall back to: corrupt data or a
// convention mismatch is returned as ErrCorruptIndex.
func OpenWithIndex(archivePath string, indexData []byte, opts ...Option) (*Archive, error) {
	a := newArchive(archivePath, opts)

	t, conv, err := index.Decode(indexData)
	if err != nil {
		return nil, err
	}
	if conv != a.conv {
		return nil, fmt.Errorf("%w: index convention %s, loader expects %s", ErrCorruptIndex, conv, a.conv)
	}
	a.table = t
	a.fromIndex = true
	return a, nil
}

func newArchive(archivePath string, opts []Option) *Archive {
	a := &Archive{
		path:   archivePath,
		conv:   ziptype.CurrentConvention(),
		reader: zipfile.Reader{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// loadSidecar tries the candidate index files and reports whether one was
// adopted. Every failure mode here is recoverable: the caller scans the
// archive instead.
func (a *Archive) loadSidecar() bool {
	for _, candidate := range []string{IndexPath(a.path, a.conv), a.path + IndexSuffix} {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		t, conv, err := index.Decode(data)
		if err != nil {
			a.log().Debug("sidecar index rejected", "path", candidate, "error", err)
			continue
		}
		if conv != a.conv {
			a.log().Debug("sidecar index convention mismatch",
				"path", candidate, "index", conv.String(), "want", a.conv.String())
			continue
		}
		a.log().Debug("sidecar index adopted", "path", candidate, "entries", t.Len(), "preload", t.PreloadLen())
		a.table = t
		a.fromIndex = true
		return true
	}
	return false
}

// scan builds the table from the archive's central directory.
func (a *Archive) scan() error {
	raw, err := a.reader.List(a.path)
	if err != nil {
		return err
	}
	t, err := index.FromEntries(raw, a.conv)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArchiveUnreadable, a.path, err)
	}
	a.log().Debug("central directory scanned", "path", a.path, "entries", t.Len())
	a.table = t
	return nil
}

// ReadMember returns the decompressed content of the member at path.
//
// Preloaded members are served from the index without touching the
// archive. The path must use the archive's convention separator; a path
// absent from the table yields fs.ErrNotExist.
func (a *Archive) ReadMember(path string) ([]byte, error) {
	e, ok := a.table.Lookup(path)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	raw, ok := a.table.Preload(path)
	if !ok {
		var err error
		raw, err = a.reader.ReadRaw(a.path, e)
		if err != nil {
			return nil, err
		}
	}
	return zipfile.Decompress(e, raw)
}

// Entry returns the table entry for the given path.
func (a *Archive) Entry(path string) (Entry, bool) {
	return a.table.Lookup(path)
}

// Entries returns an iterator over all entries in central-directory order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return a.table.Entries()
}

// Len returns the number of members in the archive.
func (a *Archive) Len() int {
	return a.table.Len()
}

// Preloaded reports whether the member at path has inlined content.
func (a *Archive) Preloaded(path string) bool {
	_, ok := a.table.Preload(path)
	return ok
}

// FromIndex reports whether the table came from a sidecar index rather
// than a live scan.
func (a *Archive) FromIndex() bool {
	return a.fromIndex
}

// Convention returns the path convention the table was built for.
func (a *Archive) Convention() Convention {
	return a.conv
}

// Path returns the archive path the table was loaded for.
func (a *Archive) Path() string {
	return a.path
}

// Close releases the archive handle. Since no file handle is held between
// reads it never fails; it exists so callers can treat an Archive like any
// other closable resource.
func (a *Archive) Close() error {
	return nil
}
