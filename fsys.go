package zipidx

import (
	"bytes"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/meigma/zipidx/internal/ziptype"
)

// The fs.FS view always uses slash-separated names, regardless of the
// convention the table was built for; names are translated to the table's
// separator on lookup. Directories are synthesized from member paths since
// zip archives need not store them explicitly.

// Open implements fs.FS.
//
// Member content is read (and decompressed) when the file is opened, so
// the returned file never touches the archive afterwards.
func (a *Archive) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.table.Lookup(a.fsKey(name)); ok {
		content, err := a.ReadMember(e.Path)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &memberFile{
			Reader: bytes.NewReader(content),
			info:   &fileInfo{entry: e, name: fsBase(name)},
		}, nil
	}

	if a.isDir(name) {
		return &openDir{a: a, name: name}, nil
	}

	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS. Directory info is synthetic.
func (a *Archive) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}

	if e, ok := a.table.Lookup(a.fsKey(name)); ok {
		return &fileInfo{entry: e, name: fsBase(name)}, nil
	}
	if a.isDir(name) {
		return &dirInfo{name: fsBase(name)}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	if _, ok := a.table.Lookup(a.fsKey(name)); !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	return a.ReadMember(a.fsKey(name))
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name.
func (a *Archive) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries := a.dirChildren(name)
	if entries == nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	return entries, nil
}

// fsKey converts a slash fs name to a table key.
func (a *Archive) fsKey(name string) string {
	return ziptype.FromSlash(name, a.conv)
}

// fsBase returns the last element of a slash path.
func fsBase(name string) string {
	if name == "." {
		return "."
	}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// isDir reports whether name has members beneath it.
func (a *Archive) isDir(name string) bool {
	if name == "." {
		return true
	}
	prefix := name + "/"
	for e := range a.table.Entries() {
		if strings.HasPrefix(ziptype.ToSlash(e.Path, a.conv), prefix) {
			return true
		}
	}
	return false
}

// dirChildren collects the immediate children of a directory, sorted by
// name, synthesizing entries for subdirectories. Returns nil when name is
// neither the root nor a prefix of any member.
func (a *Archive) dirChildren(name string) []fs.DirEntry {
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}

	type child struct {
		entry Entry
		isDir bool
	}
	children := make(map[string]child)
	for e := range a.table.Entries() {
		p := ziptype.ToSlash(e.Path, a.conv)
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			children[rest[:i]] = child{isDir: true}
		} else if rest != "" {
			children[rest] = child{entry: e}
		}
	}
	if len(children) == 0 && name != "." {
		return nil
	}

	names := make([]string, 0, len(children))
	for n := range children {
		names = append(names, n)
	}
	slices.Sort(names)

	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		c := children[n]
		if c.isDir {
			entries = append(entries, fs.FileInfoToDirEntry(&dirInfo{name: n}))
		} else {
			entries = append(entries, fs.FileInfoToDirEntry(&fileInfo{entry: c.entry, name: n}))
		}
	}
	return entries
}

// memberFile is an open archive member. Content is fully materialized, so
// it also supports seeking and random access.
type memberFile struct {
	*bytes.Reader
	info *fileInfo
}

var (
	_ fs.File     = (*memberFile)(nil)
	_ io.ReaderAt = (*memberFile)(nil)
	_ io.Seeker   = (*memberFile)(nil)
)

func (f *memberFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memberFile) Close() error               { return nil }

// openDir implements fs.ReadDirFile for synthetic directories.
type openDir struct {
	a       *Archive
	name    string
	entries []fs.DirEntry
	offset  int
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return &dirInfo{name: fsBase(d.name)}, nil
}

func (d *openDir) Close() error {
	return nil
}

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		d.entries = d.a.dirChildren(d.name)
		if d.entries == nil {
			d.entries = []fs.DirEntry{}
		}
	}

	remaining := d.entries[d.offset:]
	if n <= 0 {
		d.offset = len(d.entries)
		return slices.Clone(remaining), nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	d.offset += n
	return slices.Clone(remaining[:n]), nil
}

// fileInfo implements fs.FileInfo for archive members.
type fileInfo struct {
	entry Entry
	name  string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(fi.entry.UncompressedSize) } //nolint:gosec // sizes validated at decode
func (fi *fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi *fileInfo) ModTime() time.Time { return fi.entry.ModTime() }
func (fi *fileInfo) IsDir() bool        { return false }
func (fi *fileInfo) Sys() any           { return nil }

// dirInfo implements fs.FileInfo for synthetic directories.
type dirInfo struct {
	name string
}

func (di *dirInfo) Name() string       { return di.name }
func (di *dirInfo) Size() int64        { return 0 }
func (di *dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di *dirInfo) ModTime() time.Time { return time.Time{} }
func (di *dirInfo) IsDir() bool        { return true }
func (di *dirInfo) Sys() any           { return nil }
