// Package testutil builds small zip archives for tests.
package testutil

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ZipEntry describes one member of a test archive.
type ZipEntry struct {
	Name    string
	Content string
	Stored  bool // store uncompressed instead of deflating
}

// BuildZip writes a zip archive with the given members, in order, and
// returns its path.
func BuildZip(tb testing.TB, dir, name string, entries []ZipEntry) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(tb, err, "create archive")
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}
		if e.Stored {
			hdr.Method = zip.Store
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(tb, err, "create member %s", e.Name)
		_, err = w.Write([]byte(e.Content))
		require.NoError(tb, err, "write member %s", e.Name)
	}
	require.NoError(tb, zw.Close(), "close archive writer")
	require.NoError(tb, f.Close(), "close archive file")
	return path
}

// DefaultEntries is a small package-shaped archive used across tests.
func DefaultEntries() []ZipEntry {
	return []ZipEntry{
		{Name: "pkg/__init__.py", Content: "# package marker\n"},
		{Name: "pkg/mod.py", Content: "VALUE = 42\n\n\ndef main():\n    return VALUE\n"},
		{Name: "pkg/data.txt", Content: "plain text payload", Stored: true},
		{Name: "top.py", Content: "import pkg.mod\n"},
	}
}
