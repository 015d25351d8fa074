// Package zipfile reads zip archives through the standard central
// directory. It is the slow-path collaborator: the loader only consults it
// when no usable sidecar index exists, and the builder drives it to produce
// the table an index is built from.
package zipfile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/meigma/zipidx/internal/ziptype"
)

// Reader lists and reads archive members using archive/zip.
//
// Reads open the archive per call; no handle is retained. The zero value is
// ready to use.
type Reader struct{}

// List parses the archive's central directory into raw entries.
//
// Paths are returned as stored in the archive (slash-separated); directory
// placeholders are skipped. Offsets point at the member data, past the
// local file header, so later reads can seek directly.
func (Reader) List(archivePath string) ([]ziptype.Entry, error) {
	rc, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ziptype.ErrArchiveUnreadable, archivePath, err)
	}
	defer rc.Close()

	entries := make([]ziptype.Entry, 0, len(rc.File))
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		offset, err := f.DataOffset()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: member %q: %v", ziptype.ErrArchiveUnreadable, archivePath, f.Name, err)
		}
		entries = append(entries, ziptype.Entry{
			Path:             f.Name,
			Method:           ziptype.Method(f.Method),
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			CRC32:            f.CRC32,
			ModifiedTime:     f.ModifiedTime, //nolint:staticcheck // the raw MS-DOS fields are exactly what the table stores
			ModifiedDate:     f.ModifiedDate, //nolint:staticcheck // see above
			DataOffset:       offset,
		})
	}
	return entries, nil
}

// ReadRaw returns the stored bytes of a member: CompressedSize bytes at
// DataOffset, still compressed for deflated members.
func (Reader) ReadRaw(archivePath string, e ziptype.Entry) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ziptype.ErrArchiveUnreadable, err)
	}
	defer f.Close()

	if e.CompressedSize > 1<<62 {
		return nil, fmt.Errorf("read %s: %w", e.Path, ziptype.ErrSizeOverflow)
	}
	data := make([]byte, e.CompressedSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, e.DataOffset, int64(e.CompressedSize)), data); err != nil {
		return nil, fmt.Errorf("%w: read %s at %d: %v", ziptype.ErrArchiveUnreadable, e.Path, e.DataOffset, err)
	}
	return data, nil
}
