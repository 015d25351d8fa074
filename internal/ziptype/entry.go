package ziptype

import "time"

// Method identifies the compression method of an archive member.
//
// Values match the zip central-directory method codes.
type Method uint16

const (
	MethodStored   Method = 0
	MethodDeflated Method = 8
)

func (m Method) String() string {
	switch m {
	case MethodStored:
		return "stored"
	case MethodDeflated:
		return "deflated"
	default:
		return "unknown"
	}
}

// Entry describes one archive member.
//
// Path uses the separator of the convention the entry was normalized for.
// Sizes and the data offset come straight from the central directory; the
// offset points at the member data, past the local file header.
type Entry struct {
	// Path is the member path relative to the archive root.
	Path string

	// Method is the compression method recorded for the member.
	Method Method

	// CompressedSize is the stored size in bytes.
	// Equal to UncompressedSize for stored members.
	CompressedSize uint64

	// UncompressedSize is the size in bytes after decompression.
	UncompressedSize uint64

	// CRC32 is the checksum of the uncompressed member content.
	CRC32 uint32

	// ModifiedTime and ModifiedDate hold the MS-DOS timestamp from the
	// central directory. Kept for parity with the native table; not used
	// for lookups.
	ModifiedTime uint16
	ModifiedDate uint16

	// DataOffset is the byte offset of the member data within the archive.
	DataOffset int64
}

// ModTime converts the MS-DOS timestamp fields to a time.Time in UTC.
func (e *Entry) ModTime() time.Time {
	return time.Date(
		int(e.ModifiedDate>>9)+1980,
		time.Month(e.ModifiedDate>>5&0x0f),
		int(e.ModifiedDate&0x1f),
		int(e.ModifiedTime>>11),
		int(e.ModifiedTime>>5&0x3f),
		int(e.ModifiedTime&0x1f)*2,
		0,
		time.UTC,
	)
}
