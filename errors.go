package zipidx

import "github.com/meigma/zipidx/internal/ziptype"

// Errors re-exported from internal/ziptype.
var (
	// ErrArchiveUnreadable is returned when the source archive is missing
	// or cannot be parsed. Archive-level failures are fatal and never
	// retried.
	ErrArchiveUnreadable = ziptype.ErrArchiveUnreadable

	// ErrCorruptIndex is returned when an index does not match the
	// expected structural shape. Open recovers from it by falling back to
	// a live scan; Decode and OpenWithIndex surface it.
	ErrCorruptIndex = ziptype.ErrCorruptIndex

	// ErrIndexWrite is returned when WriteIndex cannot persist the
	// sidecar file. It is fatal to the build call only; an open read
	// session is unaffected.
	ErrIndexWrite = ziptype.ErrIndexWrite

	// ErrDecompression is returned when member decompression fails. With
	// a stale index this is also how wrong offsets typically surface.
	ErrDecompression = ziptype.ErrDecompression

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = ziptype.ErrSizeOverflow
)
