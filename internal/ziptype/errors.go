package ziptype

import "errors"

// Sentinel errors shared across the module.
var (
	// ErrArchiveUnreadable is returned when the source archive is missing
	// or cannot be parsed.
	ErrArchiveUnreadable = errors.New("zipidx: archive unreadable")

	// ErrCorruptIndex is returned when a sidecar index does not match the
	// expected structural shape. Decoding is all-or-nothing; no partial
	// recovery is attempted.
	ErrCorruptIndex = errors.New("zipidx: corrupt index")

	// ErrIndexWrite is returned when a sidecar index cannot be persisted.
	ErrIndexWrite = errors.New("zipidx: index write failed")

	// ErrDecompression is returned when member decompression fails.
	ErrDecompression = errors.New("zipidx: decompression failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("zipidx: size overflow")
)
