package zipfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/zipidx/internal/ziptype"
)

// Decompress converts stored bytes to member content per the entry's method.
//
// Stored members are returned as-is. Deflated members are inflated as a raw
// deflate stream, the form zip records them in. The uncompressed size is
// checked so a stale or mismatched index surfaces as ErrDecompression
// rather than silently wrong bytes.
func Decompress(e ziptype.Entry, data []byte) ([]byte, error) {
	switch e.Method {
	case ziptype.MethodStored:
		if uint64(len(data)) != e.UncompressedSize {
			return nil, fmt.Errorf("%w: %s: stored %d bytes, expected %d", ziptype.ErrDecompression, e.Path, len(data), e.UncompressedSize)
		}
		return data, nil

	case ziptype.MethodDeflated:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ziptype.ErrDecompression, e.Path, err)
		}
		if uint64(len(out)) != e.UncompressedSize {
			return nil, fmt.Errorf("%w: %s: inflated to %d bytes, expected %d", ziptype.ErrDecompression, e.Path, len(out), e.UncompressedSize)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %s: unsupported method %d", ziptype.ErrDecompression, e.Path, e.Method)
	}
}
