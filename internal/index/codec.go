package index

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/spaolacci/murmur3"

	"github.com/meigma/zipidx/internal/ziptype"
)

// Sidecar index layout, little-endian throughout:
//
//	magic      4  "ZIDX"
//	version    2
//	convention 1
//	flags      1  (bit0: preload section present)
//	bodyLen    4
//	body       bodyLen bytes, zstd frame
//	checksum   8  murmur3-64 of everything before it
//
// The decompressed body is an entry count followed by fixed-shape entry
// records, then an optional preload section. Decoding is all-or-nothing:
// any structural mismatch yields ErrCorruptIndex and the caller falls back
// to scanning the archive.

const (
	formatVersion = 1

	headerSize  = 12
	trailerSize = 8

	flagPreload = 1 << 0
)

var magic = [4]byte{'Z', 'I', 'D', 'X'}

// Encode serializes the table for the given convention.
//
// Output is byte-exact for a given table: entries and preload payloads are
// written in central-directory order and the body is compressed by a
// single-threaded zstd encoder.
func Encode(t *Table, conv ziptype.Convention) ([]byte, error) {
	if !conv.Valid() {
		return nil, fmt.Errorf("encode index: invalid convention %d", conv)
	}
	body, err := encodeBody(t)
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return nil, fmt.Errorf("encode index: create zstd encoder: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(body, nil)

	if len(compressed) > math.MaxUint32 {
		return nil, fmt.Errorf("encode index: %w", ziptype.ErrSizeOverflow)
	}

	out := make([]byte, 0, headerSize+len(compressed)+trailerSize)
	out = append(out, magic[:]...)
	out = binary.LittleEndian.AppendUint16(out, formatVersion)
	out = append(out, byte(conv))
	var flags byte
	if t.PreloadLen() > 0 {
		flags |= flagPreload
	}
	out = append(out, flags)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	out = append(out, compressed...)
	out = binary.LittleEndian.AppendUint64(out, murmur3.Sum64(out))
	return out, nil
}

func encodeBody(t *Table) ([]byte, error) {
	if t.Len() > math.MaxUint32 {
		return nil, ziptype.ErrSizeOverflow
	}

	body := binary.LittleEndian.AppendUint32(nil, uint32(t.Len()))
	for _, e := range t.entries {
		if len(e.Path) > math.MaxUint16 {
			return nil, fmt.Errorf("path %q too long: %w", e.Path, ziptype.ErrSizeOverflow)
		}
		if e.DataOffset < 0 {
			return nil, fmt.Errorf("entry %q: negative data offset", e.Path)
		}
		body = binary.LittleEndian.AppendUint16(body, uint16(len(e.Path)))
		body = append(body, e.Path...)
		body = binary.LittleEndian.AppendUint16(body, uint16(e.Method))
		body = binary.LittleEndian.AppendUint64(body, e.CompressedSize)
		body = binary.LittleEndian.AppendUint64(body, e.UncompressedSize)
		body = binary.LittleEndian.AppendUint32(body, e.CRC32)
		body = binary.LittleEndian.AppendUint16(body, e.ModifiedTime)
		body = binary.LittleEndian.AppendUint16(body, e.ModifiedDate)
		body = binary.LittleEndian.AppendUint64(body, uint64(e.DataOffset))
	}

	if t.PreloadLen() == 0 {
		return body, nil
	}

	// Preload payloads in entry order, never map order, for determinism.
	body = binary.LittleEndian.AppendUint32(body, uint32(t.PreloadLen()))
	for _, e := range t.entries {
		data, ok := t.preload[e.Path]
		if !ok {
			continue
		}
		body = binary.LittleEndian.AppendUint16(body, uint16(len(e.Path)))
		body = append(body, e.Path...)
		body = binary.LittleEndian.AppendUint64(body, uint64(len(data)))
		body = append(body, data...)
	}
	return body, nil
}

// Decode parses a sidecar index produced by Encode.
//
// Decode validates structure only; it never re-opens the source archive.
// Anything that does not match the expected shape fails with
// ErrCorruptIndex, wrapped with detail.
func Decode(data []byte) (*Table, ziptype.Convention, error) {
	if len(data) < headerSize+trailerSize {
		return nil, 0, corruptf("short index: %d bytes", len(data))
	}
	if [4]byte(data[:4]) != magic {
		return nil, 0, corruptf("bad magic")
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != formatVersion {
		return nil, 0, corruptf("unsupported version %d", v)
	}
	conv := ziptype.Convention(data[6])
	if !conv.Valid() {
		return nil, 0, corruptf("unknown convention %d", data[6])
	}
	flags := data[7]
	if flags&^flagPreload != 0 {
		return nil, 0, corruptf("unknown flags %#x", flags)
	}
	bodyLen := binary.LittleEndian.Uint32(data[8:headerSize])
	if uint64(len(data)) != headerSize+uint64(bodyLen)+trailerSize {
		return nil, 0, corruptf("declared body %d bytes, have %d", bodyLen, len(data)-headerSize-trailerSize)
	}

	sum := binary.LittleEndian.Uint64(data[len(data)-trailerSize:])
	if murmur3.Sum64(data[:len(data)-trailerSize]) != sum {
		return nil, 0, corruptf("checksum mismatch")
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, 0, fmt.Errorf("decode index: create zstd decoder: %w", err)
	}
	defer dec.Close()
	body, err := dec.DecodeAll(data[headerSize:len(data)-trailerSize], nil)
	if err != nil {
		return nil, 0, corruptf("body: %v", err)
	}

	t, err := decodeBody(body, flags&flagPreload != 0)
	if err != nil {
		return nil, 0, err
	}
	return t, conv, nil
}

func decodeBody(body []byte, hasPreload bool) (*Table, error) {
	r := reader{buf: body}

	count := r.uint32()
	capHint := int(min(count, 1<<16))
	t := &Table{
		entries: make([]ziptype.Entry, 0, capHint),
		byPath:  make(map[string]int, capHint),
	}
	for range count {
		var e ziptype.Entry
		e.Path = r.str()
		e.Method = ziptype.Method(r.uint16())
		e.CompressedSize = r.uint64()
		e.UncompressedSize = r.uint64()
		e.CRC32 = r.uint32()
		e.ModifiedTime = r.uint16()
		e.ModifiedDate = r.uint16()
		off := r.uint64()
		if r.err != nil {
			return nil, corruptf("entry %d: %v", len(t.entries), r.err)
		}
		if off > math.MaxInt64 {
			return nil, corruptf("entry %q: offset overflow", e.Path)
		}
		e.DataOffset = int64(off)
		if e.Path == "" {
			return nil, corruptf("entry %d: empty path", len(t.entries))
		}
		if _, ok := t.byPath[e.Path]; ok {
			return nil, corruptf("duplicate path %q", e.Path)
		}
		t.byPath[e.Path] = len(t.entries)
		t.entries = append(t.entries, e)
	}

	if hasPreload {
		pcount := r.uint32()
		if r.err != nil {
			return nil, corruptf("preload count: %v", r.err)
		}
		if uint64(pcount) > uint64(len(t.entries)) {
			return nil, corruptf("preload count %d exceeds %d entries", pcount, len(t.entries))
		}
		t.preload = make(map[string][]byte, pcount)
		for i := range pcount {
			path := r.str()
			data := r.bytes(r.uint64())
			if r.err != nil {
				return nil, corruptf("preload %d: %v", i, r.err)
			}
			e, ok := t.Lookup(path)
			if !ok {
				return nil, corruptf("preload %q not in table", path)
			}
			if uint64(len(data)) != e.CompressedSize {
				return nil, corruptf("preload %q: %d bytes, entry records %d", path, len(data), e.CompressedSize)
			}
			if _, ok := t.preload[path]; ok {
				return nil, corruptf("duplicate preload %q", path)
			}
			t.preload[path] = data
		}
	}

	if len(r.buf) != 0 {
		return nil, corruptf("%d trailing bytes", len(r.buf))
	}
	return t, nil
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ziptype.ErrCorruptIndex, fmt.Sprintf(format, args...))
}

// reader consumes the decompressed body with sticky error handling.
// All accessors return zero values once an error is recorded.
type reader struct {
	buf []byte
	err error
}

func (r *reader) take(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if uint64(len(r.buf)) < n {
		r.err = fmt.Errorf("need %d bytes, have %d", n, len(r.buf))
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) uint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) str() string {
	return string(r.take(uint64(r.uint16())))
}

func (r *reader) bytes(n uint64) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
