package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipidx/internal/ziptype"
)

func encodeSample(tb testing.TB, conv ziptype.Convention, preload bool) ([]byte, *Table) {
	tb.Helper()
	tbl := mustTable(tb, sampleEntries(), conv)
	if preload {
		require.NoError(tb, tbl.AddPreload(tbl.entries[1].Path, make([]byte, 48)))
		require.NoError(tb, tbl.AddPreload(tbl.entries[2].Path, []byte("0123456789")))
	}
	data, err := Encode(tbl, conv)
	require.NoError(tb, err, "Encode failed")
	return data, tbl
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, withPreload := range []bool{false, true} {
		name := "table only"
		if withPreload {
			name = "table with preload"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data, tbl := encodeSample(t, ziptype.ConventionPosix, withPreload)

			got, conv, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, ziptype.ConventionPosix, conv)
			assert.Equal(t, tbl.entries, got.entries)
			assert.Equal(t, tbl.byPath, got.byPath)
			assert.Equal(t, tbl.preload, got.preload)
		})
	}
}

func TestRoundTripWindowsConvention(t *testing.T) {
	t.Parallel()

	data, tbl := encodeSample(t, ziptype.ConventionWindows, false)
	got, conv, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ziptype.ConventionWindows, conv)
	assert.Equal(t, tbl.entries, got.entries)
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	first, tbl := encodeSample(t, ziptype.ConventionPosix, true)
	second, err := Encode(tbl, ziptype.ConventionPosix)
	require.NoError(t, err)
	assert.Equal(t, first, second, "encoding the same table twice must be byte-identical")
}

func TestEncodeEmptyTable(t *testing.T) {
	t.Parallel()

	tbl := mustTable(t, nil, ziptype.ConventionPosix)
	data, err := Encode(tbl, ziptype.ConventionPosix)
	require.NoError(t, err)

	got, _, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestDecodeRejectsCorruption(t *testing.T) {
	t.Parallel()

	valid, _ := encodeSample(t, ziptype.ConventionPosix, true)

	mutations := map[string]func([]byte) []byte{
		"empty":                 func([]byte) []byte { return nil },
		"short":                 func(d []byte) []byte { return d[:10] },
		"truncated tail":        func(d []byte) []byte { return d[:len(d)-10] },
		"trailing garbage":      func(d []byte) []byte { return append(d, 0xFF) },
		"bad magic":             func(d []byte) []byte { d[0] ^= 0xFF; return d },
		"bad version":           func(d []byte) []byte { d[4] = 0x7F; return d },
		"bad convention":        func(d []byte) []byte { d[6] = 9; return d },
		"unknown flags":         func(d []byte) []byte { d[7] |= 0x80; return d },
		"inflated body length":  func(d []byte) []byte { d[8]++; return d },
		"flipped body byte":     func(d []byte) []byte { d[headerSize+3] ^= 0x55; return d },
		"flipped checksum byte": func(d []byte) []byte { d[len(d)-1] ^= 0x01; return d },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data := mutate(append([]byte(nil), valid...))
			_, _, err := Decode(data)
			require.Error(t, err, "corrupted index must not decode")
			assert.ErrorIs(t, err, ziptype.ErrCorruptIndex)
		})
	}
}

func TestDecodeNeverPartial(t *testing.T) {
	t.Parallel()

	// Every truncation point must fail outright; decode is all-or-nothing.
	valid, _ := encodeSample(t, ziptype.ConventionPosix, true)
	for n := 0; n < len(valid); n += 7 {
		_, _, err := Decode(valid[:n])
		assert.ErrorIs(t, err, ziptype.ErrCorruptIndex, "truncation at %d bytes", n)
	}
}
