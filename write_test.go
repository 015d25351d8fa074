package zipidx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipidx/internal/testutil"
)

func TestWriteIndex(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	require.NoError(t, a.WriteIndex())

	idxPath := IndexPath(archive, ConventionPosix)
	info, err := os.Stat(idxPath)
	require.NoError(t, err, "sidecar must exist at the convention path")
	assert.Positive(t, info.Size())

	loaded, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	assert.True(t, loaded.FromIndex())
}

func TestWriteIndexOverwrites(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)

	require.NoError(t, a.WriteIndex())
	first, err := os.ReadFile(IndexPath(archive, ConventionPosix))
	require.NoError(t, err)

	// A rebuild replaces the sidecar wholesale and deterministically.
	require.NoError(t, a.WriteIndex())
	second, err := os.ReadFile(IndexPath(archive, ConventionPosix))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWriteIndexPreload(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	require.NoError(t, a.WriteIndex(BuildWithPreload("pkg/mod.*")))

	reader := newCountingReader()
	loaded, err := Open(archive, WithConvention(ConventionPosix), WithArchiveReader(reader))
	require.NoError(t, err)
	require.True(t, loaded.FromIndex())

	t.Run("subset invariant", func(t *testing.T) {
		for e := range loaded.Entries() {
			if e.Path == "pkg/mod.py" {
				assert.True(t, loaded.Preloaded(e.Path), "matching member must be preloaded")
			} else {
				assert.False(t, loaded.Preloaded(e.Path), "member %s matches no pattern", e.Path)
			}
		}
	})

	t.Run("served without archive reads", func(t *testing.T) {
		content, err := loaded.ReadMember("pkg/mod.py")
		require.NoError(t, err)
		assert.Contains(t, string(content), "VALUE = 42")
		assert.Zero(t, reader.reads, "preloaded member must not touch the archive")
	})

	t.Run("non-preloaded member reads the archive", func(t *testing.T) {
		_, err := loaded.ReadMember("top.py")
		require.NoError(t, err)
		assert.Equal(t, 1, reader.reads)
	})
}

func TestWriteIndexPreloadNoMatches(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	require.NoError(t, a.WriteIndex(BuildWithPreload("nothing/matches/*")), "empty preload is not an error")

	loaded, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	require.True(t, loaded.FromIndex())
	for e := range loaded.Entries() {
		assert.False(t, loaded.Preloaded(e.Path))
	}
}

func TestWriteIndexBadPattern(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)
	assert.Error(t, a.WriteIndex(BuildWithPreload("[")))
}

func TestWriteIndexWriteFailed(t *testing.T) {
	t.Parallel()

	archive := buildArchive(t)
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)

	err = a.WriteIndex(BuildWithPath(filepath.Join(t.TempDir(), "missing", "out.idx")))
	assert.ErrorIs(t, err, ErrIndexWrite)
}

func TestVerifyIndex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archive := testutil.BuildZip(t, dir, "lib.zip", testutil.DefaultEntries())
	a, err := Open(archive, WithConvention(ConventionPosix))
	require.NoError(t, err)

	t.Run("no sidecar", func(t *testing.T) {
		ok, err := a.VerifyIndex()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("fresh sidecar", func(t *testing.T) {
		require.NoError(t, a.WriteIndex())
		ok, err := a.VerifyIndex()
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale sidecar", func(t *testing.T) {
		// Rebuild the archive with an extra member; the old index no
		// longer matches.
		entries := append(testutil.DefaultEntries(), testutil.ZipEntry{Name: "extra.py", Content: "x = 1\n"})
		testutil.BuildZip(t, dir, "lib.zip", entries)

		ok, err := a.VerifyIndex()
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
