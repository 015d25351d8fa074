package zipidx

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDir(t *testing.T) {
	t.Parallel()

	a := openDefault(t)
	dest := t.TempDir()

	require.NoError(t, a.ExtractDir(dest, ""))

	for _, name := range []string{"pkg/__init__.py", "pkg/mod.py", "pkg/data.txt", "top.py"} {
		want, err := a.ReadMember(name)
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestExtractDirPrefix(t *testing.T) {
	t.Parallel()

	a := openDefault(t)
	dest := t.TempDir()

	require.NoError(t, a.ExtractDir(dest, "pkg", ExtractWithWorkers(2)))

	_, err := os.Stat(filepath.Join(dest, "pkg", "mod.py"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dest, "top.py"))
	assert.ErrorIs(t, err, fs.ErrNotExist, "members outside the prefix are not extracted")
}

func TestExtractDirInvalidPrefix(t *testing.T) {
	t.Parallel()

	a := openDefault(t)

	err := a.ExtractDir(t.TempDir(), "../escape")
	assert.ErrorIs(t, err, fs.ErrInvalid)
}

func TestExtractDirOverwrite(t *testing.T) {
	t.Parallel()

	a := openDefault(t)
	dest := t.TempDir()

	stale := filepath.Join(dest, "top.py")
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	t.Run("skips existing by default", func(t *testing.T) {
		require.NoError(t, a.ExtractDir(dest, ""))
		got, err := os.ReadFile(stale)
		require.NoError(t, err)
		assert.Equal(t, "stale", string(got))
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		require.NoError(t, a.ExtractDir(dest, "", ExtractWithOverwrite(true)))
		got, err := os.ReadFile(stale)
		require.NoError(t, err)
		assert.Equal(t, "import pkg.mod\n", string(got))
	})
}
