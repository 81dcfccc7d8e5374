package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	b := touch(t, filepath.Join(dir, "b.hcl"))
	a := touch(t, filepath.Join(dir, "sub", "a.hcl"))
	touch(t, filepath.Join(dir, "c.yaml"))

	// --- Act ---
	files, err := FindFilesByExtension(dir, ".hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, files)
}

func TestFindFilesByExtension_PanicsWithoutExtension(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir(), "") })
}

func TestExpand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.hcl"))
	notes := touch(t, filepath.Join(dir, "notes.txt"))

	files, err := Expand(".hcl", notes, dir, a)
	require.NoError(t, err)
	assert.Equal(t, []string{notes, a}, files)

	_, err = Expand(".hcl", filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
