package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.hcl", "notes.txt", "c.hcl.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.hcl"), 0o755))

	files, err := ListFiles(dir, ".hcl")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.hcl"), filepath.Join(dir, "b.hcl")}, files)
}

func TestListFiles_MissingDirectory(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"), ".hcl")
	require.Error(t, err)
}

func TestEnsureDirs_CreatesOnlyMissing(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "commands")
	require.NoError(t, os.Mkdir(existing, 0o755))
	missing := filepath.Join(root, "config")

	created, err := EnsureDirs(existing, missing)
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, created)
	assert.DirExists(t, missing)

	created, err = EnsureDirs(existing, missing)
	require.NoError(t, err)
	assert.Empty(t, created)
}
