package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindFilesByExtension_WalksDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.hcl"))
	writeFile(t, filepath.Join(dir, "nested", "b.hcl"))
	writeFile(t, filepath.Join(dir, "nested", "c.txt"))

	files, err := FindFilesByExtension(".hcl", dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindFilesByExtension_AcceptsFilePaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.hcl")
	writeFile(t, file)
	other := filepath.Join(dir, "b.txt")
	writeFile(t, other)

	files, err := FindFilesByExtension(".hcl", file, other)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, files)
}

func TestFindFilesByExtension_DeduplicatesOverlappingPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.hcl")
	writeFile(t, file)

	files, err := FindFilesByExtension(".hcl", dir, file)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFindFilesByExtension_SkipsMissingPaths(t *testing.T) {
	files, err := FindFilesByExtension(".hcl", filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension_EmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = FindFilesByExtension("", ".")
	})
}
