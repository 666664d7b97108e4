package copyop_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dircomp/pkg/dircomp/copyop"
	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

func TestCopyFile(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	src := filepath.Join(left, "report.txt")
	require.NoError(t, os.WriteFile(src, []byte("quarterly numbers"), 0o640))
	mtime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	op := copyop.New(left, right, nil)
	entry, err := op.Copy(types.Left, "report.txt")
	require.NoError(t, err)

	dst := filepath.Join(right, "report.txt")
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	assert.True(t, info.ModTime().Equal(mtime), "mtime should follow the source")

	assert.Equal(t, "report.txt", entry.RelPath)
	assert.Equal(t, int64(len("quarterly numbers")), entry.Size)
	assert.False(t, entry.IsDir)
}

func TestCopyFileIntoMissingParents(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(left, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(left, "a", "b", "deep.txt"), []byte("deep"), 0o644))

	op := copyop.New(left, right, nil)
	_, err := op.Copy(types.Left, "a/b/deep.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(right, "a", "b", "deep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "deep", string(data))
}

func TestCopyOverwritesDestination(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(left, "f.txt"), []byte("new content"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(right, "f.txt"), []byte("old"), 0o644))

	op := copyop.New(left, right, nil)
	_, err := op.Copy(types.Left, "f.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(right, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new content", string(data))
}

func TestCopyDirectoryRecursive(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(left, "proj", "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(left, "proj", "readme.md"), []byte("readme"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(left, "proj", "src", "main.go"), []byte("package main"), 0o644))

	op := copyop.New(left, right, nil)
	entry, err := op.Copy(types.Left, "proj")
	require.NoError(t, err)
	assert.True(t, entry.IsDir)

	for _, rel := range []string{"proj/readme.md", "proj/src/main.go"} {
		_, err := os.Stat(filepath.Join(right, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
}

func TestCopyRightToLeft(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(right, "back.txt"), []byte("backwards"), 0o644))

	op := copyop.New(left, right, nil)
	_, err := op.Copy(types.Right, "back.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(left, "back.txt"))
	require.NoError(t, err)
	assert.Equal(t, "backwards", string(data))
}

func TestCopyMissingSource(t *testing.T) {
	op := copyop.New(t.TempDir(), t.TempDir(), nil)

	_, err := op.Copy(types.Left, "ghost.txt")
	require.Error(t, err)

	var copyErr *copyop.Error
	require.ErrorAs(t, err, &copyErr)
	assert.Equal(t, "stat", copyErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCopySameFileRefused(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))

	// Both roots point at the same directory.
	op := copyop.New(root, root, nil)
	_, err := op.Copy(types.Left, "f.txt")
	assert.ErrorIs(t, err, copyop.ErrSameFile)
}

func TestCopyFailureLeavesNoTempFiles(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	op := copyop.New(left, right, nil)

	_, err := op.Copy(types.Left, "missing.txt")
	require.Error(t, err)

	entries, err := os.ReadDir(right)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			t.Errorf("leftover temp file %q", e.Name())
		}
	}
}

func TestCopyRecordsHistory(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	histDir := t.TempDir()

	hist, err := manifest.Open(histDir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(left, "f.txt"), []byte("logged"), 0o644))

	op := copyop.New(left, right, hist)
	_, err = op.Copy(types.Left, "f.txt")
	require.NoError(t, err)
	_, err = op.Copy(types.Left, "ghost.txt")
	require.Error(t, err)

	records, err := hist.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].OK())
	assert.True(t, records[1].OK())
	assert.Equal(t, 1, records[1].Files)
	assert.Equal(t, int64(6), records[1].Bytes)
}

func TestSwap(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(left, "f.txt"), []byte("x"), 0o644))

	op := copyop.New(left, right, nil)
	op.Swap()

	// After the swap, "left" names the old right root, so copying
	// from the right side reads the original left directory.
	_, err := op.Copy(types.Right, "f.txt")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(right, "f.txt"))
	assert.NoError(t, err)
}
