package compare_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dircomp/pkg/dircomp/compare"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// writeFile creates a file with the given content and returns its
// path and entry metadata.
func writeFile(t *testing.T, dir, name string, content []byte) (string, types.Entry) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	return path, types.Entry{
		RelPath: name,
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}
}

func TestCompareSizeMismatch(t *testing.T) {
	c := compare.New(compare.DefaultThresholds())

	// Nonexistent paths prove the size stage opens nothing.
	left := types.Entry{RelPath: "a", Size: 10}
	right := types.Entry{RelPath: "a", Size: 20}
	status, err := c.Compare(context.Background(), "/nonexistent/a", "/nonexistent/b", left, right)

	require.NoError(t, err)
	assert.Equal(t, types.Different, status)
}

func TestCompareBothEmpty(t *testing.T) {
	c := compare.New(compare.DefaultThresholds())

	left := types.Entry{RelPath: "a", Size: 0}
	right := types.Entry{RelPath: "a", Size: 0}
	status, err := c.Compare(context.Background(), "/nonexistent/a", "/nonexistent/b", left, right)

	require.NoError(t, err)
	assert.Equal(t, types.Identical, status)
}

func TestCompareSmallFiles(t *testing.T) {
	dir := t.TempDir()
	c := compare.New(compare.DefaultThresholds())

	t.Run("identical content", func(t *testing.T) {
		lp, le := writeFile(t, dir, "small-l1", []byte("hello world"))
		rp, re := writeFile(t, dir, "small-r1", []byte("hello world"))

		status, err := c.Compare(context.Background(), lp, rp, le, re)
		require.NoError(t, err)
		assert.Equal(t, types.Identical, status)
	})

	t.Run("same size different content", func(t *testing.T) {
		lp, le := writeFile(t, dir, "small-l2", []byte("hello world"))
		rp, re := writeFile(t, dir, "small-r2", []byte("hello earth"))

		status, err := c.Compare(context.Background(), lp, rp, le, re)
		require.NoError(t, err)
		assert.Equal(t, types.Different, status)
	})
}

func TestCompareDigestStage(t *testing.T) {
	dir := t.TempDir()
	// Shrink the thresholds so a 32-byte file lands in the digest
	// stage.
	c := compare.New(compare.Thresholds{
		SmallFileMax: 8,
		HashFileMax:  64,
		PrefixBytes:  8,
	})

	same := make([]byte, 32)
	for i := range same {
		same[i] = byte(i)
	}
	other := make([]byte, 32)
	copy(other, same)
	other[31] = 0xFF

	lp, le := writeFile(t, dir, "med-l", same)
	rp, re := writeFile(t, dir, "med-r", same)
	status, err := c.Compare(context.Background(), lp, rp, le, re)
	require.NoError(t, err)
	assert.Equal(t, types.Identical, status)

	rp2, re2 := writeFile(t, dir, "med-r2", other)
	status, err = c.Compare(context.Background(), lp, rp2, le, re2)
	require.NoError(t, err)
	assert.Equal(t, types.Different, status)
}

func TestComparePrefixHeuristic(t *testing.T) {
	dir := t.TempDir()
	c := compare.New(compare.Thresholds{
		SmallFileMax: 4,
		HashFileMax:  16,
		PrefixBytes:  8,
	})

	// Equal size, equal first 8 bytes, divergence only past the
	// prefix. The large-file stage accepts this as identical.
	left := []byte("prefix--tail-one")
	right := []byte("prefix--tail-two")
	lp, le := writeFile(t, dir, "big-l", left)
	rp, re := writeFile(t, dir, "big-r", right)

	status, err := c.Compare(context.Background(), lp, rp, le, re)
	require.NoError(t, err)
	assert.Equal(t, types.Identical, status)

	// Divergence inside the prefix is still caught.
	lp2, le2 := writeFile(t, dir, "big-l2", []byte("prefix-Xtail-one"))
	status, err = c.Compare(context.Background(), lp2, rp, le2, re)
	require.NoError(t, err)
	assert.Equal(t, types.Different, status)
}

func TestCompareUnreadable(t *testing.T) {
	dir := t.TempDir()
	c := compare.New(compare.DefaultThresholds())

	lp, le := writeFile(t, dir, "present", []byte("content"))
	missing := types.Entry{RelPath: "gone", Size: le.Size}

	status, err := c.Compare(context.Background(), lp, filepath.Join(dir, "gone"), le, missing)
	assert.Equal(t, types.Error, status)
	assert.Error(t, err)
}

func TestCompareTrustModTime(t *testing.T) {
	now := time.Now()
	c := compare.New(compare.Thresholds{TrustModTime: true})

	// Matching size and mtime short-circuits before any open; the
	// nonexistent paths would otherwise error.
	left := types.Entry{RelPath: "a", Size: 100, ModTime: now}
	right := types.Entry{RelPath: "a", Size: 100, ModTime: now.Add(500 * time.Millisecond)}
	status, err := c.Compare(context.Background(), "/nonexistent/a", "/nonexistent/b", left, right)

	require.NoError(t, err)
	assert.Equal(t, types.Identical, status)
}

func TestCompareCancelled(t *testing.T) {
	dir := t.TempDir()
	c := compare.New(compare.DefaultThresholds())

	lp, le := writeFile(t, dir, "cancel-l", []byte("content"))
	rp, re := writeFile(t, dir, "cancel-r", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := c.Compare(ctx, lp, rp, le, re)
	assert.Equal(t, types.Error, status)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareSymmetric(t *testing.T) {
	dir := t.TempDir()
	c := compare.New(compare.DefaultThresholds())

	lp, le := writeFile(t, dir, "sym-l", []byte("alpha content"))
	rp, re := writeFile(t, dir, "sym-r", []byte("bravo content"))

	forward, err := c.Compare(context.Background(), lp, rp, le, re)
	require.NoError(t, err)
	backward, err := c.Compare(context.Background(), rp, lp, re, le)
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}
