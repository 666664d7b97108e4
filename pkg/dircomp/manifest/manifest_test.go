package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dircomp/pkg/dircomp/manifest"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

func TestOpenRequiresDir(t *testing.T) {
	_, err := manifest.Open("")
	assert.Error(t, err)
}

func TestAppendAndList(t *testing.T) {
	dir := t.TempDir()
	l, err := manifest.Open(dir)
	require.NoError(t, err)

	first, err := l.Append(manifest.Record{
		From:    types.Left,
		RelPath: "docs/report.txt",
		Files:   1,
		Bytes:   2048,
		Outcome: "ok",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.True(t, first.OK())

	time.Sleep(10 * time.Millisecond)
	second, err := l.Append(manifest.Record{
		From:    types.Right,
		RelPath: "broken.bin",
		Outcome: "permission denied",
	})
	require.NoError(t, err)
	assert.False(t, second.OK())

	records, err := l.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Equal(t, "docs/report.txt", records[1].RelPath)
	assert.Equal(t, int64(2048), records[1].Bytes)
}

func TestListEmptyWhenDirMissing(t *testing.T) {
	l, err := manifest.Open(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)

	records, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListSkipsGarbageFiles(t *testing.T) {
	dir := t.TempDir()
	l, err := manifest.Open(dir)
	require.NoError(t, err)

	_, err = l.Append(manifest.Record{RelPath: "good", Outcome: "ok"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.json"), []byte("not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	records, err := l.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "good", records[0].RelPath)
}
