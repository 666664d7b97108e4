package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/dircomp/pkg/dircomp/watcher"
)

func waitChanged(t *testing.T, w *watcher.Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Changed():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestNotifiesOnFileChange(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(50 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0o644))
	assert.True(t, waitChanged(t, w, 5*time.Second), "expected a change notification")
}

func TestBurstCollapsesToOneNotification(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(100 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 10; i++ {
		name := filepath.Join(root, "burst"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	require.True(t, waitChanged(t, w, 5*time.Second))
	// The burst happened within one quiet window; nothing further
	// should be pending.
	assert.False(t, waitChanged(t, w, 300*time.Millisecond), "burst should fold into one notification")
}

func TestNewSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()

	w, err := watcher.New(50 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.True(t, waitChanged(t, w, 5*time.Second))

	// A change inside the new directory must also notify.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0o644))
	assert.True(t, waitChanged(t, w, 5*time.Second), "new subdirectory should be watched")
}

func TestWatchMissingRoot(t *testing.T) {
	w, err := watcher.New(0)
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}
