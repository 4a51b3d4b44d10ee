package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_FiltersBySuffixAndSettlesOnce(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var settlements atomic.Int32
	changedCh := make(chan []string, 4)
	w, err := Watch(ctx, dir, ".hcl", 80*time.Millisecond, func(_ context.Context, changed []string) {
		settlements.Add(1)
		changedCh <- changed
	})
	require.NoError(t, err)
	defer w.Close()

	// --- Act ---
	path := filepath.Join(dir, "ping.hcl")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("command \"ping\" {}\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	// --- Assert ---
	select {
	case changed := <-changedCh:
		assert.Equal(t, []string{"ping.hcl"}, changed)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for settlement")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), settlements.Load())
}

func TestWatch_IgnoresNonMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var settlements atomic.Int32
	w, err := Watch(ctx, dir, ".json", 20*time.Millisecond, func(context.Context, []string) {
		settlements.Add(1)
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, settlements.Load())
}

func TestWatch_ReportsLostWhenDirectoryRemoved(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "commands")
	require.NoError(t, os.Mkdir(dir, 0o755))

	lost := make(chan error, 1)
	w, err := Watch(context.Background(), dir, ".hcl", 0, func(context.Context, []string) {}, WithOnLost(func(err error) {
		lost <- err
	}))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.RemoveAll(dir))

	select {
	case err := <-lost:
		assert.True(t, errors.Is(err, ErrWatchLost))
	case <-time.After(2 * time.Second):
		t.Fatal("expected a watch-lost signal")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), ".hcl", 0, func(context.Context, []string) {})
	require.Error(t, err)
}

func TestWatcher_CloseDoesNotReportLost(t *testing.T) {
	var lost atomic.Bool
	w, err := Watch(context.Background(), t.TempDir(), ".hcl", 0, func(context.Context, []string) {}, WithOnLost(func(error) {
		lost.Store(true)
	}))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.False(t, lost.Load())
}
