package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsTrackedFiles(t *testing.T) {
	dir := t.TempDir()
	tracked := filepath.Join(dir, "twintree.toml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(tracked, []byte("[log]\n"), 0o644))

	w, err := NewWatcher(20*time.Millisecond, tracked)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	changes := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) { changes <- path }, nil)
	}()

	// Let the watcher settle before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(tracked, []byte("[log]\nlevel = \"debug\"\n"), 0o644))
	}

	select {
	case path := <-changes:
		assert.Equal(t, tracked, path)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
