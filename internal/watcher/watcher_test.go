package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReportsSettledDataFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New([]string{".csv"}, 50*time.Millisecond, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events, err := w.Watch(ctx, dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0o644))
	target := filepath.Join(dir, "Sales.CSV")
	require.NoError(t, os.WriteFile(target, []byte("a,b\n1,2\n"), 0o644))

	select {
	case ev := <-events:
		assert.Equal(t, target, ev.Path)
		assert.Equal(t, Ready, ev.Op)
	case <-ctx.Done():
		t.Fatal("no event received")
	}

	require.NoError(t, os.Remove(target))
	select {
	case ev := <-events:
		assert.Equal(t, Removed, ev.Op)
	case <-ctx.Done():
		t.Fatal("no removal event received")
	}
}

func TestDefaultsAndExtensions(t *testing.T) {
	w, err := New(nil, 0, nil)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, 500*time.Millisecond, w.settle)
	assert.True(t, w.isWatchedExtension("x.parquet"))
	assert.False(t, w.isWatchedExtension("x.md"))
	assert.Equal(t, "removed", Removed.String())
}
