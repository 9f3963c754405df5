package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
)

func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()
	w, err := New(logger.Discard(), dir, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx) //nolint:errcheck // Test goroutine
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestNew_RequiresDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	_, err := New(logger.Discard(), file, Options{})
	assert.Error(t, err)

	_, err = New(logger.Discard(), filepath.Join(dir, "missing"), Options{})
	assert.Error(t, err)
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := New(logger.Discard(), t.TempDir(), Options{})
	require.NoError(t, err)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())

	_, open := <-w.Events()
	assert.False(t, open, "events channel is closed after Stop")
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})
	assert.Equal(t, dir, w.Dir())

	path := filepath.Join(dir, "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"manifest":{}}`), 0o600))

	ev := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, EventAdded, ev.Type)
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, int64(15), ev.Size)
	assert.False(t, ev.ModTime.IsZero())
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.yaml")
	require.NoError(t, os.WriteFile(path, []byte("manifest: {}\n"), 0o600))

	w := startWatcher(t, dir, Options{})
	require.NoError(t, os.Remove(path))

	ev := waitEvent(t, w, time.Second)
	assert.Equal(t, EventRemoved, ev.Type)
	assert.Equal(t, path, ev.Path)
}

func TestWatcher_IgnoresHiddenAndPartial(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload.part"), []byte("x"), 0o600))
	normal := filepath.Join(dir, "normal.json")
	require.NoError(t, os.WriteFile(normal, []byte("{}"), 0o600))

	ev := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, normal, ev.Path)

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event for ignored file: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_HiddenParentIsWatched(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".bookkeeper", "inbox")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	path := filepath.Join(dir, "drop.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	ev := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, path, ev.Path)
}
