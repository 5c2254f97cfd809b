package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, w *Watcher, match func(Event) bool) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-w.Events():
			require.True(t, ok, "watcher closed")
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for watcher event")
			return Event{}
		}
	}
}

func TestWatcherReportsMarkdownChanges(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(root, "note.md"), []byte("x"), 0o644))
	ev := waitForEvent(t, w, func(ev Event) bool { return ev.Path == "note.md" })
	assert.Contains(t, []EventKind{EventCreated, EventModified}, ev.Kind)

	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	ev = waitForEvent(t, w, func(ev Event) bool { return ev.Path == "sub" })
	assert.True(t, ev.IsDir)

	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "child.md"), []byte("y"), 0o644))
	waitForEvent(t, w, func(ev Event) bool { return ev.Path == "sub/child.md" })
}

func TestWatcherTranslateFiltersIrrelevantPaths(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root)
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), nil, 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(root, "last.md"), nil, 0o644))

	ev := waitForEvent(t, w, func(Event) bool { return true })
	assert.Equal(t, "last.md", ev.Path)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
