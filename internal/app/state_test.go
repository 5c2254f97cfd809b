package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
)

func TestAppStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := state.DefaultSnapshot()
	snap.Expansion.Folders = state.NewPathSet("", "projects", "projects/2024")
	snap.Expansion.Tags = state.NewPathSet(rows.TagsHeaderKey, "work")
	snap.Selection = state.Selection{
		Type:   state.SelectionTag,
		Tag:    "work/urgent",
		File:   "projects/plan.md",
		Files:  state.NewPathSet("projects/plan.md"),
		Anchor: "projects/plan.md",
	}
	snap.UI.FocusedPane = state.PaneFiles

	require.NoError(t, writeAppState(dir, snap))
	got, err := loadAppState(dir)
	require.NoError(t, err)

	assert.True(t, got.Expansion.Equal(snap.Expansion))
	assert.True(t, got.Selection.Equal(snap.Selection))
	assert.Equal(t, state.PaneFiles, got.UI.FocusedPane)
}

func TestLoadAppStateMissingFileReturnsDefaults(t *testing.T) {
	got, err := loadAppState(t.TempDir())
	require.NoError(t, err)
	assert.True(t, got.Expansion.Equal(state.DefaultSnapshot().Expansion))
	assert.Equal(t, state.SelectionNone, got.Selection.Type)
}

func TestLoadAppStateKeepsRootFolderSelection(t *testing.T) {
	dir := t.TempDir()
	snap := state.DefaultSnapshot()
	snap.Selection.Type = state.SelectionFolder

	require.NoError(t, writeAppState(dir, snap))
	got, err := loadAppState(dir)
	require.NoError(t, err)

	assert.Equal(t, state.SelectionFolder, got.Selection.Type)
	assert.Equal(t, "", got.Selection.Folder)
}

func TestLoadAppStateDropsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	p := appStatePath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, []byte(`{
  "expanded_folders": ["", "../outside", "/etc", "ok"],
  "selection": "folder",
  "selected_folder": "../../tmp",
  "selected_file": "/etc/passwd",
  "selected_tag": "Work"
}`), 0o600))

	got, err := loadAppState(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"", "ok"}, got.Expansion.Folders.Sorted())
	assert.Equal(t, state.SelectionNone, got.Selection.Type)
	assert.Empty(t, got.Selection.File)
}

func TestLoadAppStateFoldsTagCase(t *testing.T) {
	dir := t.TempDir()
	p := appStatePath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, []byte(`{"selection": "tag", "selected_tag": "Work/Urgent"}`), 0o600))

	got, err := loadAppState(dir)
	require.NoError(t, err)
	assert.Equal(t, "work/urgent", got.Selection.Tag)
}

func TestLoadAppStateRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	p := appStatePath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o700))
	require.NoError(t, os.WriteFile(p, []byte(`{`), 0o600))

	got, err := loadAppState(dir)
	assert.Error(t, err)
	assert.Equal(t, state.SelectionNone, got.Selection.Type)
}
