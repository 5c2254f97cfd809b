package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsErrNotConfiguredWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, err := Load()
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Config{NotesDir: "~/my-notes", Settings: DefaultSettings()}
	cfg.FolderSorts = []FolderSort{{Folder: "Projects/Alpha", Sort: SortNameAsc}}
	cfg.Pinned = []PinnedNotes{{Folder: "Projects", Paths: []string{"Projects/Readme.md"}}}
	cfg.Keybindings = map[string]string{"nav.cursor.down": "ctrl+j"}
	require.NoError(t, Save(cfg))

	exists, err := Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "my-notes"), loaded.NotesDir)
	assert.Equal(t, SortNameAsc, loaded.SortFor("Projects/Alpha"))
	assert.Equal(t, SortModifiedDesc, loaded.SortFor("Projects"))
	assert.Equal(t, []string{"Projects/Readme.md"}, loaded.PinnedFor("Projects"))
	assert.Equal(t, "ctrl+j", loaded.Keybindings["nav.cursor.down"])
	assert.Equal(t, 300*time.Millisecond, loaded.ChangeDebounce)

	path, err := ConfigPath()
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadAppliesDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	notes := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(path, []byte(`{"notes_dir": "`+notes+`", "preview_rows": 9, "layout": "sideways"}`), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.True(t, cfg.ShowTags)
	assert.True(t, cfg.ConfirmDelete)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, LayoutAuto, cfg.Layout)
	assert.Equal(t, SortModifiedDesc, cfg.DefaultSort)
	assert.Equal(t, 5, cfg.Overscan)
}

func TestLoadRejectsEmptyNotesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"notes_dir": "  "}`), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid notes_dir")
}

func TestNormalizeNotesDirExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := NormalizeNotesDir("~/vault/../notes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes"), got)

	_, err = NormalizeNotesDir("")
	assert.Error(t, err)
}

func TestSortOptionNextCyclesAllOptions(t *testing.T) {
	seen := map[SortOption]bool{}
	opt := SortNameAsc
	for range sortOptions {
		seen[opt] = true
		opt = opt.Next()
	}
	assert.Len(t, seen, len(sortOptions))
	assert.Equal(t, SortNameAsc, opt)
	assert.True(t, SortCreatedAsc.IsDateSort())
	assert.False(t, SortTitleDesc.IsDateSort())
}

func TestWithFolderSortReplacesExistingOverride(t *testing.T) {
	s := DefaultSettings().WithFolderSort("A", SortNameAsc).WithFolderSort("A", SortTitleDesc)
	assert.Len(t, s.FolderSorts, 1)
	assert.Equal(t, SortTitleDesc, s.SortFor("A"))
}

func TestWithPinToggledAddsAndRemoves(t *testing.T) {
	s := DefaultSettings()

	s = s.WithPinToggled("Projects", "Projects/a.md")
	s = s.WithPinToggled("Projects", "Projects/b.md")
	s = s.WithPinToggled("#work", "x.md")
	assert.Equal(t, []string{"Projects/a.md", "Projects/b.md"}, s.PinnedFor("Projects"))
	assert.Equal(t, []string{"x.md"}, s.PinnedFor("#work"))

	s = s.WithPinToggled("Projects", "Projects/a.md")
	assert.Equal(t, []string{"Projects/b.md"}, s.PinnedFor("Projects"))

	s = s.WithPinToggled("#work", "x.md")
	assert.Nil(t, s.PinnedFor("#work"))
	assert.Len(t, s.Pinned, 1)
}
