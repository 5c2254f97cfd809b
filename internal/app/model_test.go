package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/scrollsync"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/vault"
)

// stepClock advances a second per reading so key repeats are never
// debounced.
type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

var sampleVault = map[string]string{
	"alpha/one.md":   "---\ntags: [work]\n---\nFirst note body\n",
	"alpha/two.md":   "Second note\n",
	"beta/three.md":  "Idea #idea\n",
	"root.md":        "At the root\n",
	"alpha/.hidden/": "",
}

func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(abs, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.DefaultSort = config.SortNameAsc
	s.GroupByDate = false
	s.ShowPreview = false
	s.ShowDate = false
	s.Layout = config.LayoutDesktop
	return s
}

func newTestModel(t *testing.T, files map[string]string, tweak func(*config.Settings)) *Model {
	t.Helper()
	settings := testSettings()
	if tweak != nil {
		tweak(&settings)
	}
	clock := &stepClock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	m, err := New(Options{
		Config: config.Config{NotesDir: writeVault(t, files), Settings: settings},
		Now:    clock.now,
	})
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "shift+down":
		return tea.KeyMsg{Type: tea.KeyShiftDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(keyMsg(k))
	}
}

func fileKeys(m *Model) []string {
	var out []string
	for _, item := range rows.FileItems(m.FileRows()) {
		out = append(out, item.File.Path)
	}
	return out
}

func TestNewSelectsFirstFolder(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	sel := m.store.Selection()
	assert.Equal(t, state.SelectionFolder, sel.Type)
	assert.Equal(t, "alpha", sel.Folder)
	assert.Equal(t, []string{"alpha/one.md", "alpha/two.md"}, fileKeys(m))
	assert.Equal(t, state.PaneFolders, m.store.UI().FocusedPane)
}

func TestArrowDownSelectsNextFolder(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	press(m, "down")

	assert.Equal(t, "beta", m.store.Selection().Folder)
	assert.Equal(t, []string{"beta/three.md"}, fileKeys(m))
}

func TestTabFocusesFilesAndFollowsInReader(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	press(m, "tab")

	assert.Equal(t, state.PaneFiles, m.store.UI().FocusedPane)
	assert.Equal(t, "alpha/one.md", m.store.Selection().File)
	assert.Equal(t, "alpha/one.md", m.currentFile)

	press(m, "down")
	assert.Equal(t, "alpha/two.md", m.currentFile)
}

func TestEnterOpensReaderAndBackLeavesIt(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	press(m, "tab", "enter")
	assert.True(t, m.readerFocused)

	press(m, "esc")
	assert.False(t, m.readerFocused)
	assert.Equal(t, state.PaneFiles, m.store.UI().FocusedPane)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	press(m, "tab", "delete")

	require.NotNil(t, m.confirm)
	assert.Contains(t, m.confirm.Prompt(), "one.md")
	assert.Contains(t, m.View(), "Confirm delete")

	press(m, "n")
	assert.Nil(t, m.confirm)
	assert.FileExists(t, filepath.Join(m.notesDir, "alpha", "one.md"))
	assert.Equal(t, []string{"alpha/one.md", "alpha/two.md"}, fileKeys(m))

	press(m, "delete", "y")
	assert.Nil(t, m.confirm)
	assert.NoFileExists(t, filepath.Join(m.notesDir, "alpha", "one.md"))
	assert.Equal(t, []string{"alpha/two.md"}, fileKeys(m))
	assert.Equal(t, "alpha/two.md", m.store.Selection().File)
	assert.Equal(t, "Deleted one.md", m.status)
}

func TestDeleteWithoutConfirmation(t *testing.T) {
	m := newTestModel(t, sampleVault, func(s *config.Settings) { s.ConfirmDelete = false })
	press(m, "delete")

	assert.Nil(t, m.confirm)
	assert.NoDirExists(t, filepath.Join(m.notesDir, "alpha"))
	assert.Equal(t, "beta", m.store.Selection().Folder)
}

func TestVaultEventAddsNote(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	require.NoError(t, os.WriteFile(filepath.Join(m.notesDir, "alpha", "new.md"), []byte("new\n"), 0o644))

	m.Update(vaultEventMsg{event: vault.Event{Kind: vault.EventCreated, Path: "alpha/new.md"}})

	assert.Equal(t, []string{"alpha/new.md", "alpha/one.md", "alpha/two.md"}, fileKeys(m))
}

func TestVaultRenameKeepsSelection(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	press(m, "tab", "down")
	require.Equal(t, "alpha/two.md", m.store.Selection().File)

	require.NoError(t, os.Rename(filepath.Join(m.notesDir, "alpha", "two.md"), filepath.Join(m.notesDir, "alpha", "zz.md")))
	m.Update(vaultEventMsg{event: vault.Event{Kind: vault.EventRenamed, Path: "alpha/two.md"}})
	m.Update(vaultEventMsg{event: vault.Event{Kind: vault.EventCreated, Path: "alpha/zz.md"}})

	assert.Equal(t, "alpha/zz.md", m.store.Selection().File)
	assert.Equal(t, []string{"alpha/one.md", "alpha/zz.md"}, fileKeys(m))
}

func TestVaultDeleteEventClearsSelection(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	press(m, "tab")
	require.NoError(t, os.Remove(filepath.Join(m.notesDir, "alpha", "one.md")))

	m.Update(vaultEventMsg{event: vault.Event{Kind: vault.EventDeleted, Path: "alpha/one.md"}})

	assert.Equal(t, "", m.store.Selection().File)
	assert.Equal(t, []string{"alpha/two.md"}, fileKeys(m))
	assert.Equal(t, "", m.currentFile)
}

func TestStalePreviewIsDropped(t *testing.T) {
	m := newTestModel(t, sampleVault, func(s *config.Settings) { s.ShowPreview = true })

	token, ok := m.previewTokens["alpha/one.md"]
	require.True(t, ok, "visible rows request previews")

	m.Update(previewMsg{path: "alpha/one.md", token: token + 100, text: "stale"})
	_, loaded := m.previews["alpha/one.md"]
	assert.False(t, loaded)

	m.forgetPath("alpha/one.md")
	m.handlePreview(previewMsg{path: "alpha/one.md", token: token, text: "old"})
	_, loaded = m.previews["alpha/one.md"]
	assert.False(t, loaded, "a forgotten note ignores its in-flight load")

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	token = m.previewTokens["alpha/one.md"]
	m.Update(previewMsg{path: "alpha/one.md", token: token, text: "First note body"})
	assert.Equal(t, "First note body", m.previews["alpha/one.md"])
}

func TestLoadedPreviewChangesRowHeight(t *testing.T) {
	m := newTestModel(t, sampleVault, func(s *config.Settings) {
		s.ShowPreview = true
		s.PreviewRows = 3
	})
	i := m.fileIndex.Lookup(rows.FileKey("alpha/one.md"))
	require.GreaterOrEqual(t, i, 0)
	before, _ := m.files.virt.ItemAt(i)
	assert.Equal(t, 2, before.Size, "title and placeholder")

	m.Update(previewMsg{path: "alpha/one.md", token: m.previewTokens["alpha/one.md"], text: "a\nb\nc"})

	after, _ := m.files.virt.ItemAt(i)
	assert.Equal(t, 4, after.Size)
}

func TestSelectionStaysVisibleWhileMoving(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z"} {
		files["f"+name+"/note.md"] = "body\n"
	}
	m := newTestModel(t, files, func(s *config.Settings) { s.ShowTags = false })
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 12})

	for range 20 {
		press(m, "down")
		i := m.navIndex.Lookup(m.store.Selection().NavKey())
		item, ok := m.folders.virt.ItemAt(i)
		require.True(t, ok)
		offset := m.folders.virt.ScrollOffset()
		assert.GreaterOrEqual(t, item.Start, offset)
		assert.LessOrEqual(t, item.End(), offset+m.layout.ListHeight)
	}
	assert.Equal(t, "fu", m.store.Selection().Folder)
}

func TestCompactLayoutUsesTouchPolicy(t *testing.T) {
	m := newTestModel(t, sampleVault, func(s *config.Settings) { s.Layout = config.LayoutAuto })
	assert.False(t, m.layout.Compact)
	assert.IsType(t, &scrollsync.DesktopScrollPolicy{}, m.sync.Policy())

	m.Update(tea.WindowSizeMsg{Width: 60, Height: 30})
	assert.True(t, m.layout.Compact)
	assert.IsType(t, &scrollsync.TouchScrollPolicy{}, m.sync.Policy())

	press(m, "tab")
	assert.Equal(t, state.ViewFiles, m.store.UI().MobileView)
	assert.Contains(t, m.View(), "one")

	press(m, "esc")
	assert.Equal(t, state.ViewList, m.store.UI().MobileView)
}

func TestFilterNarrowsFileList(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	press(m, "/", "t", "w", "o")
	assert.True(t, m.filtering)
	assert.Equal(t, []string{"alpha/two.md"}, fileKeys(m))

	press(m, "enter")
	assert.False(t, m.filtering)
	assert.Equal(t, "alpha/two.md", m.store.Selection().File)

	press(m, "esc")
	assert.Equal(t, []string{"alpha/one.md", "alpha/two.md"}, fileKeys(m))
}

func TestSortCycleIsSaved(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	m.cfgPath = filepath.Join(t.TempDir(), "config.json")

	press(m, "s")

	assert.Equal(t, config.SortNameDesc, m.settings.SortFor("alpha"))
	assert.Equal(t, []string{"alpha/two.md", "alpha/one.md"}, fileKeys(m))
	saved, err := config.LoadFrom(m.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.SortNameDesc, saved.SortFor("alpha"))
}

func TestSavingSortKeepsFileSettings(t *testing.T) {
	m := newTestModel(t, sampleVault, func(s *config.Settings) {
		s.Layout = config.LayoutDesktop
		s.RTL = true
	})
	onDisk := config.Config{NotesDir: m.notesDir, Settings: config.DefaultSettings()}
	onDisk.Layout = config.LayoutAuto
	m.cfgPath = filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, config.SaveTo(m.cfgPath, onDisk))

	press(m, "s")

	saved, err := config.LoadFrom(m.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.LayoutAuto, saved.Layout)
	assert.False(t, saved.RTL)
	assert.Equal(t, config.SortNameDesc, saved.SortFor("alpha"))
	assert.True(t, m.settings.RTL)
}

func TestSettingsNotSavedForOtherNotesDir(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	other := t.TempDir()
	m.cfgPath = filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, config.SaveTo(m.cfgPath, config.Config{NotesDir: other, Settings: config.DefaultSettings()}))
	before, err := os.ReadFile(m.cfgPath)
	require.NoError(t, err)

	press(m, "s")

	assert.Equal(t, config.SortNameDesc, m.settings.SortFor("alpha"))
	assert.False(t, m.statusIsError)
	after, err := os.ReadFile(m.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestPinMovesNoteToTop(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	press(m, "tab", "down", "t")

	assert.Equal(t, []string{"alpha/two.md"}, m.settings.PinnedFor("alpha"))
	require.NotEmpty(t, m.FileRows())
	assert.Equal(t, rows.ListHeaderRow{Title: rows.PinnedHeader}, m.FileRows()[0])
	assert.Equal(t, []string{"alpha/two.md", "alpha/one.md"}, fileKeys(m))

	press(m, "t")
	assert.Empty(t, m.settings.PinnedFor("alpha"))
}

func TestTagsToggleCollapsesSection(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	require.GreaterOrEqual(t, m.navIndex.Lookup(rows.TagKey("work")), 0)

	press(m, "#")
	assert.Less(t, m.navIndex.Lookup(rows.TagKey("work")), 0)
}

func TestClickSelectsFolder(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)

	m.Update(tea.MouseMsg{X: 3, Y: 3, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})

	assert.Equal(t, "beta", m.store.Selection().Folder)
}

func TestStateIsSavedOnChange(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	press(m, "down")

	snap, err := loadAppState(m.notesDir)
	require.NoError(t, err)
	assert.Equal(t, "beta", snap.Selection.Folder)

	restored, err := New(Options{Config: m.cfg})
	require.NoError(t, err)
	assert.Equal(t, "beta", restored.store.Selection().Folder)
}

func TestViewFitsTerminal(t *testing.T) {
	for _, width := range []int{60, 120, 200} {
		m := newTestModel(t, sampleVault, func(s *config.Settings) { s.Layout = config.LayoutAuto })
		m.Update(tea.WindowSizeMsg{Width: width, Height: 20})

		lines := strings.Split(m.View(), "\n")
		assert.Len(t, lines, 20)
		for _, line := range lines {
			assert.LessOrEqual(t, lipgloss.Width(line), width)
		}
	}
}

func TestQuitSavesState(t *testing.T) {
	m := newTestModel(t, sampleVault, nil)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.FileExists(t, appStatePath(m.notesDir))
}
