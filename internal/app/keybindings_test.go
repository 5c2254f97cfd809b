package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treykane/tagnav/internal/config"
)

func TestActionForKeySupportsDefaultAliases(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{})

	cases := map[string]string{
		"up":         actionUp,
		"k":          actionUp,
		"down":       actionDown,
		"j":          actionDown,
		"G":          actionEnd,
		"shift+down": actionExtendDown,
		"J":          actionExtendDown,
		"#":          actionTagsToggle,
		"/":          actionFilter,
		"R":          actionRefresh,
		"ctrl+c":     actionQuit,
	}
	for key, want := range cases {
		assert.Equal(t, want, m.actionForKey(key), "key %q", key)
	}
}

func TestLoadKeybindingsOverrideReplacesDefaultAliases(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{
		Keybindings: map[string]string{actionDown: "alt+j"},
	})

	assert.Equal(t, actionDown, m.actionForKey("alt+j"))
	assert.Empty(t, m.actionForKey("down"))
	assert.Empty(t, m.actionForKey("j"))
}

func TestLoadKeybindingsIgnoresUnknownActions(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{
		Keybindings: map[string]string{"nav.teleport": "x"},
	})

	assert.Empty(t, m.actionForKey("x"))
	assert.Equal(t, actionUp, m.actionForKey("up"))
}

func TestKeymapFileOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"list.sort.cycle": "S"}`), 0o600))

	m := &Model{}
	m.loadKeybindings(config.Config{
		KeymapFile:  path,
		Keybindings: map[string]string{actionSort: "o"},
	})

	assert.Equal(t, actionSort, m.actionForKey("S"))
	assert.Equal(t, actionSort, m.actionForKey("shift+s"))
	assert.Empty(t, m.actionForKey("o"))
	assert.Empty(t, m.actionForKey("s"))
}

func TestMalformedKeymapFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	m := &Model{}
	m.loadKeybindings(config.Config{KeymapFile: path})

	assert.Equal(t, actionSort, m.actionForKey("s"))
}

func TestConflictingBindingKeepsFirstAction(t *testing.T) {
	m := &Model{}
	// "item.delete" sorts before "nav.down", so it keeps the key.
	m.loadKeybindings(config.Config{
		Keybindings: map[string]string{actionDelete: "j"},
	})

	assert.Equal(t, actionDelete, m.actionForKey("j"))
}

func TestNormalizeKeyString(t *testing.T) {
	assert.Equal(t, "ctrl+a", normalizeKeyString("Ctrl+A"))
	assert.Equal(t, "shift+g", normalizeKeyString(" G "))
	assert.Equal(t, "#", normalizeKeyString("#"))
	assert.Equal(t, "", normalizeKeyString(""))
}

func TestHelpBindingsUseLabels(t *testing.T) {
	m := &Model{}
	m.loadKeybindings(config.Config{})

	assert.Equal(t, "Tab", m.binding(actionFocusNext).Help().Key)
	assert.Equal(t, "Q/Ctrl+C", m.binding(actionQuit).Help().Key)
	assert.Len(t, m.keys.ShortHelp(), len(shortHelpActions))
	assert.Len(t, m.keys.FullHelp(), len(helpGroups))
}
