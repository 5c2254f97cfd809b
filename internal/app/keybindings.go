package app

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/keynav"
)

// ---------------------------------------------------------------------------
// Action constants
// ---------------------------------------------------------------------------
//
// Each constant below identifies a user-triggerable action while browsing.
// A key press is looked up in keyToAction and the action is dispatched in
// handleBrowseKey. Navigation actions are forwarded to the keyboard
// controller; the rest are handled by the app.
//
// Default key assignments are declared in defaultActionKeys. Users can
// override any assignment via the "keybindings" object in config.json or an
// external keymap file.
// ---------------------------------------------------------------------------

const (
	actionUp         = "nav.up"
	actionDown       = "nav.down"
	actionPageUp     = "nav.page_up"
	actionPageDown   = "nav.page_down"
	actionHome       = "nav.home"
	actionEnd        = "nav.end"
	actionLeft       = "nav.left"
	actionRight      = "nav.right"
	actionEnter      = "nav.enter"
	actionFocusNext  = "focus.next"
	actionFocusPrev  = "focus.prev"
	actionExtendUp   = "select.extend_up"
	actionExtendDown = "select.extend_down"
	actionSelectAll  = "select.all"
	actionDelete     = "item.delete"

	// actionFilter opens the file list filter input.
	actionFilter = "filter.open"

	// actionSort cycles the sort option of the selected folder or tag.
	actionSort = "list.sort.cycle"

	// actionPin pins or unpins the focused note in the selected folder or tag.
	actionPin = "list.pin.toggle"

	// actionTagsToggle collapses or expands the whole tags section.
	actionTagsToggle = "tags.toggle"

	// actionCenter scrolls the focused pane so the selection sits in the middle.
	actionCenter = "view.center"

	// actionBack returns from the reader or the file list in the compact layout.
	actionBack = "view.back"

	actionReaderPageUp   = "reader.page_up"
	actionReaderPageDown = "reader.page_down"

	// actionRefresh rescans the vault from disk.
	actionRefresh = "vault.refresh"

	actionHelp = "help.toggle"
	actionQuit = "app.quit"
)

// defaultActionKeys maps each action to its factory-default key bindings.
//
// Key strings use the Bubble Tea notation ("ctrl+", "alt+", "shift+" plus a
// key name or a single character).
var defaultActionKeys = map[string][]string{
	actionUp:             {"up", "k"},
	actionDown:           {"down", "j"},
	actionPageUp:         {"pgup"},
	actionPageDown:       {"pgdown"},
	actionHome:           {"home", "g"},
	actionEnd:            {"end", "shift+g"},
	actionLeft:           {"left", "h"},
	actionRight:          {"right", "l"},
	actionEnter:          {"enter"},
	actionFocusNext:      {"tab"},
	actionFocusPrev:      {"shift+tab"},
	actionExtendUp:       {"shift+up", "shift+k"},
	actionExtendDown:     {"shift+down", "shift+j"},
	actionSelectAll:      {"ctrl+a"},
	actionDelete:         {"delete", "backspace"},
	actionFilter:         {"/"},
	actionSort:           {"s"},
	actionPin:            {"t"},
	actionTagsToggle:     {"#"},
	actionCenter:         {"z"},
	actionBack:           {"esc"},
	actionReaderPageUp:   {"ctrl+u"},
	actionReaderPageDown: {"ctrl+d"},
	actionRefresh:        {"ctrl+r", "shift+r"},
	actionHelp:           {"?"},
	actionQuit:           {"q", "ctrl+c"},
}

// actionDescriptions are the help texts of the actions.
var actionDescriptions = map[string]string{
	actionUp:             "previous row",
	actionDown:           "next row",
	actionPageUp:         "page up",
	actionPageDown:       "page down",
	actionHome:           "first row",
	actionEnd:            "last row",
	actionLeft:           "collapse / back",
	actionRight:          "expand / forward",
	actionEnter:          "expand / open",
	actionFocusNext:      "next pane",
	actionFocusPrev:      "previous pane",
	actionExtendUp:       "extend selection up",
	actionExtendDown:     "extend selection down",
	actionSelectAll:      "select all notes",
	actionDelete:         "delete",
	actionFilter:         "filter notes",
	actionSort:           "cycle sort",
	actionPin:            "pin note",
	actionTagsToggle:     "toggle tags",
	actionCenter:         "center selection",
	actionBack:           "back",
	actionReaderPageUp:   "reader half page up",
	actionReaderPageDown: "reader half page down",
	actionRefresh:        "rescan vault",
	actionHelp:           "help",
	actionQuit:           "quit",
}

// navigationKeys translates navigation actions into controller keys.
var navigationKeys = map[string]struct {
	key   keynav.Key
	shift bool
}{
	actionUp:         {keynav.KeyUp, false},
	actionDown:       {keynav.KeyDown, false},
	actionPageUp:     {keynav.KeyPageUp, false},
	actionPageDown:   {keynav.KeyPageDown, false},
	actionHome:       {keynav.KeyHome, false},
	actionEnd:        {keynav.KeyEnd, false},
	actionLeft:       {keynav.KeyLeft, false},
	actionRight:      {keynav.KeyRight, false},
	actionEnter:      {keynav.KeyEnter, false},
	actionFocusNext:  {keynav.KeyTab, false},
	actionFocusPrev:  {keynav.KeyShiftTab, false},
	actionExtendUp:   {keynav.KeyUp, true},
	actionExtendDown: {keynav.KeyDown, true},
	actionSelectAll:  {keynav.KeySelectAll, false},
	actionDelete:     {keynav.KeyDelete, false},
}

// helpGroups orders the actions shown in the full help view.
var helpGroups = [][]string{
	{actionUp, actionDown, actionPageUp, actionPageDown, actionHome, actionEnd},
	{actionLeft, actionRight, actionEnter, actionFocusNext, actionFocusPrev, actionBack},
	{actionExtendUp, actionExtendDown, actionSelectAll, actionDelete, actionCenter},
	{actionFilter, actionSort, actionPin, actionTagsToggle, actionRefresh, actionHelp, actionQuit},
}

// shortHelpActions are shown in the footer.
var shortHelpActions = []string{actionFocusNext, actionFilter, actionSort, actionDelete, actionHelp, actionQuit}

// ---------------------------------------------------------------------------
// Keybinding initialization
// ---------------------------------------------------------------------------

// loadKeybindings initializes the bidirectional key↔action maps from three
// sources, applied in order of increasing priority:
//
//  1. defaultActionKeys
//  2. cfg.Keybindings, the inline overrides in config.json
//  3. the external keymap file at cfg.KeymapFile, if it exists
//
// Unknown action names are logged and ignored. An override replaces the
// action's full default key set. When two actions claim the same key the
// first one keeps it.
func (m *Model) loadKeybindings(cfg config.Config) {
	m.keyForAction = map[string][]string{}
	for action, keys := range defaultActionKeys {
		m.keyForAction[action] = append([]string(nil), keys...)
	}

	for action, key := range cfg.Keybindings {
		m.applyKeybindingOverride(action, key)
	}

	fileOverrides := loadKeymapFile(cfg.KeymapFile)
	for action, key := range fileOverrides {
		m.applyKeybindingOverride(action, key)
	}

	m.rebuildActionKeyIndex()
	m.keys = m.buildKeyMap()
}

// loadKeymapFile reads a flat JSON object mapping actions to keys:
//
//	{
//	    "list.sort.cycle": "S",
//	    "nav.down": "ctrl+n"
//	}
//
// A missing file is not an error.
func loadKeymapFile(path string) map[string]string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			appLog.WithError(err).WithField("path", path).Warn("read keymap file")
		}
		return nil
	}
	overrides := map[string]string{}
	if err := json.Unmarshal(data, &overrides); err != nil {
		appLog.WithError(err).WithField("path", path).Warn("parse keymap file")
		return nil
	}
	return overrides
}

func (m *Model) applyKeybindingOverride(action, key string) {
	action = strings.TrimSpace(action)
	key = normalizeKeyString(key)
	if action == "" || key == "" {
		return
	}
	if _, ok := defaultActionKeys[action]; !ok {
		appLog.WithField("action", action).Warn("ignore unknown keybinding action")
		return
	}
	m.keyForAction[action] = []string{key}
}

// rebuildActionKeyIndex constructs keyToAction from keyForAction. Actions
// are visited in sorted order so conflicts resolve the same way every run.
func (m *Model) rebuildActionKeyIndex() {
	m.keyToAction = map[string]string{}
	actions := make([]string, 0, len(m.keyForAction))
	for action := range m.keyForAction {
		actions = append(actions, action)
	}
	slices.Sort(actions)
	for _, action := range actions {
		for _, key := range m.keyForAction[action] {
			if key == "" {
				continue
			}
			if existing, ok := m.keyToAction[key]; ok && existing != action {
				appLog.WithField("key", key).WithField("action", action).WithField("existing_action", existing).Warn("keybinding conflict ignored")
				continue
			}
			m.keyToAction[key] = action
		}
	}
}

// normalizeKeyString converts a user-provided key string into the canonical
// lowercase form used by the keybinding maps. A single uppercase letter
// becomes "shift+<letter>" because Bubble Tea reports shifted letters as
// uppercase runes.
//
//	normalizeKeyString("Ctrl+A")  → "ctrl+a"
//	normalizeKeyString(" G ")     → "shift+g"
//	normalizeKeyString("")        → ""
func normalizeKeyString(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len([]rune(key)) == 1 && strings.ToUpper(key) == key && strings.ToLower(key) != key {
		return "shift+" + strings.ToLower(key)
	}
	return strings.ToLower(key)
}

// actionForKey looks up the action bound to a key string, or "".
func (m *Model) actionForKey(key string) string {
	if m.keyToAction == nil {
		return ""
	}
	return m.keyToAction[normalizeKeyString(key)]
}

func (m *Model) actionKeyLabels(action string) []string {
	keys, ok := m.keyForAction[action]
	if !ok || len(keys) == 0 {
		return nil
	}
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		label := humanizeKeyLabel(key)
		if label == "" || slices.Contains(labels, label) {
			continue
		}
		labels = append(labels, label)
	}
	return labels
}

// keyMap adapts the action bindings to the bubbles help view.
type keyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return k.short }
func (k keyMap) FullHelp() [][]key.Binding { return k.full }

func (m *Model) binding(action string) key.Binding {
	return key.NewBinding(
		key.WithKeys(m.keyForAction[action]...),
		key.WithHelp(strings.Join(m.actionKeyLabels(action), "/"), actionDescriptions[action]),
	)
}

func (m *Model) buildKeyMap() keyMap {
	var km keyMap
	for _, action := range shortHelpActions {
		km.short = append(km.short, m.binding(action))
	}
	for _, group := range helpGroups {
		column := make([]key.Binding, 0, len(group))
		for _, action := range group {
			column = append(column, m.binding(action))
		}
		km.full = append(km.full, column)
	}
	return km
}

func humanizeKeyLabel(key string) string {
	normalized := normalizeKeyString(key)
	if normalized == "" {
		return ""
	}
	special := map[string]string{
		"up":        "↑",
		"down":      "↓",
		"left":      "←",
		"right":     "→",
		"enter":     "Enter",
		"esc":       "Esc",
		"tab":       "Tab",
		"home":      "Home",
		"end":       "End",
		"pgup":      "PgUp",
		"pgdown":    "PgDn",
		"space":     "Space",
		"delete":    "Del",
		"backspace": "Backspace",
	}
	parts := strings.Split(normalized, "+")
	for i, part := range parts {
		switch part {
		case "ctrl":
			parts[i] = "Ctrl"
		case "alt":
			parts[i] = "Alt"
		case "shift":
			parts[i] = "Shift"
		default:
			if label, ok := special[part]; ok {
				parts[i] = label
				continue
			}
			runes := []rune(part)
			if len(runes) == 1 && runes[0] >= 'a' && runes[0] <= 'z' {
				parts[i] = strings.ToUpper(part)
			} else if part != "" {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
	}
	return strings.Join(parts, "+")
}
