package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/keynav"
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/virtual"
)

var (
	confirmYes = key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "delete"))
	confirmNo  = key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel"))
	filterDone = key.NewBinding(key.WithKeys("enter", "down", "tab"), key.WithHelp("enter", "keep filter"))
	filterExit = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter"))
)

// handleKey routes a key press. Dialogs and text input see keys first;
// everything else goes through the action keymap.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	action := m.actionForKey(msg.String())
	if action == actionQuit {
		m.shutdown()
		return m, tea.Quit
	}
	if m.showHelp {
		if action == actionHelp || action == actionBack {
			m.showHelp = false
		}
		return m, nil
	}
	if m.readerFocused {
		if model, cmd, ok := m.handleReaderKey(msg, action); ok {
			return model, cmd
		}
	}
	if nk, ok := navigationKeys[action]; ok {
		return m.handleNavigationKey(nk.key, nk.shift)
	}
	return m.handleBrowseKey(action)
}

// handleNavigationKey forwards a key to the keyboard controller of the
// focused pane.
func (m *Model) handleNavigationKey(k keynav.Key, shift bool) (tea.Model, tea.Cmd) {
	res := m.nav.HandleKey(keynav.KeyEvent{
		Key:    k,
		Shift:  shift,
		Pane:   m.store.UI().FocusedPane,
		Typing: m.filtering,
		Modal:  m.confirm != nil,
	})
	switch {
	case res.Confirm != nil:
		m.confirm = res.Confirm
	case res.Err != nil:
		m.setStatusError(res.Status, res.Err)
	case res.Status != "":
		m.setStatus(res.Status)
	}
	return m, nil
}

// handleBrowseKey runs the actions the app implements itself.
func (m *Model) handleBrowseKey(action string) (tea.Model, tea.Cmd) {
	switch action {
	case actionHelp:
		m.showHelp = true
	case actionFilter:
		return m, m.openFilter()
	case actionSort:
		m.cycleSort()
	case actionPin:
		m.togglePin()
	case actionTagsToggle:
		m.store.Dispatch(state.ToggleTagExpanded{Path: rows.TagsHeaderKey})
	case actionCenter:
		m.centerSelection()
	case actionBack:
		m.back()
	case actionReaderPageUp:
		m.reader.SetYOffset(m.reader.YOffset - max(1, m.reader.Height/2))
	case actionReaderPageDown:
		m.reader.SetYOffset(m.reader.YOffset + max(1, m.reader.Height/2))
	case actionRefresh:
		return m, m.rescan()
	}
	return m, nil
}

// handleReaderKey scrolls the reader while it has focus. ok is false for
// keys the reader does not use.
func (m *Model) handleReaderKey(msg tea.KeyMsg, action string) (tea.Model, tea.Cmd, bool) {
	switch action {
	case actionBack, actionFocusPrev, actionLeft:
		m.readerFocused = false
		return m, nil, true
	case actionHome:
		m.reader.GotoTop()
		return m, nil, true
	case actionEnd:
		m.reader.GotoBottom()
		return m, nil, true
	case actionUp, actionDown, actionPageUp, actionPageDown:
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd, true
	}
	return m, nil, false
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, confirmYes):
		m.confirm = nil
		res := m.nav.ConfirmPendingDelete()
		if res.Err != nil {
			m.setStatusError(res.Status, res.Err)
		} else if res.Status != "" {
			m.setStatus(res.Status)
		}
	case key.Matches(msg, confirmNo):
		m.confirm = nil
		m.nav.CancelPendingDelete()
		m.setStatus("Delete cancelled")
	}
	return m, nil
}

func (m *Model) openFilter() tea.Cmd {
	m.filtering = true
	m.filter.SetValue(m.query)
	m.filter.CursorEnd()
	m.store.Dispatch(state.SetFocusedPane{Pane: state.PaneFiles}, state.SetMobileView{View: state.ViewFiles})
	return m.filter.Focus()
}

// handleFilterKey edits the filter. The file list narrows as the query
// changes; enter keeps the filter and returns to the list.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, filterExit):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.setQuery("")
		return m, nil
	case key.Matches(msg, filterDone):
		m.filtering = false
		m.filter.Blur()
		m.selectFirstFileIfLost()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.setQuery(m.filter.Value())
	return m, cmd
}

func (m *Model) setQuery(q string) {
	q = strings.TrimSpace(q)
	if q == m.query {
		return
	}
	m.query = q
	m.files.el.Offset = 0
}

// selectFirstFileIfLost focuses the first file when the filter hid the
// focused one.
func (m *Model) selectFirstFileIfLost() {
	m.refreshRows()
	if m.fileIndex.Lookup(m.store.Selection().FileKey()) >= 0 {
		return
	}
	first := rows.FirstSelectable(m.fileRows)
	if first < 0 {
		return
	}
	item := m.fileRows[first].(rows.FileItemRow)
	m.store.Dispatch(
		state.SetSelectedFile{Path: item.File.Path},
		state.RequestScroll{Pane: state.PaneFiles, Index: first, Key: item.Key()},
	)
}

// back leaves the reader, clears a kept filter or, in the compact layout,
// returns from the file list to the navigation pane.
func (m *Model) back() {
	switch {
	case m.query != "":
		m.filter.SetValue("")
		m.setQuery("")
	case m.layout.Compact && m.store.UI().MobileView == state.ViewFiles:
		m.store.Dispatch(state.SetFocusedPane{Pane: state.PaneFolders}, state.SetMobileView{View: state.ViewList})
	case m.store.Selection().Files.Len() > 1:
		m.store.Dispatch(state.ClearFileSelection{})
	}
}

// cycleSort moves the selected folder or tag to its next sort option and
// saves it.
func (m *Model) cycleSort() {
	sel := m.store.Selection()
	if sel.Type == state.SelectionNone {
		m.setStatus("Select a folder or tag to sort")
		return
	}
	scope := scopeOf(sel)
	next := m.settings.SortFor(scope).Next()
	m.updateSettings(m.settings.WithFolderSort(scope, next))
	m.setStatus("Sort: " + string(next))
	m.revealFocusedFile()
}

// scopeOf returns the settings scope of the selected folder or tag.
func scopeOf(sel state.Selection) string {
	return rows.SettingsScope(sel.NavKind(), sel.NavPath())
}

// togglePin pins or unpins the focused note in the current folder or tag.
func (m *Model) togglePin() {
	sel := m.store.Selection()
	if sel.Type == state.SelectionNone || sel.File == "" {
		m.setStatus("Select a note to pin")
		return
	}
	scope := scopeOf(sel)
	pinned := false
	for _, p := range m.settings.PinnedFor(scope) {
		if p == sel.File {
			pinned = true
			break
		}
	}
	m.updateSettings(m.settings.WithPinToggled(scope, sel.File))
	if pinned {
		m.setStatus("Unpinned " + sel.File)
	} else {
		m.setStatus("Pinned " + sel.File)
	}
	m.revealFocusedFile()
}

// revealFocusedFile scrolls to the focused file after the list was
// reordered.
func (m *Model) revealFocusedFile() {
	m.refreshRows()
	key := m.store.Selection().FileKey()
	if i := m.fileIndex.Lookup(key); i >= 0 {
		m.store.Dispatch(state.RequestScroll{Pane: state.PaneFiles, Index: i, Key: key})
	}
}

// updateSettings replaces the settings and writes them to the config file.
func (m *Model) updateSettings(s config.Settings) {
	m.settings = s
	m.cfg.Settings = s
	m.settingsRev++
	if m.cfgPath == "" {
		return
	}
	if err := m.persistSettings(); err != nil {
		m.setStatusError("Could not save settings", err)
	}
}

// persistSettings merges the folder sorts and pins into the config file as
// it is on disk. Everything else in the file stays as written, so command
// line overrides held in m.cfg are never saved.
func (m *Model) persistSettings() error {
	saved, err := config.LoadFrom(m.cfgPath)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		saved = config.Config{NotesDir: m.notesDir, Settings: config.DefaultSettings()}
	case err != nil:
		return err
	}
	if saved.NotesDir != m.notesDir {
		appLog.WithFields(logrus.Fields{
			"config_notes_dir": saved.NotesDir,
			"notes_dir":        m.notesDir,
		}).Debug("notes dir overridden; settings kept for this session only")
		return nil
	}
	saved.FolderSorts = m.settings.FolderSorts
	saved.Pinned = m.settings.Pinned
	return config.SaveTo(m.cfgPath, saved)
}

// centerSelection scrolls the focused pane so its selected row sits in the
// middle, animated.
func (m *Model) centerSelection() {
	sel := m.store.Selection()
	pane, index := m.folders, m.navIndex.Lookup(sel.NavKey())
	if m.store.UI().FocusedPane == state.PaneFiles {
		pane, index = m.files, m.fileIndex.Lookup(sel.FileKey())
	}
	if index < 0 {
		return
	}
	opts := virtual.ScrollOptions{Align: virtual.AlignCenter, Behavior: virtual.BehaviorSmooth}
	if err := pane.virt.ScrollToIndex(index, opts); err != nil {
		appLog.WithError(err).Debug("center selection")
	}
}
