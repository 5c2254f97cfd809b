package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
)

// wheelStep is how many lines one wheel notch scrolls.
const wheelStep = 3

type mouseTarget int

const (
	targetNone mouseTarget = iota
	targetFolders
	targetFiles
	targetReader
)

// mouseTargetAt returns the pane under column x.
func (m *Model) mouseTargetAt(x int) mouseTarget {
	if m.layout.Compact {
		switch {
		case m.readerFocused:
			return targetReader
		case m.store.UI().MobileView == state.ViewFiles:
			return targetFiles
		default:
			return targetFolders
		}
	}
	switch {
	case x < m.layout.NavWidth:
		return targetFolders
	case x < m.layout.NavWidth+m.layout.FilesWidth:
		return targetFiles
	default:
		return targetReader
	}
}

// handleMouse scrolls panes with the wheel and selects rows on click.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil || m.showHelp {
		return m, nil
	}
	target := m.mouseTargetAt(msg.X)
	delta := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -wheelStep
	case tea.MouseButtonWheelDown:
		delta = wheelStep
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress {
			m.handleClick(target, msg)
		}
		return m, nil
	default:
		return m, nil
	}

	switch target {
	case targetFolders:
		m.folders.virt.ScrollBy(delta)
	case targetFiles:
		m.files.virt.ScrollBy(delta)
	case targetReader:
		m.reader.SetYOffset(m.reader.YOffset + delta)
	}
	return m, nil
}

// handleClick selects the row under the pointer. Ctrl toggles a note in
// the multi-selection and shift extends it.
func (m *Model) handleClick(target mouseTarget, msg tea.MouseMsg) {
	// Rows start below the pane border and the title line.
	line := msg.Y - 2
	if line < 0 || line >= m.layout.ListHeight {
		return
	}
	switch target {
	case targetFolders:
		i := m.folders.virt.IndexAtOffset(m.folders.virt.ScrollOffset() + line)
		if i < 0 || i >= len(m.navRows) {
			return
		}
		m.readerFocused = false
		m.clickNavRow(m.navRows[i])
	case targetFiles:
		i := m.files.virt.IndexAtOffset(m.files.virt.ScrollOffset() + line)
		if i < 0 || i >= len(m.fileRows) {
			return
		}
		item, ok := m.fileRows[i].(rows.FileItemRow)
		if !ok {
			return
		}
		m.readerFocused = false
		var action state.Action = state.SetSelectedFile{Path: item.File.Path}
		switch {
		case msg.Ctrl:
			action = state.ToggleFileSelection{Path: item.File.Path}
		case msg.Shift:
			action = state.RangeSelect{Rows: m.fileRows, Target: i}
		}
		m.store.Dispatch(action, state.SetFocusedPane{Pane: state.PaneFiles})
	case targetReader:
		if m.currentFile != "" {
			m.readerFocused = true
		}
	}
}

// clickNavRow selects a folder or tag; clicking the selected row toggles
// its expansion and clicking the tags header collapses the section.
func (m *Model) clickNavRow(r rows.NavRow) {
	focus := state.SetFocusedPane{Pane: state.PaneFolders}
	if h, ok := r.(rows.HeaderRow); ok {
		if h.ExpandKey != "" {
			m.store.Dispatch(state.ToggleTagExpanded{Path: h.ExpandKey}, focus)
		}
		return
	}
	if r.Key() == m.store.Selection().NavKey() {
		switch r := r.(type) {
		case rows.FolderRow:
			if r.HasChildren {
				m.store.Dispatch(state.ToggleFolderExpanded{Path: r.Path()}, focus)
			}
		case rows.TagRow:
			if r.HasChildren() {
				m.store.Dispatch(state.ToggleTagExpanded{Path: r.Path()}, focus)
			}
		}
		return
	}
	if action := selectNavRow(r); action != nil {
		m.store.Dispatch(action, focus)
	}
}
