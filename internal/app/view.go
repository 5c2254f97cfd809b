package app

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/tagnav/internal/state"
)

// View draws the panes, any dialog on top of them, and the status footer.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	layout := m.layout
	var row string
	if layout.Compact {
		switch {
		case m.readerFocused:
			row = m.renderReader(layout.ReaderWidth, layout.ContentHeight)
		case m.store.UI().MobileView == state.ViewFiles:
			row = m.renderFilesPane(layout.FilesWidth, layout.ContentHeight)
		default:
			row = m.renderNavPane(layout.NavWidth, layout.ContentHeight)
		}
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderNavPane(layout.NavWidth, layout.ContentHeight),
			m.renderFilesPane(layout.FilesWidth, layout.ContentHeight),
			m.renderReader(layout.ReaderWidth, layout.ContentHeight),
		)
	}
	if overlay := m.renderActiveOverlay(m.width, layout.ContentHeight); overlay != "" {
		row = overlay
	}
	// Clamp the pane row so the last terminal lines are always reserved for the footer.
	row = padBlock(row, m.width, layout.ContentHeight)

	view := row + "\n" + m.renderStatus(m.width, m.footerHeightForWidth(m.width))
	return padBlock(view, m.width, m.height)
}

// frame renders content inside a pane border of the given outer size.
func frame(style lipgloss.Style, width, height int, content string) string {
	innerWidth := max(0, width-style.GetHorizontalFrameSize())
	innerHeight := max(0, height-style.GetVerticalFrameSize())
	content = padBlock(content, innerWidth, innerHeight)
	return style.
		Width(max(0, width-style.GetHorizontalBorderSize())).
		Height(innerHeight).
		Render(content)
}

func (m *Model) paneStyleFor(pane state.Pane) lipgloss.Style {
	if !m.readerFocused && !m.filtering && m.store.UI().FocusedPane == pane {
		return focusedPane
	}
	return blurredPane
}

// renderNavPane draws the folder and tag navigation pane.
func (m *Model) renderNavPane(width, height int) string {
	style := m.paneStyleFor(state.PaneFolders)
	inner := max(0, width-style.GetHorizontalFrameSize())
	title := titleStyle.Render(truncate(filepath.Base(m.notesDir), inner))

	navKey := m.store.Selection().NavKey()
	body := renderWindow(m.folders, m.layout.ListHeight, func(i int) string {
		r := m.navRows[i]
		return m.renderNavRow(r, inner, r.Key() == navKey)
	})
	if len(m.navRows) == 0 {
		body = mutedStyle.Render("(empty vault)")
	}
	return frame(style, width, height, title+"\n"+body)
}

// renderFilesPane draws the file list, with the filter input while it is
// open or active.
func (m *Model) renderFilesPane(width, height int) string {
	style := m.paneStyleFor(state.PaneFiles)
	inner := max(0, width-style.GetHorizontalFrameSize())

	title := titleStyle.Render(m.fileListTitle())
	if m.filtering {
		m.filter.Width = max(1, inner-lipgloss.Width(m.filter.Prompt)-1)
		title = m.filter.View()
	} else if m.query != "" {
		title += mutedStyle.Render(" /" + m.query)
	}
	title = truncate(title, inner)

	fileKey := m.store.Selection().FileKey()
	body := renderWindow(m.files, m.layout.ListHeight, func(i int) string {
		r := m.fileRows[i]
		return m.renderFileRow(r, inner, r.Key() == fileKey)
	})
	if len(m.fileRows) == 0 {
		body = mutedStyle.Render("(no notes)")
	}
	return frame(style, width, height, title+"\n"+body)
}

func (m *Model) fileListTitle() string {
	sel := m.store.Selection()
	switch sel.Type {
	case state.SelectionFolder:
		if sel.Folder == "" {
			return filepath.Base(m.notesDir)
		}
		return sel.Folder
	case state.SelectionTag:
		if node := m.tags.Lookup(sel.Tag); node != nil {
			return "#" + node.Path
		}
		return "Untagged"
	}
	return "Notes"
}

// renderReader draws the rendered note.
func (m *Model) renderReader(width, height int) string {
	style := blurredPane
	if m.readerFocused {
		style = focusedPane
	}
	inner := max(0, width-style.GetHorizontalFrameSize())
	header := "Reader"
	if m.currentFile != "" {
		header = m.currentFile
	}
	if m.rendering {
		header += mutedStyle.Render(" (rendering)")
	}
	return frame(style, width, height, titleStyle.Render(truncate(header, inner))+"\n"+m.reader.View())
}

// renderWindow lays out the rendered rows of the virtual window in a block
// of height lines, each row at its measured offset from the scroll
// position.
func renderWindow(p *listPane, height int, render func(i int) string) string {
	if height <= 0 {
		return ""
	}
	lines := make([]string, height)
	offset := p.virt.ScrollOffset()
	for _, it := range p.virt.GetVirtualItems() {
		for j, line := range strings.Split(render(it.Index), "\n") {
			y := it.Start + j - offset
			if y < 0 || y >= height {
				continue
			}
			lines[y] = line
		}
	}
	return strings.Join(lines, "\n")
}
