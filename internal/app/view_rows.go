package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/tagnav/internal/rows"
)

// renderNavRow renders one navigation row. Rows are a single line.
func (m *Model) renderNavRow(r rows.NavRow, width int, selected bool) string {
	indent := strings.Repeat("  ", r.Level())
	var line string
	switch r := r.(type) {
	case rows.FolderRow:
		name := r.Folder.Name
		if r.Folder.IsRoot() {
			name = filepath.Base(m.notesDir)
		}
		line = indent + disclosure(r.HasChildren, r.Expanded) + name
		if n := len(r.Folder.Files); n > 0 {
			line += " " + countStyle.Render(fmt.Sprint(n))
		}
	case rows.TagRow:
		line = indent + disclosure(r.HasChildren(), r.Expanded) + tagStyle.Render("#"+r.Node.Name) +
			" " + countStyle.Render(fmt.Sprint(r.Count))
	case rows.UntaggedRow:
		line = "  " + mutedStyle.Render("Untagged") + " " + countStyle.Render(fmt.Sprint(r.Count))
	case rows.HeaderRow:
		line = headerStyle.Render(disclosure(r.ExpandKey != "", r.Expanded) + r.Title)
	case rows.SpacerRow:
		line = ""
	}
	line = truncateWithEllipsis(line, width)
	if selected {
		return selectedStyle.Width(width).Render(line)
	}
	return line
}

func disclosure(expandable, expanded bool) string {
	switch {
	case !expandable:
		return "  "
	case expanded:
		return "▾ "
	default:
		return "▸ "
	}
}

// renderFileRow renders one file list row. A note takes a title line, an
// optional date line and its preview lines, so heights differ between rows
// and change once a preview has loaded.
func (m *Model) renderFileRow(r rows.FileRow, width int, selected bool) string {
	switch r := r.(type) {
	case rows.ListHeaderRow:
		return headerStyle.Render(truncate(r.Title, width))
	case rows.FileItemRow:
		return m.renderFileItem(r, width, selected)
	}
	return ""
}

func (m *Model) renderFileItem(r rows.FileItemRow, width int, selected bool) string {
	title := r.Title
	if r.Pinned {
		title = pinStyle.Render("★ ") + title
	}
	if m.store.Selection().Files.Has(r.File.Path) && m.store.Selection().Files.Len() > 1 {
		title = markedStyle.Render("● ") + title
	}
	lines := []string{truncateWithEllipsis(title, width)}

	if m.settings.ShowDate && r.Timestamp > 0 {
		date := time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04")
		lines = append(lines, mutedStyle.Render(truncate(date, width)))
	}
	if m.settings.ShowPreview && m.settings.PreviewRows > 0 {
		text, loaded := m.previews[r.File.Path]
		switch {
		case !loaded:
			lines = append(lines, mutedStyle.Render("…"))
		case text != "":
			for _, l := range strings.Split(text, "\n") {
				lines = append(lines, mutedStyle.Render(truncateWithEllipsis(l, width)))
			}
		}
	}

	block := strings.Join(lines, "\n")
	if selected {
		return selectedStyle.Width(width).Render(block)
	}
	return block
}

// renderedHeight is the number of terminal lines a rendered row occupies.
func renderedHeight(s string) int {
	return lipgloss.Height(s)
}
