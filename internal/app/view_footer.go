package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/treykane/tagnav/internal/state"
)

func (m *Model) renderStatus(width, rows int) string {
	statusRows, _ := m.buildStatusRows(width, rows)
	style := statusStyle
	if m.statusIsError {
		style = errorStatus
	}
	for len(statusRows) < rows {
		statusRows = append(statusRows, "")
	}

	rendered := make([]string, 0, len(statusRows))
	for _, line := range statusRows {
		line = " " + truncate(line, max(0, width-1))
		rendered = append(rendered, style.Width(width).Render(line))
	}
	return strings.Join(rendered, "\n")
}

// buildStatusRows packs the footer segments into at most rowLimit rows. fit
// is false when something had to be cut.
func (m *Model) buildStatusRows(width, rowLimit int) ([]string, bool) {
	if width <= 0 || rowLimit <= 0 {
		return nil, true
	}

	help := m.statusHelpSegments()
	context := m.statusContextSegments()
	status := m.statusMessageSegment()

	segments := make([]string, 0, len(help)+len(context)+1)
	if status != "" {
		segments = append(segments, status)
	}
	segments = append(segments, context...)
	segments = append(segments, help...)

	rows := make([]string, 1, rowLimit)
	rowIndex := 0
	fit := true
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		segment := seg
		if lipgloss.Width(segment) > width {
			segment = truncateWithEllipsis(segment, width)
		}

		candidate := segment
		if rows[rowIndex] != "" {
			candidate = rows[rowIndex] + " | " + segment
		}
		if lipgloss.Width(candidate) <= width {
			rows[rowIndex] = candidate
			continue
		}
		if rowIndex+1 < rowLimit {
			rowIndex++
			rows = append(rows, segment)
			continue
		}

		fit = false
		if rows[rowIndex] == "" {
			rows[rowIndex] = truncateWithEllipsis(segment, width)
		} else {
			rows[rowIndex] = truncateWithEllipsis(rows[rowIndex]+" | "+segment, width)
		}
		break
	}
	return rows, fit
}

func (m *Model) statusHelpSegments() []string {
	switch {
	case m.confirm != nil:
		return []string{"y confirm delete", "n/Esc cancel"}
	case m.filtering:
		return []string{"type to filter", "Enter keep", "Esc clear"}
	case m.showHelp:
		return []string{"? close help"}
	}
	segments := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		if h := b.Help(); h.Key != "" {
			segments = append(segments, h.Key+" "+h.Desc)
		}
	}
	return segments
}

func (m *Model) statusContextSegments() []string {
	parts := make([]string, 0, 2)
	sel := m.store.Selection()
	if n := sel.Files.Len(); n > 1 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if sel.Type != state.SelectionNone {
		parts = append(parts, "sort "+string(m.settings.SortFor(scopeOf(sel))))
	}
	return parts
}

func (m *Model) statusMessageSegment() string {
	return strings.TrimSpace(m.status)
}
