// layout.go centralizes the terminal layout calculations.
//
// The wide layout is a horizontal split: navigation pane, file list and
// reader. The list panes are capped at a fixed width and at a fraction of the
// terminal so narrow terminals still get a usable reader. Below the compact
// width, or when the touch layout is configured, only one view is shown at a
// time and the width of the terminal goes to it.
//
// Each list pane spends one line on its title; the footer reserves one or two
// rows depending on how much status text there is.
package app

import "github.com/treykane/tagnav/internal/config"

// LayoutDimensions holds all calculated layout dimensions for the UI.
type LayoutDimensions struct {
	Compact bool

	NavWidth    int // outer width of the navigation pane
	FilesWidth  int // outer width of the file list
	ReaderWidth int // outer width of the reader
	// ContentHeight is the terminal height minus the footer.
	ContentHeight int

	NavInner   int // usable width inside the navigation pane
	FilesInner int // usable width inside the file list
	// ListHeight is the number of row lines inside a list pane.
	ListHeight int

	ReaderInnerWidth  int
	ReaderInnerHeight int
}

// compactLayout reports whether the single-view layout applies at width.
func compactLayout(settings config.Settings, width int) bool {
	switch settings.Layout {
	case config.LayoutTouch:
		return true
	case config.LayoutDesktop:
		return false
	default:
		return width < settings.CompactWidth
	}
}

// calculateLayout computes all UI dimensions from the terminal size.
func (m *Model) calculateLayout() LayoutDimensions {
	compact := compactLayout(m.settings, m.width)
	contentHeight := max(0, m.height-m.footerHeightForWidth(m.width))

	d := LayoutDimensions{Compact: compact, ContentHeight: contentHeight}
	if compact {
		d.NavWidth, d.FilesWidth, d.ReaderWidth = m.width, m.width, m.width
	} else {
		d.NavWidth = min(DefaultNavWidth, m.width/PaneWidthDivider)
		d.FilesWidth = min(DefaultFilesWidth, m.width/PaneWidthDivider)
		d.ReaderWidth = max(0, m.width-d.NavWidth-d.FilesWidth)
	}

	frameW := paneStyle.GetHorizontalFrameSize()
	frameH := paneStyle.GetVerticalFrameSize()
	d.NavInner = max(0, d.NavWidth-frameW)
	d.FilesInner = max(0, d.FilesWidth-frameW)
	d.ListHeight = max(0, contentHeight-frameH-1)
	d.ReaderInnerWidth = max(0, d.ReaderWidth-frameW)
	d.ReaderInnerHeight = max(0, contentHeight-frameH-1)
	return d
}

// footerHeightForWidth returns how many rows should be reserved for the
// footer. It prefers FooterMinRows and expands to FooterMaxRows when the
// footer segments cannot fit.
func (m *Model) footerHeightForWidth(width int) int {
	_, fit := m.buildStatusRows(width, FooterMinRows)
	if fit {
		return FooterMinRows
	}
	return FooterMaxRows
}

// applyLayout pushes the calculated dimensions into the panes and the
// reader. It reports whether the compact layout was switched on or off.
func (m *Model) applyLayout(layout LayoutDimensions) bool {
	switched := layout.Compact != m.layout.Compact || m.layout == (LayoutDimensions{})
	widthChanged := layout.NavInner != m.layout.NavInner || layout.FilesInner != m.layout.FilesInner
	m.layout = layout

	m.folders.el.Height = layout.ListHeight
	m.files.el.Height = layout.ListHeight
	if widthChanged {
		// Rows wrap differently at a new width.
		m.folders.virt.ResetMeasurements()
		m.files.virt.ResetMeasurements()
	}
	m.reader.Width = layout.ReaderInnerWidth
	m.reader.Height = layout.ReaderInnerHeight
	return switched
}
