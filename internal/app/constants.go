package app

import "time"

// Layout constants define the default dimensions and spacing for the UI
const (
	// DefaultNavWidth is the widest the navigation pane gets in the wide layout.
	DefaultNavWidth = 36

	// DefaultFilesWidth is the widest the file list gets in the wide layout.
	DefaultFilesWidth = 44

	// PaneWidthDivider caps each list pane at terminal_width / this value.
	PaneWidthDivider = 4

	// ConfirmPopupWidth is the width of the delete confirmation dialog.
	ConfirmPopupWidth = 56

	// FooterMinRows is the default number of rows reserved for the bottom
	// status/help area.
	FooterMinRows = 1
	// FooterMaxRows is the expanded footer height used when content does not
	// fit within FooterMinRows.
	FooterMaxRows = 2
)

// Input limits define maximum sizes for user input
const (
	// FilterCharLimit is the maximum length of the file list filter.
	FilterCharLimit = 120
)

// Rendering constants control render timing and optimization
const (
	// RenderDebounce is the delay before the reader renders a newly selected
	// note, so holding an arrow key does not render every note on the way.
	RenderDebounce = 150 * time.Millisecond

	// RenderWidthBucket is the granularity for width-based render caching
	// Widths are rounded to nearest multiple of this value
	RenderWidthBucket = 20

	// FrameInterval paces smooth scroll animation.
	FrameInterval = 16 * time.Millisecond
)

// File system permissions
const (
	// DirPermission is the permission mode for the managed state directory.
	DirPermission = 0o700

	// FilePermission is the permission mode for the state file.
	FilePermission = 0o600
)
