package state

import "github.com/treykane/tagnav/internal/rows"

// Action is a state transition request. The set of actions is closed.
type Action interface {
	action()
}

// SetSelectedFolder selects a folder in the navigation pane.
type SetSelectedFolder struct{ Path string }

// SetSelectedTag selects a tag (by folded key) or the untagged bucket.
type SetSelectedTag struct{ Path string }

// ClearNavSelection deselects the navigation pane.
type ClearNavSelection struct{}

// SetSelectedFile selects a single file and makes it the range anchor. An
// empty path clears the file selection.
type SetSelectedFile struct{ Path string }

// AddToSelection adds a file to the multi-selection and focuses it.
type AddToSelection struct{ Path string }

// ToggleFileSelection flips a file's membership in the multi-selection.
type ToggleFileSelection struct{ Path string }

// RangeSelect selects the file rows between the anchor and Target (an
// index into Rows). Headers in between are skipped.
type RangeSelect struct {
	Rows   []rows.FileRow
	Target int
}

// SelectAllFiles selects every file row of Rows.
type SelectAllFiles struct{ Rows []rows.FileRow }

// ClearFileSelection empties the multi-selection, keeping the focused file.
type ClearFileSelection struct{}

// RemovePaths forgets deleted files and folders everywhere.
type RemovePaths struct{ Paths []string }

// RenamePath moves selection and expansion entries from one path to
// another, including paths below it.
type RenamePath struct{ From, To string }

// ToggleFolderExpanded flips a folder's expansion.
type ToggleFolderExpanded struct{ Path string }

// ToggleTagExpanded flips a tag's expansion.
type ToggleTagExpanded struct{ Path string }

// SetFolderExpanded sets a folder's expansion.
type SetFolderExpanded struct {
	Path     string
	Expanded bool
}

// SetTagExpanded sets a tag's expansion.
type SetTagExpanded struct {
	Path     string
	Expanded bool
}

// ExpandAncestors expands every ancestor of a folder path or tag key so the
// row becomes visible.
type ExpandAncestors struct {
	Tag  bool
	Path string
}

// RequestScroll asks for a row of a pane to be scrolled into view before
// the next frame is drawn. Key, when set, names the row so the request
// survives a rebuild that shifts indices; Index is the predicted position.
type RequestScroll struct {
	Pane  Pane
	Index int
	Key   string
}

// CancelScroll drops a pending scroll request for a pane.
type CancelScroll struct{ Pane Pane }

// SetFocusedPane moves keyboard focus between the panes.
type SetFocusedPane struct{ Pane Pane }

// SetMobileView switches the visible view in the compact layout.
type SetMobileView struct{ View MobileView }

func (SetSelectedFolder) action()    {}
func (SetSelectedTag) action()       {}
func (ClearNavSelection) action()    {}
func (SetSelectedFile) action()      {}
func (AddToSelection) action()       {}
func (ToggleFileSelection) action()  {}
func (RangeSelect) action()          {}
func (SelectAllFiles) action()       {}
func (ClearFileSelection) action()   {}
func (RemovePaths) action()          {}
func (RenamePath) action()           {}
func (ToggleFolderExpanded) action() {}
func (ToggleTagExpanded) action()    {}
func (SetFolderExpanded) action()    {}
func (SetTagExpanded) action()       {}
func (ExpandAncestors) action()      {}
func (RequestScroll) action()        {}
func (CancelScroll) action()         {}
func (SetFocusedPane) action()       {}
func (SetMobileView) action()        {}
