package scrollsync

import "github.com/treykane/tagnav/internal/state"

// Request asks for the row with Key (or, without a key, at Index) of a
// pane to be revealed.
type Request struct {
	Pane  state.Pane
	Key   string
	Index int
}

// Policy decides which rows a state change should reveal, on top of the
// explicit scroll intents.
type Policy interface {
	Reveal(c state.Change) []Request
	// Scrolled tells the policy a row was revealed.
	Scrolled(pane state.Pane, key string)
}

// DesktopScrollPolicy reveals the selection whenever it changes. A path
// that was just scrolled to is not scrolled to again, since one logical
// selection change can arrive as several state updates.
type DesktopScrollPolicy struct {
	last map[state.Pane]string
}

// NewDesktopScrollPolicy returns a DesktopScrollPolicy.
func NewDesktopScrollPolicy() *DesktopScrollPolicy {
	return &DesktopScrollPolicy{last: map[state.Pane]string{}}
}

func (p *DesktopScrollPolicy) Reveal(c state.Change) []Request {
	var out []Request
	prev, next := c.Prev.Selection, c.Next.Selection
	if key := next.NavKey(); key != "" && key != prev.NavKey() && key != p.last[state.PaneFolders] {
		out = append(out, Request{Pane: state.PaneFolders, Key: key, Index: -1})
	}
	if key := next.FileKey(); key != "" && key != prev.FileKey() && key != p.last[state.PaneFiles] {
		out = append(out, Request{Pane: state.PaneFiles, Key: key, Index: -1})
	}
	return out
}

func (p *DesktopScrollPolicy) Scrolled(pane state.Pane, key string) {
	p.last[pane] = key
}

// TouchScrollPolicy reveals the selection when a view becomes visible
// again rather than on every selection change, because a hidden list misses
// intermediate updates.
//
// The list view also re-runs when folders are expanded or collapsed. The
// two cases are told apart by the size of the expanded folder set: the same
// size as last time means the user came back to the list, a different size
// means they expanded or collapsed something and must not be scrolled
// away. Expanding one folder and collapsing another in the same update
// defeats this. Tag expansion never scrolls the list.
type TouchScrollPolicy struct {
	lastExpanded int
}

// NewTouchScrollPolicy returns a TouchScrollPolicy seeded with the current
// number of expanded folders.
func NewTouchScrollPolicy(expandedFolders int) *TouchScrollPolicy {
	return &TouchScrollPolicy{lastExpanded: expandedFolders}
}

func (p *TouchScrollPolicy) Reveal(c state.Change) []Request {
	var out []Request
	size := c.Next.Expansion.Folders.Len()
	became := c.Prev.UI.MobileView != c.Next.UI.MobileView
	switch c.Next.UI.MobileView {
	case state.ViewList:
		folders := !c.Prev.Expansion.Folders.Equal(c.Next.Expansion.Folders)
		if (became || folders) && size == p.lastExpanded {
			if key := c.Next.Selection.NavKey(); key != "" {
				out = append(out, Request{Pane: state.PaneFolders, Key: key, Index: -1})
			}
		}
	case state.ViewFiles:
		if became {
			if key := c.Next.Selection.FileKey(); key != "" {
				out = append(out, Request{Pane: state.PaneFiles, Key: key, Index: -1})
			}
		}
	}
	p.lastExpanded = size
	return out
}

func (p *TouchScrollPolicy) Scrolled(state.Pane, string) {}
