// Package state holds the navigator's three state containers (selection,
// expansion and UI) and the reducers that transition them.
//
// Reducers are pure: they take a value and an Action and return a new
// value, sharing nothing mutable with the input. Store is the only writer
// and tells subscribers about every dispatch.
//
// Scroll requests are not a field to be reset by whoever reads it. They
// are queued intents that Store.DrainScrollIntents hands out exactly once.
package state

import (
	"path"
	"strings"

	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/tagtree"
)

// SelectionType says which navigation selection is active.
type SelectionType int

const (
	SelectionNone SelectionType = iota
	SelectionFolder
	SelectionTag
)

func (t SelectionType) String() string {
	switch t {
	case SelectionFolder:
		return "folder"
	case SelectionTag:
		return "tag"
	default:
		return "none"
	}
}

// Pane identifies one of the two navigable panes.
type Pane int

const (
	PaneFolders Pane = iota
	PaneFiles
)

func (p Pane) String() string {
	if p == PaneFiles {
		return "files"
	}
	return "folders"
}

// MobileView is the view shown by the compact layout.
type MobileView int

const (
	ViewList MobileView = iota
	ViewFiles
)

func (v MobileView) String() string {
	if v == ViewFiles {
		return "files"
	}
	return "list"
}

// Selection is what is selected in both panes. Folder is meaningful only
// for SelectionFolder and Tag only for SelectionTag; "" is the vault root
// folder. File is the focused file; Files is the multi-selection and
// always contains File when File is set.
type Selection struct {
	Type   SelectionType
	Folder string
	Tag    string
	File   string
	Files  PathSet
	Anchor string
}

// NavKind maps the selection onto the row builder's navigation kinds.
func (s Selection) NavKind() rows.NavKind {
	switch s.Type {
	case SelectionFolder:
		return rows.NavFolder
	case SelectionTag:
		return rows.NavTag
	default:
		return rows.NavNone
	}
}

// NavPath returns the selected folder path or tag key.
func (s Selection) NavPath() string {
	switch s.Type {
	case SelectionFolder:
		return s.Folder
	case SelectionTag:
		return s.Tag
	default:
		return ""
	}
}

// NavKey returns the row key of the navigation selection, or "".
func (s Selection) NavKey() string {
	switch s.Type {
	case SelectionFolder:
		return rows.FolderKey(s.Folder)
	case SelectionTag:
		return rows.TagKey(s.Tag)
	default:
		return ""
	}
}

// FileKey returns the row key of the focused file, or "".
func (s Selection) FileKey() string {
	if s.File == "" {
		return ""
	}
	return rows.FileKey(s.File)
}

// SelectedFiles returns the multi-selection in path order.
func (s Selection) SelectedFiles() []string {
	if s.Files.Len() == 0 && s.File != "" {
		return []string{s.File}
	}
	return s.Files.Sorted()
}

// Equal reports whether two selections are identical.
func (s Selection) Equal(o Selection) bool {
	return s.Type == o.Type && s.Folder == o.Folder && s.Tag == o.Tag &&
		s.File == o.File && s.Anchor == o.Anchor && s.Files.Equal(o.Files)
}

func single(p string) PathSet {
	if p == "" {
		return NewPathSet()
	}
	return NewPathSet(p)
}

// ReduceSelection applies a to s. Actions that do not concern the
// selection return s unchanged.
func ReduceSelection(s Selection, a Action) Selection {
	switch a := a.(type) {
	case SetSelectedFolder:
		if s.Type == SelectionFolder && s.Folder == a.Path {
			return s
		}
		s.Type, s.Folder, s.Tag = SelectionFolder, a.Path, ""
		s.Files = single(s.File)
	case SetSelectedTag:
		if s.Type == SelectionTag && s.Tag == a.Path {
			return s
		}
		s.Type, s.Folder, s.Tag = SelectionTag, "", a.Path
		s.Files = single(s.File)
	case ClearNavSelection:
		if s.Type == SelectionNone {
			return s
		}
		s.Type, s.Folder, s.Tag = SelectionNone, "", ""
		s.Files = single(s.File)
	case SetSelectedFile:
		s.File, s.Anchor = a.Path, a.Path
		s.Files = single(a.Path)
	case AddToSelection:
		if a.Path == "" {
			return s
		}
		if s.Files.Len() == 0 && s.File != "" {
			s.Files = single(s.File)
		}
		s.Files = s.Files.With(a.Path)
		s.File = a.Path
		if s.Anchor == "" {
			s.Anchor = a.Path
		}
	case ToggleFileSelection:
		if a.Path == "" {
			return s
		}
		if s.Files.Len() == 0 && s.File != "" {
			s.Files = single(s.File)
		}
		s.Files = s.Files.Toggle(a.Path)
		switch {
		case s.Files.Has(a.Path):
			s.File, s.Anchor = a.Path, a.Path
		case !s.Files.Has(s.File):
			s.File, s.Anchor = "", ""
			if remaining := s.Files.Sorted(); len(remaining) > 0 {
				s.File, s.Anchor = remaining[0], remaining[0]
			}
		}
	case RangeSelect:
		return rangeSelect(s, a)
	case SelectAllFiles:
		items := rows.FileItems(a.Rows)
		if len(items) == 0 {
			return s
		}
		paths := make([]string, len(items))
		for i, item := range items {
			paths[i] = item.File.Path
		}
		s.Files = NewPathSet(paths...)
		if !s.Files.Has(s.File) {
			s.File = paths[0]
			s.Anchor = paths[0]
		}
	case ClearFileSelection:
		s.Files = single(s.File)
	case RemovePaths:
		for _, p := range a.Paths {
			if isWithin(s.File, p) && s.File != "" {
				s.File = ""
			}
			if isWithin(s.Anchor, p) && s.Anchor != "" {
				s.Anchor = ""
			}
			s.Files = s.Files.WithoutTree(p)
			if s.Type == SelectionFolder && s.Folder != "" && isWithin(s.Folder, p) {
				s.Type, s.Folder = SelectionNone, ""
			}
		}
	case RenamePath:
		if moved, ok := rebase(s.File, a.From, a.To); ok && s.File != "" {
			s.File = moved
		}
		if moved, ok := rebase(s.Anchor, a.From, a.To); ok && s.Anchor != "" {
			s.Anchor = moved
		}
		if s.Type == SelectionFolder {
			if moved, ok := rebase(s.Folder, a.From, a.To); ok && s.Folder != "" {
				s.Folder = moved
			}
		}
		s.Files = s.Files.Rename(a.From, a.To)
	}
	return s
}

func rangeSelect(s Selection, a RangeSelect) Selection {
	if a.Target < 0 || a.Target >= len(a.Rows) {
		return s
	}
	target, ok := a.Rows[a.Target].(rows.FileItemRow)
	if !ok {
		return s
	}
	anchor := s.Anchor
	if anchor == "" {
		anchor = s.File
	}
	from := rows.NewIndex(a.Rows).Lookup(rows.FileKey(anchor))
	if from < 0 {
		from = a.Target
		anchor = target.File.Path
	}
	lo, hi := min(from, a.Target), max(from, a.Target)
	var paths []string
	for _, r := range a.Rows[lo : hi+1] {
		if item, ok := r.(rows.FileItemRow); ok {
			paths = append(paths, item.File.Path)
		}
	}
	s.Files = NewPathSet(paths...)
	s.File = target.File.Path
	s.Anchor = anchor
	return s
}

// Expansion holds the expanded folder paths and tag keys. The tags section
// header is expanded when Tags holds rows.TagsHeaderKey.
type Expansion struct {
	Folders PathSet
	Tags    PathSet
}

// Equal reports whether two expansion states are identical.
func (e Expansion) Equal(o Expansion) bool {
	return e.Folders.Equal(o.Folders) && e.Tags.Equal(o.Tags)
}

// ReduceExpansion applies a to e.
func ReduceExpansion(e Expansion, a Action) Expansion {
	switch a := a.(type) {
	case ToggleFolderExpanded:
		e.Folders = e.Folders.Toggle(a.Path)
	case ToggleTagExpanded:
		e.Tags = e.Tags.Toggle(a.Path)
	case SetFolderExpanded:
		e.Folders = setMembership(e.Folders, a.Path, a.Expanded)
	case SetTagExpanded:
		e.Tags = setMembership(e.Tags, a.Path, a.Expanded)
	case ExpandAncestors:
		if a.Tag {
			e.Tags = e.Tags.With(rows.TagsHeaderKey)
			if a.Path == tagtree.UntaggedPath {
				return e
			}
			for _, p := range ancestors(a.Path) {
				e.Tags = e.Tags.With(p)
			}
			return e
		}
		e.Folders = e.Folders.With("")
		for _, p := range ancestors(a.Path) {
			e.Folders = e.Folders.With(p)
		}
	case RemovePaths:
		for _, p := range a.Paths {
			if p != "" {
				e.Folders = e.Folders.WithoutTree(p)
			}
		}
	case RenamePath:
		if a.From != "" {
			e.Folders = e.Folders.Rename(a.From, a.To)
		}
	}
	return e
}

func setMembership(s PathSet, p string, member bool) PathSet {
	if member {
		return s.With(p)
	}
	return s.Without(p)
}

// ancestors returns the proper ancestors of a slash path, outermost first.
func ancestors(p string) []string {
	var out []string
	for dir := path.Dir(p); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		out = append(out, dir)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ParentPath returns the parent of a folder path or tag key, and false at
// the top level.
func ParentPath(p string) (string, bool) {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", false
	}
	return p[:i], true
}

// ScrollIntent asks for a pane row to be revealed.
type ScrollIntent struct {
	Pane  Pane
	Index int
	Key   string
}

// UI holds focus, the compact layout's view, and pending scroll intents.
type UI struct {
	FocusedPane Pane
	MobileView  MobileView
	intents     []ScrollIntent
}

// PendingScroll reports the queued scroll target of a pane.
func (u UI) PendingScroll(p Pane) (int, bool) {
	for _, in := range u.intents {
		if in.Pane == p {
			return in.Index, true
		}
	}
	return 0, false
}

// ReduceUI applies a to u. A new scroll request for a pane replaces the
// pending one.
func ReduceUI(u UI, a Action) UI {
	switch a := a.(type) {
	case RequestScroll:
		u.intents = withoutPane(u.intents, a.Pane)
		if a.Index >= 0 {
			u.intents = append(u.intents, ScrollIntent{Pane: a.Pane, Index: a.Index, Key: a.Key})
		}
	case CancelScroll:
		u.intents = withoutPane(u.intents, a.Pane)
	case SetFocusedPane:
		u.FocusedPane = a.Pane
	case SetMobileView:
		u.MobileView = a.View
	}
	return u
}

func withoutPane(intents []ScrollIntent, p Pane) []ScrollIntent {
	out := make([]ScrollIntent, 0, len(intents)+1)
	for _, in := range intents {
		if in.Pane != p {
			out = append(out, in)
		}
	}
	return out
}
