// Package rows flattens the folder tree, the tag tree and the file list into
// the linear row sequences the panes render and navigate.
//
// Rows are closed sum types: NavRow is implemented only by FolderRow,
// TagRow, UntaggedRow, HeaderRow and SpacerRow; FileRow only by FileItemRow
// and ListHeaderRow. Callers match them with type switches. Only folder, tag,
// untagged and file rows are selectable; headers and spacers are skipped by
// keyboard navigation.
package rows

import (
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/vault"
)

// Key prefixes keep keys unique across row kinds.
const (
	folderKeyPrefix = "folder:"
	tagKeyPrefix    = "tag:"
	fileKeyPrefix   = "file:"
	headerKeyPrefix = "header:"
	spacerKeyPrefix = "spacer:"
)

// TagsHeaderKey is the expansion key of the collapsible tags section.
const TagsHeaderKey = "__tags__"

// Expanded reports whether a folder path or tag key is expanded.
type Expanded interface {
	Has(path string) bool
}

// Row is what every row exposes to the render boundary.
type Row interface {
	Key() string
	Level() int
	Selectable() bool
}

// NavRow is a row of the navigation pane.
type NavRow interface {
	Row
	navRow()
}

// FileRow is a row of the file list pane.
type FileRow interface {
	Row
	fileRow()
}

// FolderRow is a folder in the navigation pane.
type FolderRow struct {
	Folder      *vault.Folder
	Depth       int
	Expanded    bool
	HasChildren bool
}

func (r FolderRow) Key() string      { return FolderKey(r.Folder.Path) }
func (r FolderRow) Level() int       { return r.Depth }
func (r FolderRow) Selectable() bool { return true }
func (FolderRow) navRow()            {}

// Path returns the folder's vault-relative path.
func (r FolderRow) Path() string { return r.Folder.Path }

// TagRow is a tag in the navigation pane.
type TagRow struct {
	Node     *tagtree.Node
	Depth    int
	Expanded bool
	Count    int
}

func (r TagRow) Key() string      { return TagKey(r.Node.Key) }
func (r TagRow) Level() int       { return r.Depth }
func (r TagRow) Selectable() bool { return true }
func (TagRow) navRow()            {}

// Path returns the tag's folded key, which is also its expansion and
// selection path.
func (r TagRow) Path() string { return r.Node.Key }

// HasChildren reports whether the tag has child tags.
func (r TagRow) HasChildren() bool { return r.Node.HasChildren() }

// UntaggedRow is the synthetic bucket of notes without tags.
type UntaggedRow struct {
	Count int
}

func (r UntaggedRow) Key() string    { return TagKey(tagtree.UntaggedPath) }
func (UntaggedRow) Level() int       { return 0 }
func (UntaggedRow) Selectable() bool { return true }
func (UntaggedRow) navRow()          {}

// HeaderRow is a section header such as "Tags". A header with an
// ExpandKey collapses its section.
type HeaderRow struct {
	Title     string
	ExpandKey string
	Expanded  bool
}

func (r HeaderRow) Key() string    { return headerKeyPrefix + r.Title }
func (HeaderRow) Level() int       { return 0 }
func (HeaderRow) Selectable() bool { return false }
func (HeaderRow) navRow()          {}

// SpacerRow is vertical padding between sections.
type SpacerRow struct {
	ID string
}

func (r SpacerRow) Key() string    { return spacerKeyPrefix + r.ID }
func (SpacerRow) Level() int       { return 0 }
func (SpacerRow) Selectable() bool { return false }
func (SpacerRow) navRow()          {}

// FileItemRow is a note in the file list.
type FileItemRow struct {
	File      vault.FileRef
	Title     string
	Timestamp int64
	Pinned    bool
}

func (r FileItemRow) Key() string    { return FileKey(r.File.Path) }
func (FileItemRow) Level() int       { return 0 }
func (FileItemRow) Selectable() bool { return true }
func (FileItemRow) fileRow()         {}

// ListHeaderRow is a pinned or date group header in the file list.
type ListHeaderRow struct {
	Title string
}

func (r ListHeaderRow) Key() string    { return headerKeyPrefix + r.Title }
func (ListHeaderRow) Level() int       { return 0 }
func (ListHeaderRow) Selectable() bool { return false }
func (ListHeaderRow) fileRow()         {}

// FolderKey returns the row key of a folder path.
func FolderKey(path string) string { return folderKeyPrefix + path }

// TagKey returns the row key of a tag key or the untagged sentinel.
func TagKey(key string) string { return tagKeyPrefix + key }

// FileKey returns the row key of a note path.
func FileKey(path string) string { return fileKeyPrefix + path }
