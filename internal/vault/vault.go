// Package vault exposes a directory of Markdown notes to the navigator.
//
// The navigator core never touches the filesystem directly. It consumes the
// Source interface (folders, files, tags, timestamps) and reacts to change
// Events produced by a Watcher. FS is the filesystem-backed Source.
package vault

import (
	"path"
	"strings"
	"time"
)

// FileRef identifies a Markdown note by its vault-relative, slash-separated
// path.
type FileRef struct {
	Path string
}

// Basename returns the file name including its extension.
func (f FileRef) Basename() string {
	return path.Base(f.Path)
}

// Name returns the file name without the .md extension.
func (f FileRef) Name() string {
	base := f.Basename()
	if ext := path.Ext(base); strings.EqualFold(ext, ".md") {
		return base[:len(base)-len(ext)]
	}
	return base
}

// Folder returns the vault-relative path of the containing folder; the root
// folder is "".
func (f FileRef) Folder() string {
	dir := path.Dir(f.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// Folder is a node of the vault's folder tree.
type Folder struct {
	Name     string
	Path     string
	Children []*Folder
	Files    []FileRef
}

// IsRoot reports whether f is the vault root.
func (f *Folder) IsRoot() bool {
	return f != nil && f.Path == ""
}

// HasChildren reports whether f has subfolders.
func (f *Folder) HasChildren() bool {
	return f != nil && len(f.Children) > 0
}

// TimestampKind selects which file timestamp FileTimestamp returns.
type TimestampKind int

const (
	TimestampModified TimestampKind = iota
	TimestampCreated
)

// Source is the read side of the vault consumed by the navigator.
type Source interface {
	// RootFolder returns the folder tree rooted at the vault root.
	RootFolder() *Folder
	// MarkdownFiles returns every note in the vault.
	MarkdownFiles() []FileRef
	// FileTags returns a note's tags as written (without the leading "#").
	FileTags(f FileRef) []string
	// FileTimestamp returns the note's timestamp in epoch milliseconds.
	FileTimestamp(f FileRef, kind TimestampKind) int64
	// Frontmatter returns the parsed frontmatter properties of a note.
	Frontmatter(f FileRef) map[string]any
	// Title returns the display title (frontmatter title or file name).
	Title(f FileRef) string
}

// Mutator performs the destructive operations delegated by the navigator.
type Mutator interface {
	DeleteFile(f FileRef) error
	DeleteFolder(path string) error
}

// EventKind classifies a vault change notification.
type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
	EventRenamed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is a single vault change notification. Path is vault-relative.
// For EventRenamed, Path is the old location; the new location arrives as a
// separate EventCreated.
type Event struct {
	Kind  EventKind
	Path  string
	IsDir bool
	At    time.Time
}

func epochMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
