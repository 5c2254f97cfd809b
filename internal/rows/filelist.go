package rows

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/treykane/tagnav/internal/config"
	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/vault"
)

// NavKind says what the navigation pane has selected.
type NavKind int

const (
	NavNone NavKind = iota
	NavFolder
	NavTag
)

// PinnedHeader is the title of the pinned notes group.
const PinnedHeader = "Pinned"

// FileListInput is everything the file list is derived from.
type FileListInput struct {
	Source   vault.Source
	Root     *vault.Folder
	Tags     *tagtree.Tree
	Settings config.Settings
	Kind     NavKind
	// Path is a folder path for NavFolder, and a folded tag key or
	// tagtree.UntaggedPath for NavTag.
	Path string
	// Query narrows the list to notes whose title or file name contains it.
	Query string
	Now   time.Time
}

// SettingsScope returns the key used for per-folder sort overrides and pins.
// Tags use "#" followed by the tag key.
func SettingsScope(kind NavKind, path string) string {
	if kind == NavTag {
		return "#" + path
	}
	return path
}

// BuildFileList returns the notes of the current navigation selection,
// filtered, sorted and grouped for display.
func BuildFileList(in FileListInput) []FileRow {
	out := []FileRow{}
	if in.Source == nil {
		return out
	}
	files := in.selectedFiles()
	if len(files) == 0 {
		return out
	}
	files = in.filter(files)

	scope := SettingsScope(in.Kind, in.Path)
	sortBy := in.Settings.SortFor(scope)
	items := make([]FileItemRow, 0, len(files))
	for _, f := range files {
		items = append(items, FileItemRow{
			File:      f,
			Title:     in.Source.Title(f),
			Timestamp: in.Source.FileTimestamp(f, timestampKind(sortBy)),
		})
	}
	sortItems(items, sortBy)

	pinned, rest := splitPinned(items, in.Settings.PinnedFor(scope))
	if len(pinned) > 0 {
		out = append(out, ListHeaderRow{Title: PinnedHeader})
		for _, item := range pinned {
			out = append(out, item)
		}
	}

	if !in.Settings.GroupByDate || !sortBy.IsDateSort() {
		for _, item := range rest {
			out = append(out, item)
		}
		return out
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	current := ""
	for _, item := range rest {
		group := DateGroup(time.UnixMilli(item.Timestamp), now)
		if group != current {
			out = append(out, ListHeaderRow{Title: group})
			current = group
		}
		out = append(out, item)
	}
	return out
}

func (in FileListInput) selectedFiles() []vault.FileRef {
	switch in.Kind {
	case NavFolder:
		folder := FindFolder(in.Root, in.Path)
		if folder == nil {
			return nil
		}
		if !in.Settings.ShowNotesFromSubfolders {
			return append([]vault.FileRef(nil), folder.Files...)
		}
		excluded := pattern.CompileAll(in.Settings.ExcludedFolders)
		var files []vault.FileRef
		var walk func(*vault.Folder, map[*vault.Folder]bool)
		walk = func(f *vault.Folder, seen map[*vault.Folder]bool) {
			if f == nil || seen[f] {
				return
			}
			seen[f] = true
			files = append(files, f.Files...)
			for _, child := range f.Children {
				if child != nil && !excluded.MatchPath(child.Path) {
					walk(child, seen)
				}
			}
		}
		walk(folder, map[*vault.Folder]bool{})
		return files
	case NavTag:
		if in.Tags == nil {
			return nil
		}
		if in.Path == tagtree.UntaggedPath {
			return append([]vault.FileRef(nil), in.Tags.Untagged...)
		}
		node := in.Tags.ByKey[in.Path]
		if node == nil {
			return nil
		}
		paths := in.Tags.NotesUnder(node)
		files := make([]vault.FileRef, len(paths))
		for i, p := range paths {
			files[i] = vault.FileRef{Path: p}
		}
		return files
	default:
		return nil
	}
}

func (in FileListInput) filter(files []vault.FileRef) []vault.FileRef {
	excludedFiles := pattern.CompileAll(in.Settings.ExcludedFiles)
	query := strings.ToLower(strings.TrimSpace(in.Query))
	out := files[:0]
	for _, f := range files {
		if len(excludedFiles) > 0 && (excludedFiles.MatchPath(f.Path) || excludedFiles.Match(f.Name())) {
			continue
		}
		if hasExcludedProperty(in.Source.Frontmatter(f), in.Settings.ExcludedProperties) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(in.Source.Title(f)), query) &&
			!strings.Contains(strings.ToLower(f.Basename()), query) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// hasExcludedProperty reports whether props sets any of the excluded keys to
// something other than false. Keys compare case-insensitively.
func hasExcludedProperty(props map[string]any, excluded []string) bool {
	if len(props) == 0 || len(excluded) == 0 {
		return false
	}
	for key, value := range props {
		for _, name := range excluded {
			if !strings.EqualFold(strings.TrimSpace(name), key) {
				continue
			}
			if b, ok := value.(bool); ok && !b {
				continue
			}
			if value == nil {
				continue
			}
			return true
		}
	}
	return false
}

func timestampKind(s config.SortOption) vault.TimestampKind {
	switch s {
	case config.SortCreatedAsc, config.SortCreatedDesc:
		return vault.TimestampCreated
	default:
		return vault.TimestampModified
	}
}

func sortItems(items []FileItemRow, by config.SortOption) {
	col := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	byName := func(a, b FileItemRow) int {
		if c := col.CompareString(a.File.Name(), b.File.Name()); c != 0 {
			return c
		}
		return strings.Compare(a.File.Path, b.File.Path)
	}
	byTitle := func(a, b FileItemRow) int {
		if c := col.CompareString(a.Title, b.Title); c != 0 {
			return c
		}
		return byName(a, b)
	}
	byTime := func(a, b FileItemRow) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return byName(a, b)
	}

	var less func(a, b FileItemRow) bool
	switch by {
	case config.SortNameAsc:
		less = func(a, b FileItemRow) bool { return byName(a, b) < 0 }
	case config.SortNameDesc:
		less = func(a, b FileItemRow) bool { return byName(a, b) > 0 }
	case config.SortTitleAsc:
		less = func(a, b FileItemRow) bool { return byTitle(a, b) < 0 }
	case config.SortTitleDesc:
		less = func(a, b FileItemRow) bool { return byTitle(a, b) > 0 }
	case config.SortModifiedAsc, config.SortCreatedAsc:
		less = func(a, b FileItemRow) bool { return byTime(a, b) < 0 }
	default:
		less = func(a, b FileItemRow) bool { return byTime(a, b) > 0 }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}

// splitPinned moves the pinned notes, in pinned order, out of items.
func splitPinned(items []FileItemRow, pins []string) (pinned, rest []FileItemRow) {
	if len(pins) == 0 {
		return nil, items
	}
	byPath := make(map[string]int, len(items))
	for i, item := range items {
		byPath[item.File.Path] = i
	}
	taken := map[int]bool{}
	for _, p := range pins {
		i, ok := byPath[p]
		if !ok || taken[i] {
			continue
		}
		taken[i] = true
		item := items[i]
		item.Pinned = true
		pinned = append(pinned, item)
	}
	rest = make([]FileItemRow, 0, len(items)-len(pinned))
	for i, item := range items {
		if !taken[i] {
			rest = append(rest, item)
		}
	}
	return pinned, rest
}

// DateGroup returns the date header a timestamp falls under relative to now:
// Today, Yesterday, Previous 7 days, Previous 30 days, the month name within
// the current year, or the year.
func DateGroup(t, now time.Time) string {
	t = t.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case !t.Before(today):
		return "Today"
	case !t.Before(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case !t.Before(today.AddDate(0, 0, -7)):
		return "Previous 7 days"
	case !t.Before(today.AddDate(0, 0, -30)):
		return "Previous 30 days"
	case t.Year() == now.Year():
		return t.Format("January 2006")
	default:
		return t.Format("2006")
	}
}

// FindFolder returns the folder at path under root, or nil.
func FindFolder(root *vault.Folder, path string) *vault.Folder {
	if root == nil {
		return nil
	}
	if root.Path == path {
		return root
	}
	for _, child := range root.Children {
		if child == nil {
			continue
		}
		if child.Path == path || strings.HasPrefix(path, child.Path+"/") {
			if found := FindFolder(child, path); found != nil {
				return found
			}
		}
	}
	return nil
}
