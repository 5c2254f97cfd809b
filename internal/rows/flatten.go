package rows

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/treykane/tagnav/internal/logging"
	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/tagtree"
	"github.com/treykane/tagnav/internal/vault"
)

var log = logging.New("rows")

// FolderOptions tunes FlattenFolders.
type FolderOptions struct {
	// BaseLevel is the level of the top-level rows.
	BaseLevel int
}

// FlattenFolders walks roots depth-first and emits a row per folder.
// Children are visited only when the folder's path is expanded. Excluded
// folders are dropped together with their subtree. Siblings are ordered by
// locale-aware name comparison.
func FlattenFolders(roots []*vault.Folder, expanded Expanded, exclude pattern.Set, opts FolderOptions) []NavRow {
	if len(roots) == 0 {
		return []NavRow{}
	}
	f := folderFlattener{
		expanded: expanded,
		exclude:  exclude,
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
		out:      []NavRow{},
	}
	f.walk(roots, opts.BaseLevel, map[string]bool{})
	return f.out
}

type folderFlattener struct {
	expanded Expanded
	exclude  pattern.Set
	collator *collate.Collator
	out      []NavRow
}

func (f *folderFlattener) walk(folders []*vault.Folder, level int, ancestors map[string]bool) {
	for _, folder := range f.sorted(folders) {
		if folder == nil {
			continue
		}
		if ancestors[folder.Path] {
			log.WithField("path", folder.Path).Warn("skip cyclic folder reference")
			continue
		}
		if len(f.exclude) > 0 && !folder.IsRoot() && f.exclude.MatchPath(folder.Path) {
			continue
		}
		open := isExpanded(f.expanded, folder.Path)
		f.out = append(f.out, FolderRow{
			Folder:      folder,
			Depth:       level,
			Expanded:    open,
			HasChildren: f.hasVisibleChildren(folder),
		})
		if !open || !folder.HasChildren() {
			continue
		}
		ancestors[folder.Path] = true
		f.walk(folder.Children, level+1, ancestors)
		delete(ancestors, folder.Path)
	}
}

func (f *folderFlattener) hasVisibleChildren(folder *vault.Folder) bool {
	for _, child := range folder.Children {
		if child != nil && (len(f.exclude) == 0 || !f.exclude.MatchPath(child.Path)) {
			return true
		}
	}
	return false
}

func (f *folderFlattener) sorted(folders []*vault.Folder) []*vault.Folder {
	out := append([]*vault.Folder(nil), folders...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if c := f.collator.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.Path < b.Path
	})
	return out
}

// TagOptions tunes FlattenTags.
type TagOptions struct {
	BaseLevel int
	// Count returns the aggregate note count shown next to a tag.
	Count func(*tagtree.Node) int
}

// FlattenTags walks roots depth-first and emits a row per tag, visiting
// children only when the tag's key is expanded. Siblings are ordered by
// plain name comparison.
func FlattenTags(roots []*tagtree.Node, expanded Expanded, opts TagOptions) []NavRow {
	out := []NavRow{}
	if len(roots) == 0 {
		return out
	}
	var walk func(nodes []*tagtree.Node, level int, ancestors map[*tagtree.Node]bool)
	walk = func(nodes []*tagtree.Node, level int, ancestors map[*tagtree.Node]bool) {
		for _, node := range sortTagNodes(nodes) {
			if ancestors[node] {
				log.WithField("tag", node.Path).Warn("skip cyclic tag reference")
				continue
			}
			open := isExpanded(expanded, node.Key)
			row := TagRow{Node: node, Depth: level, Expanded: open}
			if opts.Count != nil {
				row.Count = opts.Count(node)
			}
			out = append(out, row)
			if !open || !node.HasChildren() {
				continue
			}
			ancestors[node] = true
			walk(node.SortedChildren(), level+1, ancestors)
			delete(ancestors, node)
		}
	}
	walk(roots, opts.BaseLevel, map[*tagtree.Node]bool{})
	return out
}

func sortTagNodes(nodes []*tagtree.Node) []*tagtree.Node {
	out := make([]*tagtree.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func isExpanded(expanded Expanded, path string) bool {
	return expanded != nil && expanded.Has(path)
}

// NavInput is everything the navigation pane is derived from.
type NavInput struct {
	Root            *vault.Folder
	Tags            *tagtree.Tree
	ExpandedFolders Expanded
	ExpandedTags    Expanded
	ExcludedFolders pattern.Set
	ShowRootFolder  bool
	ShowTags        bool
	ShowUntagged    bool
}

// BuildNavigation composes the navigation pane: folders (optionally under a
// root folder row), then the collapsible tags section with the untagged
// bucket.
func BuildNavigation(in NavInput) []NavRow {
	out := []NavRow{}
	if in.Root != nil {
		if in.ShowRootFolder {
			out = append(out, FlattenFolders([]*vault.Folder{in.Root}, in.ExpandedFolders, in.ExcludedFolders, FolderOptions{})...)
		} else {
			out = append(out, FlattenFolders(in.Root.Children, in.ExpandedFolders, in.ExcludedFolders, FolderOptions{})...)
		}
	}

	if !in.ShowTags || in.Tags == nil {
		return out
	}
	open := isExpanded(in.ExpandedTags, TagsHeaderKey)
	out = append(out,
		SpacerRow{ID: "tags"},
		HeaderRow{Title: "Tags", ExpandKey: TagsHeaderKey, Expanded: open},
	)
	if open {
		out = append(out, FlattenTags(in.Tags.SortedRoots(), in.ExpandedTags, TagOptions{Count: in.Tags.TotalNoteCount})...)
		if in.ShowUntagged && in.Tags.IncludesUntagged() {
			out = append(out, UntaggedRow{Count: len(in.Tags.Untagged)})
		}
	}
	out = append(out, SpacerRow{ID: "end"})
	return out
}
