// Package tagtree builds the hierarchical tag tree shown in the navigation
// pane.
//
// Tags are slash-separated paths ("proj/alpha"). Segments are matched
// case-insensitively after Unicode normalization; the casing seen first is
// kept for display. A note is recorded only at the node of the tag it
// carries; ancestor counts are aggregated on demand and memoized on the
// Tree that owns the nodes.
package tagtree

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/vault"
)

// UntaggedPath is the reserved selection path of the synthetic untagged
// bucket. Untagged rows have their own row type, so a real tag with the same
// name stays distinct.
const UntaggedPath = "__untagged__"

// Node is a tag path segment.
type Node struct {
	Name     string
	Path     string
	Key      string
	Parent   *Node
	Children map[string]*Node
	Notes    map[string]struct{}
}

// HasChildren reports whether n has child tags.
func (n *Node) HasChildren() bool { return n != nil && len(n.Children) > 0 }

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// SortedChildren returns the children ordered by display name, then key.
func (n *Node) SortedChildren() []*Node {
	if n == nil {
		return nil
	}
	return sortNodes(n.Children)
}

// Tree is an immutable tag tree plus its count cache.
type Tree struct {
	Roots    map[string]*Node
	ByKey    map[string]*Node
	Untagged []vault.FileRef

	includeUntagged bool
	counts          map[*Node]int
}

// Options controls tree construction.
type Options struct {
	IncludeUntagged bool
}

// Build creates a tree from files and their tags. Files without tags are
// collected in Untagged only when opts.IncludeUntagged is set.
func Build(files []vault.FileRef, tagsOf func(vault.FileRef) []string, opts Options) *Tree {
	t := newTree(opts.IncludeUntagged)
	for _, f := range files {
		tagged := false
		for _, tag := range tagsOf(f) {
			if t.add(tag, f.Path) {
				tagged = true
			}
		}
		if !tagged && opts.IncludeUntagged {
			t.Untagged = append(t.Untagged, f)
		}
	}
	return t
}

func newTree(includeUntagged bool) *Tree {
	return &Tree{
		Roots:           map[string]*Node{},
		ByKey:           map[string]*Node{},
		includeUntagged: includeUntagged,
		counts:          map[*Node]int{},
	}
}

// add records notePath under tag and reports whether tag had any segments.
func (t *Tree) add(tag, notePath string) bool {
	segments := SplitTag(tag)
	if len(segments) == 0 {
		return false
	}
	var parent *Node
	siblings := t.Roots
	keyParts := make([]string, 0, len(segments))
	nameParts := make([]string, 0, len(segments))
	for _, segment := range segments {
		segKey := Fold(segment)
		keyParts = append(keyParts, segKey)
		node, ok := siblings[segKey]
		if !ok {
			node = &Node{
				Name:     segment,
				Path:     strings.Join(append(nameParts, segment), "/"),
				Key:      strings.Join(keyParts, "/"),
				Parent:   parent,
				Children: map[string]*Node{},
				Notes:    map[string]struct{}{},
			}
			siblings[segKey] = node
			t.ByKey[node.Key] = node
		}
		nameParts = append(nameParts, node.Name)
		parent = node
		siblings = node.Children
	}
	parent.Notes[notePath] = struct{}{}
	return true
}

// IncludesUntagged reports whether the untagged bucket is enabled.
func (t *Tree) IncludesUntagged() bool { return t.includeUntagged }

// SortedRoots returns the top-level tags ordered by display name.
func (t *Tree) SortedRoots() []*Node { return sortNodes(t.Roots) }

// Lookup finds a node by tag path in any casing.
func (t *Tree) Lookup(path string) *Node {
	segments := SplitTag(path)
	if len(segments) == 0 {
		return nil
	}
	keys := make([]string, len(segments))
	for i, s := range segments {
		keys[i] = Fold(s)
	}
	return t.ByKey[strings.Join(keys, "/")]
}

// TotalNoteCount returns the number of distinct notes tagged with n or any
// of its descendants.
func (t *Tree) TotalNoteCount(n *Node) int {
	if n == nil {
		return 0
	}
	if count, ok := t.counts[n]; ok {
		return count
	}
	count := len(t.collect(n, map[string]struct{}{}))
	t.counts[n] = count
	return count
}

// NotesUnder returns the sorted paths of notes tagged with n or any
// descendant.
func (t *Tree) NotesUnder(n *Node) []string {
	if n == nil {
		return nil
	}
	set := t.collect(n, map[string]struct{}{})
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (t *Tree) collect(n *Node, into map[string]struct{}) map[string]struct{} {
	for p := range n.Notes {
		into[p] = struct{}{}
	}
	for _, child := range n.Children {
		t.collect(child, into)
	}
	return into
}

// Match returns the nodes whose tag path or segment name satisfies raw, in
// depth-first display order.
func (t *Tree) Match(raw string) []*Node {
	p := pattern.Compile(raw)
	if !p.Valid() {
		return nil
	}
	var out []*Node
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			if p.Match(n.Path) || p.Match(n.Name) {
				out = append(out, n)
			}
			walk(n.SortedChildren())
		}
	}
	walk(t.SortedRoots())
	return out
}

// Filter returns a copy of the tree without the tags matched by hidden.
// Hiding a tag hides its descendants. A note left with no visible tags is
// not moved to the untagged bucket.
func (t *Tree) Filter(hidden pattern.Set) *Tree {
	out := newTree(t.includeUntagged)
	out.Untagged = append([]vault.FileRef(nil), t.Untagged...)
	var copyNodes func(src map[string]*Node, dst map[string]*Node, parent *Node)
	copyNodes = func(src map[string]*Node, dst map[string]*Node, parent *Node) {
		for key, n := range src {
			if len(hidden) > 0 && hidden.MatchPath(n.Path) {
				continue
			}
			clone := &Node{
				Name:     n.Name,
				Path:     n.Path,
				Key:      n.Key,
				Parent:   parent,
				Children: map[string]*Node{},
				Notes:    make(map[string]struct{}, len(n.Notes)),
			}
			for p := range n.Notes {
				clone.Notes[p] = struct{}{}
			}
			dst[key] = clone
			out.ByKey[clone.Key] = clone
			copyNodes(n.Children, clone.Children, clone)
		}
	}
	copyNodes(t.Roots, out.Roots, nil)
	return out
}

// SplitTag strips a leading "#" and splits on "/", dropping empty segments.
func SplitTag(tag string) []string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	parts := strings.Split(tag, "/")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Fold returns the matching key of a tag segment: NFC-normalized and
// case-folded.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func sortNodes(m map[string]*Node) []*Node {
	out := make([]*Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Key < out[j].Key
	})
	return out
}
