package tagtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treykane/tagnav/internal/pattern"
	"github.com/treykane/tagnav/internal/vault"
)

func refs(paths ...string) []vault.FileRef {
	out := make([]vault.FileRef, len(paths))
	for i, p := range paths {
		out[i] = vault.FileRef{Path: p}
	}
	return out
}

func tagsFrom(m map[string][]string) func(vault.FileRef) []string {
	return func(f vault.FileRef) []string { return m[f.Path] }
}

func TestBuildNestedTagsWithUntaggedBucket(t *testing.T) {
	tags := map[string][]string{
		"f1.md": {"#proj/alpha"},
		"f2.md": {"#proj/beta"},
	}
	tree := Build(refs("f1.md", "f2.md", "f3.md"), tagsFrom(tags), Options{IncludeUntagged: true})

	require.Len(t, tree.Roots, 1)
	proj := tree.Roots["proj"]
	require.NotNil(t, proj)
	assert.Equal(t, "proj", proj.Path)
	assert.Len(t, proj.Children, 2)
	assert.Contains(t, proj.Children, "alpha")
	assert.Contains(t, proj.Children, "beta")
	assert.Empty(t, proj.Notes, "notes are recorded at the terminal node only")

	assert.Equal(t, 2, tree.TotalNoteCount(proj))
	assert.Equal(t, 1, tree.TotalNoteCount(proj.Children["alpha"]))
	assert.Equal(t, refs("f3.md"), tree.Untagged)
}

func TestBuildOmitsUntaggedWhenDisabled(t *testing.T) {
	tree := Build(refs("a.md"), tagsFrom(nil), Options{})
	assert.Empty(t, tree.Untagged)
	assert.Empty(t, tree.Roots)
	assert.False(t, tree.IncludesUntagged())
}

func TestTagsAreCaseInsensitiveAndKeepFirstCasing(t *testing.T) {
	tags := map[string][]string{
		"a.md": {"Project"},
		"b.md": {"project"},
		"c.md": {"PROJECT/Sub"},
	}
	tree := Build(refs("a.md", "b.md", "c.md"), tagsFrom(tags), Options{})

	require.Len(t, tree.Roots, 1)
	node := tree.Lookup("project")
	require.NotNil(t, node)
	assert.Equal(t, "Project", node.Name)
	assert.Equal(t, 3, tree.TotalNoteCount(node))
	assert.Equal(t, "Project/Sub", tree.Lookup("project/sub").Path)
	assert.Same(t, node, tree.Lookup("#PROJECT"))
}

func TestUnicodeNormalizationSharesNode(t *testing.T) {
	composed := "caf\u00e9"
	decomposed := "cafe\u0301"
	tree := Build(refs("a.md", "b.md"), tagsFrom(map[string][]string{
		"a.md": {composed},
		"b.md": {decomposed},
	}), Options{})

	require.Len(t, tree.Roots, 1)
	assert.Equal(t, 2, tree.TotalNoteCount(tree.Lookup(composed)))
}

func TestTotalNoteCountCountsDistinctNotes(t *testing.T) {
	tree := Build(refs("a.md"), tagsFrom(map[string][]string{
		"a.md": {"proj/alpha", "proj/beta", "proj"},
	}), Options{})

	proj := tree.Lookup("proj")
	assert.Equal(t, 1, tree.TotalNoteCount(proj))
	assert.Equal(t, []string{"a.md"}, tree.NotesUnder(proj))
	assert.Equal(t, 0, tree.TotalNoteCount(nil))
}

func TestSplitTagDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitTag("#a//b/"))
	assert.Empty(t, SplitTag("#"))
}

func TestFilterHidesSubtreesAndResetsCounts(t *testing.T) {
	tags := map[string][]string{
		"a.md": {"work/alpha"},
		"b.md": {"work/beta"},
		"c.md": {"personal"},
	}
	tree := Build(refs("a.md", "b.md", "c.md"), tagsFrom(tags), Options{})
	assert.Equal(t, 2, tree.TotalNoteCount(tree.Lookup("work")))

	filtered := tree.Filter(pattern.CompileAll([]string{"beta", "personal"}))

	assert.NotSame(t, tree, filtered)
	assert.Nil(t, filtered.Lookup("personal"))
	assert.Nil(t, filtered.Lookup("work/beta"))
	work := filtered.Lookup("work")
	require.NotNil(t, work)
	assert.Equal(t, 1, filtered.TotalNoteCount(work))
	assert.NotSame(t, tree.Lookup("work"), work)
}

func TestMatchPatternForms(t *testing.T) {
	tags := map[string][]string{
		"a.md": {"proj/alpha", "proj/beta", "draft-12"},
	}
	tree := Build(refs("a.md"), tagsFrom(tags), Options{})

	tests := []struct {
		pattern string
		want    []string
	}{
		{pattern: "PROJ/ALPHA", want: []string{"proj/alpha"}},
		{pattern: "proj/*", want: []string{"proj/alpha", "proj/beta"}},
		{pattern: `/^draft-\d+$/`, want: []string{"draft-12"}},
		{pattern: "/([/", want: nil},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			var got []string
			for _, n := range tree.Match(tc.pattern) {
				got = append(got, n.Path)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSortedRootsUsesPlainNameOrder(t *testing.T) {
	tree := Build(refs("a.md"), tagsFrom(map[string][]string{
		"a.md": {"beta", "Alpha", "alpha2"},
	}), Options{})

	var names []string
	for _, n := range tree.SortedRoots() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Alpha", "alpha2", "beta"}, names)
	assert.Equal(t, 1, tree.Lookup("alpha").Depth()+1)
}
