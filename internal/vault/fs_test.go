package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func newTestVault(t *testing.T) (*FS, string) {
	t.Helper()
	root := t.TempDir()
	writeNote(t, root, "inbox.md", "---\ntitle: Inbox\ntags: [todo]\n---\n# Heading\n\nFirst line\nSecond line\n")
	writeNote(t, root, "projects/alpha.md", "Alpha #work/alpha\n")
	writeNote(t, root, "projects/archive/old.md", "old\n")
	writeNote(t, root, ".obsidian/workspace.md", "hidden")
	writeNote(t, root, ".tagnav/state.md", "hidden")
	writeNote(t, root, "projects/readme.txt", "not markdown")
	v, err := Open(root)
	require.NoError(t, err)
	return v, root
}

func paths(refs []FileRef) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ref.Path)
	}
	return out
}

func TestOpenIndexesMarkdownAndSkipsDotDirs(t *testing.T) {
	v, _ := newTestVault(t)

	assert.Equal(t, []string{"inbox.md", "projects/alpha.md", "projects/archive/old.md"}, paths(v.MarkdownFiles()))

	root := v.RootFolder()
	require.True(t, root.IsRoot())
	require.Len(t, root.Children, 1)
	projects := root.Children[0]
	assert.Equal(t, "projects", projects.Path)
	assert.Equal(t, []string{"projects/alpha.md"}, paths(projects.Files))
	require.Len(t, projects.Children, 1)
	assert.Equal(t, "projects/archive", projects.Children[0].Path)
	assert.Equal(t, []string{"inbox.md"}, paths(root.Files))
}

func TestSourceAccessors(t *testing.T) {
	v, _ := newTestVault(t)

	inbox := FileRef{Path: "inbox.md"}
	alpha := FileRef{Path: "projects/alpha.md"}

	assert.Equal(t, "Inbox", v.Title(inbox))
	assert.Equal(t, "alpha", v.Title(alpha))
	assert.Equal(t, []string{"todo"}, v.FileTags(inbox))
	assert.Equal(t, []string{"work/alpha"}, v.FileTags(alpha))
	assert.Equal(t, "Inbox", v.Frontmatter(inbox)["title"])
	assert.Nil(t, v.Frontmatter(alpha))
	assert.Positive(t, v.FileTimestamp(alpha, TimestampModified))
	assert.Positive(t, v.FileTimestamp(alpha, TimestampCreated))
	assert.Zero(t, v.FileTimestamp(FileRef{Path: "missing.md"}, TimestampModified))
}

func TestFileTimestampPrefersFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "dated.md", "---\ncreated: 2020-01-02\nmodified: 2021-06-07\n---\n")
	v, err := Open(root)
	require.NoError(t, err)

	ref := FileRef{Path: "dated.md"}
	created := time.UnixMilli(v.FileTimestamp(ref, TimestampCreated))
	modified := time.UnixMilli(v.FileTimestamp(ref, TimestampModified))
	assert.Equal(t, 2020, created.Year())
	assert.Equal(t, 2021, modified.Year())
}

func TestPreviewTextSkipsFrontmatterAndMarkup(t *testing.T) {
	v, _ := newTestVault(t)

	got, err := v.PreviewText(FileRef{Path: "inbox.md"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "Heading\nFirst line", got)

	got, err = v.PreviewText(FileRef{Path: "inbox.md"}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestApplyIncrementalEvents(t *testing.T) {
	v, root := newTestVault(t)
	gen := v.Generation()

	writeNote(t, root, "journal/today.md", "#daily\n")
	require.NoError(t, os.RemoveAll(filepath.Join(root, "projects", "archive")))

	v.Apply([]Event{
		{Kind: EventCreated, Path: "journal", IsDir: true},
		{Kind: EventDeleted, Path: "projects/archive"},
		{Kind: EventModified, Path: ".obsidian/workspace.md"},
	})

	assert.Greater(t, v.Generation(), gen)
	assert.Equal(t, []string{"inbox.md", "journal/today.md", "projects/alpha.md"}, paths(v.MarkdownFiles()))
	assert.Equal(t, []string{"daily"}, v.FileTags(FileRef{Path: "journal/today.md"}))

	root2 := v.RootFolder()
	require.Len(t, root2.Children, 2)
	assert.Equal(t, "journal", root2.Children[0].Path)
	assert.False(t, root2.Children[1].HasChildren())
}

func TestApplyModifiedRereadsTags(t *testing.T) {
	v, root := newTestVault(t)

	writeNote(t, root, "projects/alpha.md", "now #personal\n")
	v.Apply([]Event{{Kind: EventModified, Path: "projects/alpha.md"}})

	assert.Equal(t, []string{"personal"}, v.FileTags(FileRef{Path: "projects/alpha.md"}))
}

func TestDeleteFileAndFolder(t *testing.T) {
	v, root := newTestVault(t)

	require.NoError(t, v.DeleteFile(FileRef{Path: "inbox.md"}))
	assert.NoFileExists(t, filepath.Join(root, "inbox.md"))
	assert.False(t, v.Has(FileRef{Path: "inbox.md"}))

	require.NoError(t, v.DeleteFolder("projects"))
	assert.NoDirExists(t, filepath.Join(root, "projects"))
	assert.Empty(t, v.MarkdownFiles())
	assert.Empty(t, v.RootFolder().Children)

	assert.Error(t, v.DeleteFolder(""))
	assert.Error(t, v.DeleteFolder("../outside"))
	assert.Error(t, v.DeleteFile(FileRef{Path: "missing.md"}))
}

func TestFileRefNames(t *testing.T) {
	ref := FileRef{Path: "a/b/Note.MD"}
	assert.Equal(t, "Note.MD", ref.Basename())
	assert.Equal(t, "Note", ref.Name())
	assert.Equal(t, "a/b", ref.Folder())
	assert.Equal(t, "", FileRef{Path: "top.md"}.Folder())
}
