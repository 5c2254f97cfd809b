package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/treykane/tagnav/internal/logging"
)

var log = logging.New("vault")

// managedDirName is tagnav's per-vault state directory. It and every other
// dot-directory are invisible to the navigator.
const managedDirName = ".tagnav"

type fileEntry struct {
	ref     FileRef
	meta    Metadata
	modTime time.Time
	birth   time.Time
}

// FS is a Source backed by a directory on disk. It is not safe for
// concurrent mutation; the app only mutates it from its update loop.
type FS struct {
	root       string
	files      map[string]*fileEntry
	dirs       map[string]bool
	rootFolder *Folder
	generation uint64
}

// Open scans root and returns the resulting vault.
func Open(root string) (*FS, error) {
	v := &FS{root: filepath.Clean(root)}
	if err := v.Scan(); err != nil {
		return nil, err
	}
	return v, nil
}

// Root returns the absolute vault directory.
func (v *FS) Root() string { return v.root }

// Generation increases on every observed change. Derived data keyed by it
// is rebuilt when it moves.
func (v *FS) Generation() uint64 { return v.generation }

// Scan rebuilds the whole index from disk.
func (v *FS) Scan() error {
	v.files = map[string]*fileEntry{}
	v.dirs = map[string]bool{}
	if err := v.scanDir(v.root); err != nil {
		return err
	}
	v.invalidate()
	return nil
}

func (v *FS) scanDir(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				log.WithError(walkErr).WithField("path", p).Warn("skip unreadable path")
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return walkErr
		}
		if p == v.root {
			return nil
		}
		if shouldSkipName(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, ok := v.Rel(p)
		if !ok {
			return nil
		}
		if d.IsDir() {
			v.addDirChain(rel)
			return nil
		}
		if isMarkdown(rel) {
			v.loadFile(rel)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk vault %q: %w", dir, err)
	}
	return nil
}

// Apply folds change events into the index. Unknown or irrelevant paths are
// ignored.
func (v *FS) Apply(events []Event) {
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		rel := strings.Trim(ev.Path, "/")
		if rel == "" || hasSkippedSegment(rel) {
			continue
		}
		switch ev.Kind {
		case EventCreated, EventModified:
			abs := v.Abs(rel)
			info, err := os.Stat(abs)
			if err != nil {
				v.removePrefix(rel)
				continue
			}
			if info.IsDir() {
				v.addDirChain(rel)
				if err := v.scanDir(abs); err != nil {
					log.WithError(err).WithField("path", rel).Warn("scan created folder")
				}
				continue
			}
			if isMarkdown(rel) {
				v.addDirChain(path.Dir(rel))
				v.loadFile(rel)
			}
		case EventDeleted, EventRenamed:
			v.removePrefix(rel)
		}
	}
	v.invalidate()
}

func (v *FS) invalidate() {
	v.rootFolder = nil
	v.generation++
}

func (v *FS) addDirChain(rel string) {
	for rel != "" && rel != "." {
		if v.dirs[rel] {
			return
		}
		v.dirs[rel] = true
		rel = path.Dir(rel)
	}
}

func (v *FS) removePrefix(rel string) {
	delete(v.files, rel)
	delete(v.dirs, rel)
	prefix := rel + "/"
	for p := range v.files {
		if strings.HasPrefix(p, prefix) {
			delete(v.files, p)
		}
	}
	for d := range v.dirs {
		if strings.HasPrefix(d, prefix) {
			delete(v.dirs, d)
		}
	}
}

func (v *FS) loadFile(rel string) {
	abs := v.Abs(rel)
	info, err := os.Stat(abs)
	if err != nil {
		log.WithError(err).WithField("path", rel).Warn("stat note")
		delete(v.files, rel)
		return
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		log.WithError(err).WithField("path", rel).Warn("read note")
		delete(v.files, rel)
		return
	}
	meta, _ := parseNote(rel, string(content))
	entry := &fileEntry{ref: FileRef{Path: rel}, meta: meta, modTime: info.ModTime()}
	if birth, ok := fileCreationTime(abs, info); ok {
		entry.birth = birth
	}
	v.files[rel] = entry
}

// RootFolder returns the folder tree. It is rebuilt lazily after changes.
func (v *FS) RootFolder() *Folder {
	if v.rootFolder != nil {
		return v.rootFolder
	}
	root := &Folder{Name: filepath.Base(v.root), Path: ""}
	nodes := map[string]*Folder{"": root}

	dirs := make([]string, 0, len(v.dirs))
	for d := range v.dirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	for _, d := range dirs {
		parent := nodes[parentPath(d)]
		if parent == nil {
			continue
		}
		node := &Folder{Name: path.Base(d), Path: d}
		parent.Children = append(parent.Children, node)
		nodes[d] = node
	}
	for _, ref := range v.MarkdownFiles() {
		if folder := nodes[ref.Folder()]; folder != nil {
			folder.Files = append(folder.Files, ref)
		}
	}
	v.rootFolder = root
	return root
}

// MarkdownFiles returns every indexed note ordered by path.
func (v *FS) MarkdownFiles() []FileRef {
	refs := make([]FileRef, 0, len(v.files))
	for _, entry := range v.files {
		refs = append(refs, entry.ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs
}

// Has reports whether a note is indexed.
func (v *FS) Has(f FileRef) bool {
	_, ok := v.files[f.Path]
	return ok
}

// FileTags returns the note's tags.
func (v *FS) FileTags(f FileRef) []string {
	if entry, ok := v.files[f.Path]; ok {
		return entry.meta.Tags
	}
	return nil
}

// FileTimestamp prefers frontmatter dates, then the filesystem birth time
// (created only), then the modification time.
func (v *FS) FileTimestamp(f FileRef, kind TimestampKind) int64 {
	entry, ok := v.files[f.Path]
	if !ok {
		return 0
	}
	switch kind {
	case TimestampCreated:
		if !entry.meta.Created.IsZero() {
			return epochMillis(entry.meta.Created)
		}
		if !entry.birth.IsZero() {
			return epochMillis(entry.birth)
		}
		return epochMillis(entry.modTime)
	default:
		if !entry.meta.Modified.IsZero() {
			return epochMillis(entry.meta.Modified)
		}
		return epochMillis(entry.modTime)
	}
}

// Frontmatter returns the parsed frontmatter properties, nil when absent.
func (v *FS) Frontmatter(f FileRef) map[string]any {
	if entry, ok := v.files[f.Path]; ok {
		return entry.meta.Properties
	}
	return nil
}

// Title returns the frontmatter title or the file name.
func (v *FS) Title(f FileRef) string {
	if entry, ok := v.files[f.Path]; ok && entry.meta.Title != "" {
		return entry.meta.Title
	}
	return f.Name()
}

// PreviewText reads up to lines lines of plain body text. It runs on
// background goroutines and only touches the disk.
func (v *FS) PreviewText(f FileRef, lines int) (string, error) {
	if lines <= 0 {
		return "", nil
	}
	content, err := os.ReadFile(v.Abs(f.Path))
	if err != nil {
		return "", fmt.Errorf("read preview %q: %w", f.Path, err)
	}
	_, body, _ := splitFrontmatter(string(content))
	return previewLines(body, lines), nil
}

func previewLines(body string, limit int) string {
	out := make([]string, 0, limit)
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || trimmed == "" {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "#>-*+ ")
		if trimmed == "" {
			continue
		}
		out = append(out, strings.Join(strings.Fields(trimmed), " "))
		if len(out) == limit {
			break
		}
	}
	return strings.Join(out, "\n")
}

// DeleteFile removes a note from disk and from the index.
func (v *FS) DeleteFile(f FileRef) error {
	if f.Path == "" {
		return errors.New("no file selected")
	}
	if err := os.Remove(v.Abs(f.Path)); err != nil {
		return fmt.Errorf("delete %q: %w", f.Path, err)
	}
	v.removePrefix(f.Path)
	v.invalidate()
	return nil
}

// DeleteFolder removes a folder and everything in it. The vault root cannot
// be deleted.
func (v *FS) DeleteFolder(rel string) error {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return errors.New("cannot delete the vault root")
	}
	abs := v.Abs(rel)
	if _, ok := v.Rel(abs); !ok {
		return fmt.Errorf("folder %q is outside the vault", rel)
	}
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("delete folder %q: %w", rel, err)
	}
	v.removePrefix(rel)
	v.invalidate()
	return nil
}

// Abs converts a vault-relative path to an absolute filesystem path.
func (v *FS) Abs(rel string) string {
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

// Rel converts an absolute path inside the vault to a vault-relative,
// slash-separated path. It returns false for paths outside the vault.
func (v *FS) Rel(abs string) (string, bool) {
	return relativeTo(v.root, abs)
}

func parentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func shouldSkipName(name string) bool {
	return name == managedDirName || strings.HasPrefix(name, ".")
}

func hasSkippedSegment(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if shouldSkipName(segment) {
			return true
		}
	}
	return false
}

func isMarkdown(rel string) bool {
	return strings.EqualFold(path.Ext(rel), ".md")
}
