// state.go persists the navigator's view state per workspace: which folders
// and tags are expanded, what is selected, and which pane has focus.
//
// State is stored as JSON at <notes_dir>/.tagnav/state.json so each vault
// keeps its own state and it travels with the notes. Paths are the
// vault-relative, slash-separated paths the navigator uses internally; entries
// that would escape the vault are dropped on load.
//
// State is saved whenever selection or expansion changes and on quit.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/tagtree"
)

const (
	managedNotesDirName = ".tagnav"
	stateFileName       = "state.json"
)

// persistedState is the on-disk representation of the workspace state.
type persistedState struct {
	ExpandedFolders state.PathSet `json:"expanded_folders"`
	ExpandedTags    state.PathSet `json:"expanded_tags"`
	Selection       string        `json:"selection,omitempty"`
	SelectedFolder  string        `json:"selected_folder,omitempty"`
	SelectedTag     string        `json:"selected_tag,omitempty"`
	SelectedFile    string        `json:"selected_file,omitempty"`
	FocusedPane     string        `json:"focused_pane,omitempty"`
}

// appStatePath returns the path of the per-workspace state file.
func appStatePath(notesDir string) string {
	return filepath.Join(notesDir, managedNotesDirName, stateFileName)
}

// loadAppState reads the workspace state. A missing file yields the default
// snapshot without error.
func loadAppState(notesDir string) (state.Snapshot, error) {
	snap := state.DefaultSnapshot()

	p := appStatePath(notesDir)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return snap, fmt.Errorf("read app state %q: %w", p, err)
	}

	var persisted persistedState
	if err := json.Unmarshal(data, &persisted); err != nil {
		return snap, fmt.Errorf("parse app state %q: %w", p, err)
	}
	return persisted.snapshot(), nil
}

// snapshot converts the persisted form, discarding invalid paths.
func (p persistedState) snapshot() state.Snapshot {
	snap := state.DefaultSnapshot()

	folders := state.NewPathSet()
	for _, f := range p.ExpandedFolders.Sorted() {
		if f == "" {
			folders = folders.With(f)
			continue
		}
		if rel, ok := cleanStatePath(f); ok {
			folders = folders.With(rel)
		}
	}
	if p.ExpandedFolders.Len() > 0 {
		snap.Expansion.Folders = folders
	}
	if p.ExpandedTags.Len() > 0 {
		snap.Expansion.Tags = p.ExpandedTags
	}

	sel := state.Selection{}
	switch p.Selection {
	case state.SelectionTag.String():
		if p.SelectedTag == "" {
			break
		}
		sel.Type = state.SelectionTag
		sel.Tag = p.SelectedTag
		if p.SelectedTag != tagtree.UntaggedPath {
			sel.Tag = tagtree.Fold(p.SelectedTag)
		}
	case state.SelectionFolder.String():
		if p.SelectedFolder == "" {
			sel.Type = state.SelectionFolder
		} else if rel, ok := cleanStatePath(p.SelectedFolder); ok {
			sel.Type = state.SelectionFolder
			sel.Folder = rel
		}
	}
	if rel, ok := cleanStatePath(p.SelectedFile); ok {
		sel.File = rel
		sel.Files = state.NewPathSet(rel)
		sel.Anchor = rel
	}
	snap.Selection = sel

	if p.FocusedPane == state.PaneFiles.String() {
		snap.UI.FocusedPane = state.PaneFiles
	}
	return snap
}

// persisted converts a snapshot to its on-disk form.
func persisted(snap state.Snapshot) persistedState {
	return persistedState{
		ExpandedFolders: snap.Expansion.Folders,
		ExpandedTags:    snap.Expansion.Tags,
		Selection:       snap.Selection.Type.String(),
		SelectedFolder:  snap.Selection.Folder,
		SelectedTag:     snap.Selection.Tag,
		SelectedFile:    snap.Selection.File,
		FocusedPane:     snap.UI.FocusedPane.String(),
	}
}

// saveAppState writes the current snapshot. Failures are logged, not shown;
// losing view state is not worth interrupting the user.
func (m *Model) saveAppState() {
	if m.notesDir == "" || m.store == nil {
		return
	}
	if err := writeAppState(m.notesDir, m.store.Snapshot()); err != nil {
		appLog.WithError(err).WithField("notes_dir", m.notesDir).Warn("save app state")
	}
}

func writeAppState(notesDir string, snap state.Snapshot) error {
	data, err := json.MarshalIndent(persisted(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal app state: %w", err)
	}
	data = append(data, '\n')

	p := appStatePath(notesDir)
	if err := os.MkdirAll(filepath.Dir(p), DirPermission); err != nil {
		return fmt.Errorf("create app state dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, FilePermission); err != nil {
		return fmt.Errorf("write app state: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("replace app state: %w", err)
	}
	return nil
}

// cleanStatePath validates a vault-relative path from the state file.
// Empty, absolute and escaping paths are rejected.
func cleanStatePath(rel string) (string, bool) {
	rel = strings.TrimSpace(rel)
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.IsAbs(rel) {
		return "", false
	}
	rel = path.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
