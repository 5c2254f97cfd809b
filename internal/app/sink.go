package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/vault"
)

// vaultSink performs what the keyboard controller delegates: opening notes
// in the reader and deleting from the vault.
type vaultSink struct {
	m *Model
}

// OpenFile shows a note in the reader and focuses it.
func (s vaultSink) OpenFile(path string) error {
	if !s.m.vault.Has(vault.FileRef{Path: path}) {
		return fmt.Errorf("note %q no longer exists", path)
	}
	s.m.queue(s.m.showInReader(path))
	s.m.readerFocused = true
	return nil
}

// FocusEditor moves focus to the reader, which shows the note already.
func (s vaultSink) FocusEditor(path string) error {
	if s.m.currentFile != path {
		return s.OpenFile(path)
	}
	s.m.readerFocused = true
	return nil
}

// DeleteFiles deletes notes one by one. Notes deleted before a failure are
// removed from the state here because the controller only updates state
// when everything succeeded.
func (s vaultSink) DeleteFiles(paths []string) error {
	var errs []error
	var deleted []string
	for _, p := range paths {
		if err := s.m.vault.DeleteFile(vault.FileRef{Path: p}); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted = append(deleted, p)
		s.m.forgetDeleted(p)
	}
	err := errors.Join(errs...)
	if err != nil && len(deleted) > 0 {
		s.m.store.Dispatch(state.RemovePaths{Paths: deleted})
	}
	return err
}

// DeleteFolder deletes a folder and its notes.
func (s vaultSink) DeleteFolder(path string) error {
	if err := s.m.vault.DeleteFolder(path); err != nil {
		return err
	}
	s.m.forgetDeleted(path)
	return nil
}

func (m *Model) forgetDeleted(p string) {
	m.forgetPath(p)
	if m.currentFile == p || strings.HasPrefix(m.currentFile, p+"/") {
		m.clearReader()
		m.readerFocused = false
	}
}
