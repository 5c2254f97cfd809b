package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/vault"
)

// previewMsg carries the preview text of one note. token identifies the
// request; a result whose token is no longer current is dropped.
type previewMsg struct {
	path  string
	token uint64
	text  string
	err   error
}

// loadVisiblePreviews requests preview text for rendered file rows that
// have none yet.
func (m *Model) loadVisiblePreviews() tea.Cmd {
	if !m.settings.ShowPreview || m.settings.PreviewRows <= 0 {
		return nil
	}
	var cmds []tea.Cmd
	for _, it := range m.files.virt.GetVirtualItems() {
		if it.Index >= len(m.fileRows) {
			continue
		}
		item, ok := m.fileRows[it.Index].(rows.FileItemRow)
		if !ok {
			continue
		}
		p := item.File.Path
		if _, ok := m.previews[p]; ok {
			continue
		}
		if _, inflight := m.previewTokens[p]; inflight {
			continue
		}
		m.previewSeq++
		m.previewTokens[p] = m.previewSeq
		cmds = append(cmds, previewCmd(m.vault, item.File, m.settings.PreviewRows, m.previewSeq))
	}
	return tea.Batch(cmds...)
}

func previewCmd(v *vault.FS, f vault.FileRef, lines int, token uint64) tea.Cmd {
	return func() tea.Msg {
		text, err := v.PreviewText(f, lines)
		return previewMsg{path: f.Path, token: token, text: text, err: err}
	}
}

func (m *Model) handlePreview(msg previewMsg) {
	if token, ok := m.previewTokens[msg.path]; !ok || token != msg.token {
		return
	}
	delete(m.previewTokens, msg.path)
	if msg.err != nil {
		appLog.WithError(msg.err).WithField("path", msg.path).Debug("load preview")
	}
	m.previews[msg.path] = msg.text
}

// forgetPath drops cached previews and renders of p and everything below
// it. In-flight preview loads become stale.
func (m *Model) forgetPath(p string) {
	within := func(candidate string) bool {
		return candidate == p || strings.HasPrefix(candidate, p+"/")
	}
	for k := range m.previews {
		if within(k) {
			delete(m.previews, k)
		}
	}
	for k := range m.previewTokens {
		if within(k) {
			delete(m.previewTokens, k)
		}
	}
	for k := range m.renderCache {
		if within(k) {
			delete(m.renderCache, k)
		}
	}
}
