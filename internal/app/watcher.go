// watcher.go feeds vault change notifications into the update loop.
//
// The fsnotify watcher runs in internal/vault and delivers Events on a
// channel. waitForVaultEvent turns the next one into a message; the handler
// re-arms it, so exactly one read is outstanding at any time.
//
// Bursts are coalesced: the first event of a burst is applied at once and
// the rest wait for a trailing flush once the burst has been quiet for the
// configured change_debounce. Applying events updates the vault index,
// forgets previews and renders of touched notes and tells the state
// containers about deleted and renamed paths.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/vault"
)

type vaultEventMsg struct{ event vault.Event }

type vaultFlushMsg struct{ seq int }

type vaultErrMsg struct{ err error }

type vaultClosedMsg struct{}

// waitForVaultEvent reads the next watcher notification.
func (m *Model) waitForVaultEvent() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events, errs := m.watcher.Events(), m.watcher.Errors()
	return func() tea.Msg {
		select {
		case ev, ok := <-events:
			if !ok {
				return vaultClosedMsg{}
			}
			return vaultEventMsg{event: ev}
		case err := <-errs:
			return vaultErrMsg{err: err}
		}
	}
}

// handleVaultEvent queues an event and applies the queue on the leading
// edge of a burst. A rename is held back because the create naming its new
// location follows it.
func (m *Model) handleVaultEvent(msg vaultEventMsg) (tea.Model, tea.Cmd) {
	m.pendingEvents = append(m.pendingEvents, msg.event)
	immediate, seq := m.coalescer.Observe(m.now())
	m.vaultSeq = seq
	if immediate && msg.event.Kind != vault.EventRenamed {
		m.applyPendingEvents()
	}
	flush := tea.Tick(m.coalescer.Window(), func(time.Time) tea.Msg { return vaultFlushMsg{seq: seq} })
	return m, tea.Batch(m.waitForVaultEvent(), flush)
}

// handleVaultFlush applies whatever the burst left queued once it has been
// quiet for the window.
func (m *Model) handleVaultFlush(msg vaultFlushMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.vaultSeq {
		return m, nil
	}
	m.coalescer.Flush(msg.seq)
	m.applyPendingEvents()
	return m, nil
}

// applyPendingEvents folds the queued events into the vault and the state.
// A rename followed directly by a create is treated as a move.
func (m *Model) applyPendingEvents() {
	events := m.pendingEvents
	m.pendingEvents = nil
	if len(events) == 0 {
		return
	}
	m.vault.Apply(events)

	var removed []string
	var actions []state.Action
	refresh := false
	for i, ev := range events {
		m.forgetPath(ev.Path)
		if ev.Path == m.currentFile && (ev.Kind == vault.EventModified || ev.Kind == vault.EventCreated) {
			refresh = true
		}
		switch ev.Kind {
		case vault.EventRenamed:
			if i+1 < len(events) && events[i+1].Kind == vault.EventCreated {
				actions = append(actions, state.RenamePath{From: ev.Path, To: events[i+1].Path})
				continue
			}
			removed = append(removed, ev.Path)
		case vault.EventDeleted:
			removed = append(removed, ev.Path)
		}
	}
	if len(removed) > 0 {
		actions = append([]state.Action{state.RemovePaths{Paths: removed}}, actions...)
	}
	if len(actions) > 0 {
		m.store.Dispatch(actions...)
	}
	appLog.WithField("events", len(events)).Debug("applied vault changes")
	if refresh {
		m.queue(m.refreshReader())
	}
}

// rescan rebuilds the vault index from disk.
func (m *Model) rescan() tea.Cmd {
	if err := m.vault.Scan(); err != nil {
		m.setStatusError("Rescan failed", err)
		return nil
	}
	m.previews = map[string]string{}
	m.previewTokens = map[string]uint64{}
	m.renderCache = map[string]renderCacheEntry{}
	m.setStatus("Vault rescanned")
	return m.refreshReader()
}
