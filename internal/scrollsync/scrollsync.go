// Package scrollsync turns scroll intents and selection changes into
// virtualizer scrolls.
//
// Reconcile runs in the update loop after state changes and before the
// next frame is drawn, so a moved selection is already in view when the
// frame renders. Explicit intents are drained first; the layout's Policy
// then adds any reveals the change implies. A scroll that hits a
// virtualizer without a viewport is retried a few times with linear
// backoff and then dropped.
package scrollsync

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/treykane/tagnav/internal/logging"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/virtual"
)

var log = logging.New("scrollsync")

const (
	// MaxAttempts bounds how often one scroll is tried.
	MaxAttempts = 3
	// RetryStep is the backoff unit; attempt n waits n steps.
	RetryStep = 16 * time.Millisecond
)

// Scroller is the virtualizer of a pane.
type Scroller interface {
	ScrollToIndex(i int, opts virtual.ScrollOptions) error
}

// Pane wires one pane into the synchronizer.
type Pane struct {
	Scroller Scroller
	// Lookup returns the current index of a row key, or -1.
	Lookup func(key string) int
	// Generation changes whenever the pane's rows are rebuilt.
	Generation func() uint64
}

// RetryMsg asks for a failed scroll to be tried again.
type RetryMsg struct {
	Request    Request
	Attempt    int
	Generation uint64
}

// Synchronizer applies scroll intents and policy reveals.
type Synchronizer struct {
	store   *state.Store
	policy  Policy
	panes   map[state.Pane]Pane
	pending []state.Change
}

// New subscribes a Synchronizer to store.
func New(store *state.Store, policy Policy, folders, files Pane) *Synchronizer {
	s := &Synchronizer{
		store:  store,
		policy: policy,
		panes:  map[state.Pane]Pane{state.PaneFolders: folders, state.PaneFiles: files},
	}
	store.Subscribe(func(c state.Change) { s.pending = append(s.pending, c) })
	return s
}

// SetPolicy swaps the policy, for example when the layout changes.
func (s *Synchronizer) SetPolicy(p Policy) { s.policy = p }

// Policy returns the active policy.
func (s *Synchronizer) Policy() Policy { return s.policy }

// Reconcile applies everything that happened since the last call. The
// returned command, if any, schedules retries.
func (s *Synchronizer) Reconcile() tea.Cmd {
	changes := s.pending
	s.pending = nil

	var cmds []tea.Cmd
	for _, in := range s.store.DrainScrollIntents() {
		cmds = append(cmds, s.scroll(Request{Pane: in.Pane, Key: in.Key, Index: in.Index}, 1))
	}
	if len(changes) > 0 && s.policy != nil {
		combined := state.Change{Prev: changes[0].Prev, Next: changes[len(changes)-1].Next}
		for _, c := range changes {
			combined.Actions = append(combined.Actions, c.Actions...)
		}
		for _, req := range s.policy.Reveal(combined) {
			cmds = append(cmds, s.scroll(req, 1))
		}
	}
	return tea.Batch(cmds...)
}

// HandleRetry runs a scheduled retry. Retries for rows that have been
// rebuilt since are dropped.
func (s *Synchronizer) HandleRetry(msg RetryMsg) tea.Cmd {
	pane, ok := s.panes[msg.Request.Pane]
	if !ok {
		return nil
	}
	if pane.Generation != nil && pane.Generation() != msg.Generation {
		log.WithField("pane", msg.Request.Pane).WithField("key", msg.Request.Key).Debug("drop stale scroll retry")
		return nil
	}
	return s.scroll(msg.Request, msg.Attempt)
}

func (s *Synchronizer) scroll(req Request, attempt int) tea.Cmd {
	pane, ok := s.panes[req.Pane]
	if !ok || pane.Scroller == nil {
		return nil
	}
	index := req.Index
	if req.Key != "" && pane.Lookup != nil {
		if i := pane.Lookup(req.Key); i >= 0 {
			index = i
		}
	}
	if index < 0 {
		log.WithField("pane", req.Pane).WithField("key", req.Key).Debug("scroll target not in rows")
		return nil
	}

	err := pane.Scroller.ScrollToIndex(index, virtual.ScrollOptions{Align: virtual.AlignAuto, Behavior: virtual.BehaviorAuto})
	if err == nil {
		if s.policy != nil {
			s.policy.Scrolled(req.Pane, req.Key)
		}
		return nil
	}
	if !errors.Is(err, virtual.ErrNotReady) {
		log.WithError(err).WithField("pane", req.Pane).Warn("scroll failed")
		return nil
	}
	if attempt >= MaxAttempts {
		log.WithField("pane", req.Pane).WithField("key", req.Key).WithField("attempts", attempt).Debug("give up scroll, viewport not ready")
		return nil
	}

	var gen uint64
	if pane.Generation != nil {
		gen = pane.Generation()
	}
	next := RetryMsg{Request: req, Attempt: attempt + 1, Generation: gen}
	return tea.Tick(time.Duration(attempt)*RetryStep, func(time.Time) tea.Msg { return next })
}
