package state

import "github.com/treykane/tagnav/internal/rows"

// Snapshot is the combined value of the three containers.
type Snapshot struct {
	Selection Selection
	Expansion Expansion
	UI        UI
}

// Change describes one dispatch.
type Change struct {
	Prev    Snapshot
	Next    Snapshot
	Actions []Action
}

// SelectionChanged reports whether the selection moved.
func (c Change) SelectionChanged() bool { return !c.Prev.Selection.Equal(c.Next.Selection) }

// ExpansionChanged reports whether any folder or tag was expanded or
// collapsed.
func (c Change) ExpansionChanged() bool { return !c.Prev.Expansion.Equal(c.Next.Expansion) }

// Store owns the state containers. It is not safe for concurrent use; the
// update loop is its only caller.
type Store struct {
	snap        Snapshot
	subscribers []func(Change)
}

// NewStore returns a store starting at initial.
func NewStore(initial Snapshot) *Store {
	return &Store{snap: initial}
}

// DefaultSnapshot is the state of a first run: tags section open, folder
// pane focused.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Selection: Selection{Files: NewPathSet()},
		Expansion: Expansion{
			Folders: NewPathSet(""),
			Tags:    NewPathSet(rows.TagsHeaderKey),
		},
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot { return s.snap }

// Selection returns the current selection.
func (s *Store) Selection() Selection { return s.snap.Selection }

// Expansion returns the current expansion state.
func (s *Store) Expansion() Expansion { return s.snap.Expansion }

// UI returns the current UI state.
func (s *Store) UI() UI { return s.snap.UI }

// Subscribe registers fn to be called after every dispatch.
func (s *Store) Subscribe(fn func(Change)) {
	s.subscribers = append(s.subscribers, fn)
}

// Dispatch runs actions through the reducers in order and notifies
// subscribers once with the combined change.
func (s *Store) Dispatch(actions ...Action) Change {
	prev := s.snap
	next := prev
	for _, a := range actions {
		next.Selection = ReduceSelection(next.Selection, a)
		next.Expansion = ReduceExpansion(next.Expansion, a)
		next.UI = ReduceUI(next.UI, a)
	}
	s.snap = next
	change := Change{Prev: prev, Next: next, Actions: actions}
	if len(actions) == 0 {
		return change
	}
	for _, fn := range s.subscribers {
		fn(change)
	}
	return change
}

// DrainScrollIntents removes and returns every pending scroll intent.
// A second call without new requests returns nothing.
func (s *Store) DrainScrollIntents() []ScrollIntent {
	intents := s.snap.UI.intents
	s.snap.UI.intents = nil
	return intents
}
