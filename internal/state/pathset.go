package state

import (
	"encoding/json"
	"sort"
	"strings"
)

// PathSet is an immutable set of paths. Every mutator returns a copy, so a
// snapshot handed to subscribers never changes under them.
type PathSet struct {
	m map[string]struct{}
}

// NewPathSet returns a set holding paths.
func NewPathSet(paths ...string) PathSet {
	m := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	return PathSet{m: m}
}

// Has reports whether p is in the set.
func (s PathSet) Has(p string) bool {
	_, ok := s.m[p]
	return ok
}

// Len returns the number of paths.
func (s PathSet) Len() int { return len(s.m) }

// With returns s plus p.
func (s PathSet) With(p string) PathSet {
	if s.Has(p) {
		return s
	}
	out := s.clone(1)
	out.m[p] = struct{}{}
	return out
}

// Without returns s minus p.
func (s PathSet) Without(p string) PathSet {
	if !s.Has(p) {
		return s
	}
	out := s.clone(0)
	delete(out.m, p)
	return out
}

// Toggle flips membership of p.
func (s PathSet) Toggle(p string) PathSet {
	if s.Has(p) {
		return s.Without(p)
	}
	return s.With(p)
}

// WithoutTree removes p and every path below it.
func (s PathSet) WithoutTree(p string) PathSet {
	changed := false
	for existing := range s.m {
		if isWithin(existing, p) {
			changed = true
			break
		}
	}
	if !changed {
		return s
	}
	out := s.clone(0)
	for existing := range out.m {
		if isWithin(existing, p) {
			delete(out.m, existing)
		}
	}
	return out
}

// Rename moves p and every path below it to the same place under to.
func (s PathSet) Rename(from, to string) PathSet {
	out := NewPathSet()
	changed := false
	for existing := range s.m {
		if moved, ok := rebase(existing, from, to); ok {
			out.m[moved] = struct{}{}
			changed = true
			continue
		}
		out.m[existing] = struct{}{}
	}
	if !changed {
		return s
	}
	return out
}

// Sorted returns the paths in lexical order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s.m))
	for p := range s.m {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same paths.
func (s PathSet) Equal(o PathSet) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for p := range s.m {
		if !o.Has(p) {
			return false
		}
	}
	return true
}

func (s PathSet) clone(extra int) PathSet {
	m := make(map[string]struct{}, len(s.m)+extra)
	for p := range s.m {
		m[p] = struct{}{}
	}
	return PathSet{m: m}
}

// MarshalJSON encodes the set as a sorted list.
func (s PathSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a list of paths.
func (s *PathSet) UnmarshalJSON(data []byte) error {
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return err
	}
	*s = NewPathSet(paths...)
	return nil
}

// isWithin reports whether p is root or below it. The root folder "" only
// contains itself, so deleting it is never implied by a prefix.
func isWithin(p, root string) bool {
	if p == root {
		return true
	}
	return root != "" && strings.HasPrefix(p, root+"/")
}

func rebase(p, from, to string) (string, bool) {
	if p == from {
		return to, true
	}
	if from != "" && strings.HasPrefix(p, from+"/") {
		return to + p[len(from):], true
	}
	return "", false
}
