// Package virtual implements windowed rendering for the two panes.
//
// A Virtualizer knows how many rows exist and how tall each one is (an
// estimate until the row has been rendered and measured). Given a scroll
// element it reports which rows intersect the viewport, plus overscan, and
// scrolls rows into view. Sizes and offsets are in terminal lines.
package virtual

import (
	"errors"
	"sort"
	"strconv"
)

// ErrNotReady is returned by ScrollToIndex when there is no scroll element
// or it has no height yet.
var ErrNotReady = errors.New("virtualizer: scroll element not ready")

// ScrollElement is the viewport the virtualizer scrolls.
type ScrollElement interface {
	ViewportSize() int
	ScrollOffset() int
	SetScrollOffset(offset int)
}

// Item is one row of the virtual window.
type Item struct {
	Index int
	Start int
	Size  int
	Key   string
}

// End returns the offset just past the item.
func (it Item) End() int { return it.Start + it.Size }

// Options configures a Virtualizer.
type Options struct {
	Count int
	// EstimateSize returns the expected size of row i before measurement.
	EstimateSize func(i int) int
	// Overscan is the number of extra rows rendered on each side.
	Overscan int
	// GetKey identifies row i across list rebuilds. Measurements are cached
	// by key. Defaults to the index.
	GetKey func(i int) string
}

// Align positions the target row of ScrollToIndex.
type Align int

const (
	// AlignAuto scrolls the minimal amount to bring the row fully into view.
	AlignAuto Align = iota
	AlignCenter
	AlignStart
	AlignEnd
)

// Behavior selects instant or animated scrolling.
type Behavior int

const (
	BehaviorAuto Behavior = iota
	BehaviorSmooth
)

// ScrollOptions tunes ScrollToIndex.
type ScrollOptions struct {
	Align    Align
	Behavior Behavior
}

// smoothFrames is the number of Animate steps a smooth scroll takes.
const smoothFrames = 6

type animation struct {
	from, to int
	frame    int
}

// Virtualizer computes the visible window of a list.
type Virtualizer struct {
	opts     Options
	el       ScrollElement
	measured map[string]int

	starts    []int
	sizes     []int
	dirtyFrom int

	anim *animation
}

// New returns a Virtualizer for opts.
func New(opts Options) *Virtualizer {
	v := &Virtualizer{measured: map[string]int{}}
	v.SetOptions(opts)
	return v
}

// SetOptions replaces the options. Cached measurements survive for rows
// whose keys are unchanged; the others are dropped. When the list got
// shorter than the scroll offset allows, the offset is pulled back so the
// window still shows rows.
func (v *Virtualizer) SetOptions(opts Options) {
	if opts.Count < 0 {
		opts.Count = 0
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}
	v.opts = opts
	v.dirtyFrom = 0
	v.pruneMeasurements()
	v.clampScroll()
}

func (v *Virtualizer) pruneMeasurements() {
	if len(v.measured) == 0 {
		return
	}
	live := make(map[string]struct{}, v.opts.Count)
	for i := range v.opts.Count {
		live[v.key(i)] = struct{}{}
	}
	for key := range v.measured {
		if _, ok := live[key]; !ok {
			delete(v.measured, key)
		}
	}
}

// clampScroll keeps the offset, and a running animation's target, inside
// the list.
func (v *Virtualizer) clampScroll() {
	if v.el == nil {
		return
	}
	if v.anim != nil {
		v.anim.to = v.clampOffset(v.anim.to)
	}
	if offset := v.el.ScrollOffset(); v.clampOffset(offset) != offset {
		v.el.SetScrollOffset(v.clampOffset(offset))
	}
}

// Options returns the current options.
func (v *Virtualizer) Options() Options { return v.opts }

// SetScrollElement attaches the viewport.
func (v *Virtualizer) SetScrollElement(el ScrollElement) {
	v.el = el
}

// Count returns the number of rows.
func (v *Virtualizer) Count() int { return v.opts.Count }

func (v *Virtualizer) key(i int) string {
	if v.opts.GetKey != nil {
		return v.opts.GetKey(i)
	}
	return strconv.Itoa(i)
}

func (v *Virtualizer) sizeOf(i int) int {
	if size, ok := v.measured[v.key(i)]; ok {
		return size
	}
	if v.opts.EstimateSize == nil {
		return 1
	}
	return max(v.opts.EstimateSize(i), 0)
}

// ensure recomputes offsets from the first dirty index onwards.
func (v *Virtualizer) ensure() {
	n := v.opts.Count
	if len(v.starts) != n {
		v.starts = resize(v.starts, n)
		v.sizes = resize(v.sizes, n)
		v.dirtyFrom = 0
	}
	if v.dirtyFrom >= n {
		return
	}
	offset := 0
	if v.dirtyFrom > 0 {
		offset = v.starts[v.dirtyFrom-1] + v.sizes[v.dirtyFrom-1]
	}
	for i := v.dirtyFrom; i < n; i++ {
		v.starts[i] = offset
		v.sizes[i] = v.sizeOf(i)
		offset += v.sizes[i]
	}
	v.dirtyFrom = n
}

func resize(s []int, n int) []int {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int, n)
}

// GetTotalSize returns the height of the whole list.
func (v *Virtualizer) GetTotalSize() int {
	v.ensure()
	n := len(v.starts)
	if n == 0 {
		return 0
	}
	return v.starts[n-1] + v.sizes[n-1]
}

// ItemAt returns the geometry of row i.
func (v *Virtualizer) ItemAt(i int) (Item, bool) {
	v.ensure()
	if i < 0 || i >= len(v.starts) {
		return Item{}, false
	}
	return Item{Index: i, Start: v.starts[i], Size: v.sizes[i], Key: v.key(i)}, true
}

// VisibleRange returns the half-open index range [start, end) of rows that
// intersect the viewport, without overscan.
func (v *Virtualizer) VisibleRange() (start, end int, ok bool) {
	if v.el == nil {
		return 0, 0, false
	}
	v.ensure()
	n := len(v.starts)
	height := v.el.ViewportSize()
	if n == 0 || height <= 0 {
		return 0, 0, false
	}
	top := v.el.ScrollOffset()
	bottom := top + height
	start = sort.Search(n, func(i int) bool { return v.starts[i]+v.sizes[i] > top })
	end = sort.Search(n, func(i int) bool { return v.starts[i] >= bottom })
	if start >= end {
		return start, start, false
	}
	return start, end, true
}

// GetVirtualItems returns the rows to render: the visible range widened by
// overscan on each side.
func (v *Virtualizer) GetVirtualItems() []Item {
	start, end, ok := v.VisibleRange()
	if !ok {
		return nil
	}
	from := max(start-v.opts.Overscan, 0)
	to := min(end+v.opts.Overscan, len(v.starts))
	items := make([]Item, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, Item{Index: i, Start: v.starts[i], Size: v.sizes[i], Key: v.key(i)})
	}
	return items
}

// Measure records the rendered size of row i. When the size changes, the
// offsets of the following rows move; if the row starts above the
// viewport, the scroll offset moves by the same delta so the visible rows
// stay in place.
func (v *Virtualizer) Measure(i, size int) {
	v.ensure()
	if i < 0 || i >= len(v.starts) {
		return
	}
	size = max(size, 0)
	key := v.key(i)
	old := v.sizes[i]
	if cached, ok := v.measured[key]; ok && cached == size && old == size {
		return
	}
	v.measured[key] = size
	if old == size {
		return
	}
	v.dirtyFrom = min(v.dirtyFrom, i)
	if v.el != nil && v.anim == nil && v.starts[i] < v.el.ScrollOffset() {
		v.el.SetScrollOffset(v.clampOffset(v.el.ScrollOffset() + size - old))
	}
}

// ResetMeasurements drops every cached measurement.
func (v *Virtualizer) ResetMeasurements() {
	v.measured = map[string]int{}
	v.dirtyFrom = 0
	v.clampScroll()
}

// ScrollOffset returns the scroll element's offset, or 0 without one.
func (v *Virtualizer) ScrollOffset() int {
	if v.el == nil {
		return 0
	}
	return v.el.ScrollOffset()
}

// ViewportSize returns the scroll element's height, or 0 without one.
func (v *Virtualizer) ViewportSize() int {
	if v.el == nil {
		return 0
	}
	return v.el.ViewportSize()
}

// ScrollBy moves the viewport by delta lines, clamped to the list.
func (v *Virtualizer) ScrollBy(delta int) {
	if v.el == nil {
		return
	}
	v.anim = nil
	v.el.SetScrollOffset(v.clampOffset(v.el.ScrollOffset() + delta))
}

// IndexAtOffset returns the row covering the absolute offset, or -1.
func (v *Virtualizer) IndexAtOffset(offset int) int {
	v.ensure()
	n := len(v.starts)
	if n == 0 || offset < 0 {
		return -1
	}
	i := sort.Search(n, func(i int) bool { return v.starts[i]+v.sizes[i] > offset })
	if i >= n {
		return -1
	}
	return i
}

// ScrollToIndex scrolls row i into view. An out of range index is ignored.
func (v *Virtualizer) ScrollToIndex(i int, opts ScrollOptions) error {
	if v.el == nil || v.el.ViewportSize() <= 0 {
		return ErrNotReady
	}
	item, ok := v.ItemAt(i)
	if !ok {
		return nil
	}
	target, move := v.targetOffset(item, opts.Align)
	if !move {
		return nil
	}
	target = v.clampOffset(target)
	current := v.el.ScrollOffset()
	if opts.Behavior == BehaviorSmooth && target != current {
		v.anim = &animation{from: current, to: target}
		return nil
	}
	v.anim = nil
	v.el.SetScrollOffset(target)
	return nil
}

func (v *Virtualizer) targetOffset(item Item, align Align) (int, bool) {
	height := v.el.ViewportSize()
	current := v.el.ScrollOffset()
	if v.anim != nil {
		current = v.anim.to
	}
	switch align {
	case AlignCenter:
		return item.Start + item.Size/2 - height/2, true
	case AlignStart:
		return item.Start, true
	case AlignEnd:
		return item.End() - height, true
	default:
		switch {
		case item.Start < current || item.Size > height:
			return item.Start, true
		case item.End() > current+height:
			return item.End() - height, true
		default:
			return current, v.anim != nil
		}
	}
}

func (v *Virtualizer) clampOffset(offset int) int {
	limit := 0
	if v.el != nil {
		limit = max(v.GetTotalSize()-v.el.ViewportSize(), 0)
	}
	return min(max(offset, 0), limit)
}

// Animating reports whether a smooth scroll is in progress.
func (v *Virtualizer) Animating() bool { return v.anim != nil }

// Animate advances a smooth scroll by one frame and reports whether more
// frames remain.
func (v *Virtualizer) Animate() bool {
	if v.anim == nil || v.el == nil {
		v.anim = nil
		return false
	}
	v.anim.frame++
	if v.anim.frame >= smoothFrames {
		v.el.SetScrollOffset(v.clampOffset(v.anim.to))
		v.anim = nil
		return false
	}
	// Ease out: cover most of the distance in the first frames.
	t := float64(v.anim.frame) / smoothFrames
	eased := 1 - (1-t)*(1-t)*(1-t)
	offset := v.anim.from + int(float64(v.anim.to-v.anim.from)*eased)
	v.el.SetScrollOffset(v.clampOffset(offset))
	return true
}
