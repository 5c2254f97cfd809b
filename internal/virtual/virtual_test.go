package virtual

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(size int) func(int) int {
	return func(int) int { return size }
}

func newFixed(count, size, height, overscan int) (*Virtualizer, *Pane) {
	pane := &Pane{Height: height}
	v := New(Options{Count: count, EstimateSize: fixed(size), Overscan: overscan})
	v.SetScrollElement(pane)
	return v, pane
}

func indices(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Index
	}
	return out
}

func TestVisibleRangeFixedRowsAtTop(t *testing.T) {
	v, _ := newFixed(1000, 25, 500, 0)

	items := v.GetVirtualItems()
	require.Len(t, items, 20)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 19, items[19].Index)
	assert.Equal(t, 25000, v.GetTotalSize())
}

func TestVisibleRangeMatchesFloorCeilFormula(t *testing.T) {
	const n, h, viewport = 200, 3, 20
	for _, scroll := range []int{0, 1, 7, 30, 299, 580} {
		t.Run(fmt.Sprint(scroll), func(t *testing.T) {
			v, pane := newFixed(n, h, viewport, 0)
			pane.Offset = scroll

			start, end, ok := v.VisibleRange()
			require.True(t, ok)
			assert.Equal(t, scroll/h, start)
			wantEnd := min((scroll+viewport+h-1)/h, n)
			assert.Equal(t, wantEnd, end)
		})
	}
}

func TestOverscanWidensWindow(t *testing.T) {
	v, pane := newFixed(100, 1, 10, 3)
	pane.Offset = 50

	items := v.GetVirtualItems()
	assert.Equal(t, 47, items[0].Index)
	assert.Equal(t, 62, items[len(items)-1].Index)

	pane.Offset = 0
	assert.Equal(t, 0, v.GetVirtualItems()[0].Index)
}

func TestEmptyList(t *testing.T) {
	v, _ := newFixed(0, 1, 10, 2)
	assert.Empty(t, v.GetVirtualItems())
	assert.Zero(t, v.GetTotalSize())
	assert.NoError(t, v.ScrollToIndex(0, ScrollOptions{}))
}

func TestScrollToIndexNotReady(t *testing.T) {
	v := New(Options{Count: 10, EstimateSize: fixed(1)})
	assert.ErrorIs(t, v.ScrollToIndex(3, ScrollOptions{}), ErrNotReady)

	v.SetScrollElement(&Pane{Height: 0})
	assert.ErrorIs(t, v.ScrollToIndex(3, ScrollOptions{}), ErrNotReady)
	assert.Nil(t, v.GetVirtualItems())
}

func TestScrollToIndexOutOfRangeIsNoop(t *testing.T) {
	v, pane := newFixed(10, 1, 5, 0)
	pane.Offset = 2
	assert.NoError(t, v.ScrollToIndex(-1, ScrollOptions{}))
	assert.NoError(t, v.ScrollToIndex(10, ScrollOptions{}))
	assert.Equal(t, 2, pane.Offset)
}

func TestScrollToIndexAutoMinimal(t *testing.T) {
	v, pane := newFixed(100, 2, 10, 0)

	require.NoError(t, v.ScrollToIndex(2, ScrollOptions{}))
	assert.Equal(t, 0, pane.Offset, "already visible")

	require.NoError(t, v.ScrollToIndex(10, ScrollOptions{}))
	assert.Equal(t, 12, pane.Offset, "row end aligned with viewport bottom")

	require.NoError(t, v.ScrollToIndex(3, ScrollOptions{}))
	assert.Equal(t, 6, pane.Offset, "row start aligned with viewport top")
}

func TestScrollToIndexStartEndAndClamp(t *testing.T) {
	v, pane := newFixed(20, 1, 5, 0)

	require.NoError(t, v.ScrollToIndex(10, ScrollOptions{Align: AlignStart}))
	assert.Equal(t, 10, pane.Offset)
	require.NoError(t, v.ScrollToIndex(10, ScrollOptions{Align: AlignEnd}))
	assert.Equal(t, 6, pane.Offset)
	require.NoError(t, v.ScrollToIndex(19, ScrollOptions{Align: AlignStart}))
	assert.Equal(t, 15, pane.Offset, "clamped to the last full page")
}

func TestScrollToIndexCenterRoundTrip(t *testing.T) {
	const height = 11
	sizes := []int{1, 3, 2, 1, 4, 1, 1, 2, 5, 1, 1, 3, 2, 1, 1, 2, 1, 1, 1, 4}
	for i := range sizes {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			pane := &Pane{Height: height}
			v := New(Options{Count: len(sizes), EstimateSize: func(i int) int { return sizes[i] }})
			v.SetScrollElement(pane)

			require.NoError(t, v.ScrollToIndex(i, ScrollOptions{Align: AlignCenter}))

			item, _ := v.ItemAt(i)
			mid := float64(item.Start) + float64(item.Size)/2
			viewMid := float64(pane.Offset) + height/2.0
			maxOffset := v.GetTotalSize() - height
			if pane.Offset > 0 && pane.Offset < maxOffset {
				assert.InDelta(t, viewMid, mid, 1)
			}
			assert.InDelta(t, viewMid, mid, height/2.0+float64(item.Size))
		})
	}
}

func TestSmoothScrollAnimates(t *testing.T) {
	v, pane := newFixed(100, 1, 10, 0)

	require.NoError(t, v.ScrollToIndex(60, ScrollOptions{Align: AlignStart, Behavior: BehaviorSmooth}))
	assert.True(t, v.Animating())
	assert.Equal(t, 0, pane.Offset)

	prev := 0
	frames := 0
	for v.Animate() {
		frames++
		assert.GreaterOrEqual(t, pane.Offset, prev)
		prev = pane.Offset
	}
	assert.Equal(t, 60, pane.Offset)
	assert.Equal(t, smoothFrames-1, frames)
	assert.False(t, v.Animating())
}

func TestMeasureShiftsFollowingOffsets(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	v := New(Options{Count: 4, EstimateSize: fixed(2), GetKey: func(i int) string { return keys[i] }})
	v.SetScrollElement(&Pane{Height: 100})

	v.Measure(1, 5)

	items := v.GetVirtualItems()
	assert.Equal(t, []int{0, 2, 7, 9}, []int{items[0].Start, items[1].Start, items[2].Start, items[3].Start})
	assert.Equal(t, 11, v.GetTotalSize())

	// Measurements follow keys when the list is rebuilt in another order.
	keys = []string{"b", "a", "c", "d"}
	v.SetOptions(Options{Count: 4, EstimateSize: fixed(2), GetKey: func(i int) string { return keys[i] }})
	first, _ := v.ItemAt(0)
	assert.Equal(t, 5, first.Size)
}

func TestMeasureAboveViewportKeepsVisibleRowsStill(t *testing.T) {
	v, pane := newFixed(50, 1, 10, 0)
	pane.Offset = 20
	before, _ := v.ItemAt(25)
	visibleStart := before.Start - pane.Offset

	v.Measure(3, 4)

	after, _ := v.ItemAt(25)
	assert.Equal(t, before.Start+3, after.Start)
	assert.Equal(t, visibleStart, after.Start-pane.Offset)
}

func TestIndexAtOffsetAndScrollBy(t *testing.T) {
	v, pane := newFixed(10, 2, 4, 0)
	assert.Equal(t, 0, v.IndexAtOffset(1))
	assert.Equal(t, 3, v.IndexAtOffset(7))
	assert.Equal(t, -1, v.IndexAtOffset(20))

	v.ScrollBy(100)
	assert.Equal(t, 16, pane.Offset)
	v.ScrollBy(-100)
	assert.Equal(t, 0, pane.Offset)
}

func TestShrinkingListPullsOffsetBack(t *testing.T) {
	v, pane := newFixed(100, 1, 10, 0)
	require.NoError(t, v.ScrollToIndex(99, ScrollOptions{}))
	require.Equal(t, 90, pane.Offset)

	v.SetOptions(Options{Count: 5, EstimateSize: fixed(1)})
	assert.Equal(t, 0, pane.Offset)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices(v.GetVirtualItems()))

	v.SetOptions(Options{Count: 30, EstimateSize: fixed(1)})
	pane.Offset = 20
	v.SetOptions(Options{Count: 25, EstimateSize: fixed(1)})
	assert.Equal(t, 15, pane.Offset)
	assert.Equal(t, 24, indices(v.GetVirtualItems())[9])
}

func TestShrinkingListRetargetsAnimation(t *testing.T) {
	v, pane := newFixed(100, 1, 10, 0)
	require.NoError(t, v.ScrollToIndex(80, ScrollOptions{Align: AlignStart, Behavior: BehaviorSmooth}))
	require.True(t, v.Animating())

	v.SetOptions(Options{Count: 20, EstimateSize: fixed(1)})
	for v.Animate() {
		assert.LessOrEqual(t, pane.Offset, 10)
	}
	assert.Equal(t, 10, pane.Offset)
}

func TestSetOptionsDropsMeasurementsForRemovedKeys(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	getKey := func(i int) string { return keys[i] }
	v := New(Options{Count: 4, EstimateSize: fixed(1), GetKey: getKey})
	v.SetScrollElement(&Pane{Height: 10})
	for i := range 4 {
		v.Measure(i, 3)
	}
	require.Len(t, v.measured, 4)

	keys = []string{"d", "b"}
	v.SetOptions(Options{Count: 2, EstimateSize: fixed(1), GetKey: getKey})
	assert.Equal(t, map[string]int{"b": 3, "d": 3}, v.measured)
	assert.Equal(t, 6, v.GetTotalSize())
}
