package virtual

import (
	"strconv"
	"testing"
)

var benchmarkItemSink int

func BenchmarkVirtualItems(b *testing.B) {
	const count = 10000

	b.Run("10k/window", func(b *testing.B) {
		v, pane := newFixed(count, 3, 40, 5)
		total := v.GetTotalSize()
		b.ReportAllocs()
		offset := 0
		for b.Loop() {
			offset = (offset + 97) % total
			pane.SetScrollOffset(offset)
			benchmarkItemSink += len(v.GetVirtualItems())
		}
	})

	b.Run("10k/measure", func(b *testing.B) {
		pane := &Pane{Height: 40}
		v := New(Options{
			Count:        count,
			EstimateSize: fixed(3),
			Overscan:     5,
			GetKey:       strconv.Itoa,
		})
		v.SetScrollElement(pane)
		b.ReportAllocs()
		size := 1
		for b.Loop() {
			for _, it := range v.GetVirtualItems() {
				v.Measure(it.Index, size)
			}
			size = size%4 + 1
			v.ScrollBy(11)
			if v.ScrollOffset() >= v.GetTotalSize()-pane.Height {
				pane.SetScrollOffset(0)
			}
		}
	})
}
