package keynav

import (
	"github.com/treykane/tagnav/internal/rows"
	"github.com/treykane/tagnav/internal/state"
	"github.com/treykane/tagnav/internal/tagtree"
)

const untaggedPath = tagtree.UntaggedPath

// verticalTarget returns the index a vertical movement key lands on. It
// returns cur when the movement is a no-op, for example at the last
// selectable row.
func verticalTarget[R rows.Row](list []R, cur int, key Key, page int) int {
	first, last := rows.FirstSelectable(list), rows.LastSelectable(list)
	if first < 0 {
		return cur
	}
	if cur < 0 || cur >= len(list) {
		// Nothing selected yet: every movement starts at the top.
		if key == KeyEnd {
			return last
		}
		return first
	}

	switch key {
	case KeyDown:
		if next := rows.NextSelectable(list, cur); next >= 0 {
			return next
		}
		return cur
	case KeyUp:
		if prev := rows.PrevSelectable(list, cur); prev >= 0 {
			return prev
		}
		return cur
	case KeyHome:
		return first
	case KeyEnd:
		return last
	case KeyPageDown:
		target := min(cur+page, len(list)-1)
		if !list[target].Selectable() {
			target = rows.NearestSelectable(list, target, 1)
		}
		if target <= cur {
			target = last
		}
		return target
	case KeyPageUp:
		target := max(cur-page, 0)
		if !list[target].Selectable() {
			target = rows.NearestSelectable(list, target, -1)
		}
		if target < 0 || target >= cur {
			target = first
		}
		return target
	}
	return cur
}

// pageSize is the number of rows a page key moves: how many rows of the
// currently rendered average height fit in the viewport, minus one, and at
// least one.
func pageSize(geom Geometry) int {
	if geom == nil {
		return 1
	}
	items := geom.GetVirtualItems()
	height := geom.ViewportSize()
	if len(items) == 0 || height <= 0 {
		return 1
	}
	total := 0
	for _, it := range items {
		total += it.Size
	}
	if total <= 0 {
		return 1
	}
	avg := float64(total) / float64(len(items))
	return max(int(float64(height)/avg)-1, 1)
}

// parentIndex returns the row of the parent folder or parent tag of the
// row at cur, or -1.
func parentIndex(navRows []rows.NavRow, cur int) int {
	if cur < 0 || cur >= len(navRows) {
		return -1
	}
	var parentKey string
	switch r := navRows[cur].(type) {
	case rows.FolderRow:
		if r.Folder.IsRoot() {
			return -1
		}
		parent, _ := state.ParentPath(r.Path())
		parentKey = rows.FolderKey(parent)
	case rows.TagRow:
		parent, ok := state.ParentPath(r.Path())
		if !ok {
			return -1
		}
		parentKey = rows.TagKey(parent)
	default:
		return -1
	}
	return rows.NewIndex(navRows).Lookup(parentKey)
}
