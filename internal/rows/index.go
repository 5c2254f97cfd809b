package rows

// Index maps row keys to positions in a row slice.
type Index map[string]int

// NewIndex indexes rows by key.
func NewIndex[R Row](rows []R) Index {
	idx := make(Index, len(rows))
	for i, r := range rows {
		idx[r.Key()] = i
	}
	return idx
}

// Lookup returns the position of key, or -1.
func (idx Index) Lookup(key string) int {
	if i, ok := idx[key]; ok {
		return i
	}
	return -1
}

// NextSelectable returns the first selectable index after from, or -1.
func NextSelectable[R Row](rows []R, from int) int {
	for i := max(from+1, 0); i < len(rows); i++ {
		if rows[i].Selectable() {
			return i
		}
	}
	return -1
}

// PrevSelectable returns the last selectable index before from, or -1.
func PrevSelectable[R Row](rows []R, from int) int {
	for i := min(from-1, len(rows)-1); i >= 0; i-- {
		if rows[i].Selectable() {
			return i
		}
	}
	return -1
}

// FirstSelectable returns the first selectable index, or -1.
func FirstSelectable[R Row](rows []R) int {
	return NextSelectable(rows, -1)
}

// LastSelectable returns the last selectable index, or -1.
func LastSelectable[R Row](rows []R) int {
	return PrevSelectable(rows, len(rows))
}

// NearestSelectable returns i when it is selectable, otherwise the closest
// selectable index in direction dir (+1 or -1), falling back to the other
// direction. It returns -1 when no row is selectable.
func NearestSelectable[R Row](rows []R, i, dir int) int {
	if len(rows) == 0 {
		return -1
	}
	i = min(max(i, 0), len(rows)-1)
	if rows[i].Selectable() {
		return i
	}
	if dir >= 0 {
		if j := NextSelectable(rows, i); j >= 0 {
			return j
		}
		return PrevSelectable(rows, i)
	}
	if j := PrevSelectable(rows, i); j >= 0 {
		return j
	}
	return NextSelectable(rows, i)
}

// FileItems returns the file rows in order, skipping headers.
func FileItems(rows []FileRow) []FileItemRow {
	out := make([]FileItemRow, 0, len(rows))
	for _, r := range rows {
		if item, ok := r.(FileItemRow); ok {
			out = append(out, item)
		}
	}
	return out
}
