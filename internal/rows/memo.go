package rows

// Memo caches the result of a derivation until its input key changes. K is
// usually a small comparable struct of pointer identities, generation
// counters and the settings fields the derivation reads.
type Memo[K comparable, V any] struct {
	key   K
	value V
	valid bool
}

// Get returns the cached value for key, calling compute on a miss.
func (m *Memo[K, V]) Get(key K, compute func() V) V {
	if m.valid && m.key == key {
		return m.value
	}
	m.key = key
	m.value = compute()
	m.valid = true
	return m.value
}

// Reset forgets the cached value.
func (m *Memo[K, V]) Reset() {
	var zero V
	m.value = zero
	m.valid = false
}
