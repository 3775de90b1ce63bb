package heap

// PropertyMap is an order-preserving key -> Descriptor map. Insertion
// order is observable (spec.md §3), so a plain Go map cannot be used
// directly; this mirrors the teacher's ident.Map shape (ordered keys +
// index lookup) generalized from case-insensitive strings to Key values.
type PropertyMap struct {
	order []Key
	index map[Key]int
	descs []Descriptor
}

// NewPropertyMap builds an empty, ready-to-use PropertyMap.
func NewPropertyMap() *PropertyMap {
	return &PropertyMap{index: make(map[Key]int)}
}

// Get returns the descriptor for k and whether it is present.
func (m *PropertyMap) Get(k Key) (Descriptor, bool) {
	i, ok := m.index[k]
	if !ok {
		return Descriptor{}, false
	}
	return m.descs[i], true
}

// Has reports whether k is an own property.
func (m *PropertyMap) Has(k Key) bool {
	_, ok := m.index[k]
	return ok
}

// Set inserts or updates k's descriptor. A fresh key is appended to the
// end of the insertion order; an existing key keeps its position.
func (m *PropertyMap) Set(k Key, d Descriptor) {
	if i, ok := m.index[k]; ok {
		m.descs[i] = d
		return
	}
	m.index[k] = len(m.order)
	m.order = append(m.order, k)
	m.descs = append(m.descs, d)
}

// Delete removes k, if present, preserving the relative order of the
// remaining keys.
func (m *PropertyMap) Delete(k Key) bool {
	i, ok := m.index[k]
	if !ok {
		return false
	}
	m.order = append(m.order[:i], m.order[i+1:]...)
	m.descs = append(m.descs[:i], m.descs[i+1:]...)
	delete(m.index, k)
	for j := i; j < len(m.order); j++ {
		m.index[m.order[j]] = j
	}
	return true
}

// Keys returns the own keys in insertion order.
func (m *PropertyMap) Keys() []Key {
	out := make([]Key, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of own properties.
func (m *PropertyMap) Len() int { return len(m.order) }

// Range iterates in insertion order; returning false from f stops early.
func (m *PropertyMap) Range(f func(k Key, d Descriptor) bool) {
	for i, k := range m.order {
		if !f(k, m.descs[i]) {
			return
		}
	}
}
