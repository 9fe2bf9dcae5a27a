package sync

import "sync"

// TypedSyncMap is a thin generic wrapper around sync.Map. The zero
// value is ready for use.
type TypedSyncMap[K comparable, V any] struct {
	m sync.Map
}

func (m *TypedSyncMap[K, V]) Store(key K, value V) { m.m.Store(key, value) }

func (m *TypedSyncMap[K, V]) Delete(key K) { m.m.Delete(key) }

func (m *TypedSyncMap[K, V]) Load(key K) (V, bool) {
	v, ok := m.m.Load(key)
	if !ok {
		return *new(V), false
	}

	vv, ok := v.(V)
	return vv, ok
}

func (m *TypedSyncMap[K, V]) Has(key K) bool {
	_, ok := m.m.Load(key)
	return ok
}

func (m *TypedSyncMap[K, V]) LoadOrStore(key K, value V) (V, bool) {
	actual, loaded := m.m.LoadOrStore(key, value)
	if av, ok := actual.(V); ok {
		return av, loaded
	}

	return *new(V), loaded
}

// Range calls fn for each entry until fn returns false. See sync.Map.Range
// for the consistency guarantees.
func (m *TypedSyncMap[K, V]) Range(fn func(K, V) bool) {
	m.m.Range(func(key, value any) bool {
		return fn(key.(K), value.(V))
	})
}

// Len counts the entries in the map. The count is not a
// snapshot if the map is being mutated concurrently.
func (m *TypedSyncMap[K, V]) Len() int {
	count := 0
	m.m.Range(func(_, _ any) bool {
		count++
		return true
	})

	return count
}
