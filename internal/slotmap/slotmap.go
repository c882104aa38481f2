// Package slotmap provides a concurrency-safe map from key to a single
// mutable slot. Each slot has its own mutex, so operations on one key are
// linearizable and operations on different keys never block each other.
package slotmap

import "sync"

type slot[V any] struct {
	mu    sync.Mutex
	value V
}

type Map[K comparable, V any] struct {
	slots sync.Map
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

func (m *Map[K, V]) slot(key K) *slot[V] {
	if s, ok := m.slots.Load(key); ok {
		return s.(*slot[V])
	}

	s, _ := m.slots.LoadOrStore(key, &slot[V]{})

	return s.(*slot[V])
}

// Do runs fn with the slot for key locked. fn must not block on I/O.
// Slots are never removed, so a key always maps to the same mutex.
func (m *Map[K, V]) Do(key K, fn func(value *V)) {
	s := m.slot(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.value)
}

// Load returns a copy of the slot value taken under the slot lock.
func (m *Map[K, V]) Load(key K) V {
	var out V

	m.Do(key, func(value *V) {
		out = *value
	})

	return out
}

// Range visits every slot that has been touched, locking each in turn.
func (m *Map[K, V]) Range(fn func(key K, value *V)) {
	m.slots.Range(func(k, s any) bool {
		sl := s.(*slot[V])

		sl.mu.Lock()
		fn(k.(K), &sl.value)
		sl.mu.Unlock()

		return true
	})
}

// Lock holds the slot for key until the returned function is called. It is
// meant for serializing whole operations per key, not for guarding state.
func (m *Map[K, V]) Lock(key K) (unlock func()) {
	s := m.slot(key)
	s.mu.Lock()

	return s.mu.Unlock
}
