// Package kv provides a generic thread-safe key-value store.
package kv

import "sync"

// Store is a thread-safe generic key-value store.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates a new key-value store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// GetOrCreate returns the value for key, calling create and storing its
// result when the key is absent. create runs under the write lock.
func (s *Store[K, V]) GetOrCreate(key K, create func() V) V {
	s.mu.RLock()
	val, ok := s.data[key]
	s.mu.RUnlock()
	if ok {
		return val
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if val, ok := s.data[key]; ok {
		return val
	}
	val = create()
	s.data[key] = val
	return val
}

// Swap stores value under key and returns the value it replaced, if any.
func (s *Store[K, V]) Swap(key K, value V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.data[key]
	s.data[key] = value
	return prev, ok
}

// Pop removes key and returns the value it held, if any.
func (s *Store[K, V]) Pop(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	return val, ok
}

// Drain removes every entry and returns the removed values.
func (s *Store[K, V]) Drain() []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals := make([]V, 0, len(s.data))
	for _, v := range s.data {
		vals = append(vals, v)
	}
	s.data = make(map[K]V)
	return vals
}

// Len returns the number of items in the store.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Values returns a snapshot of all values in the store.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vals := make([]V, 0, len(s.data))
	for _, v := range s.data {
		vals = append(vals, v)
	}
	return vals
}
