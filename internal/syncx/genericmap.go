// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package syncx provides type-safe wrappers over the sync package.
package syncx

import "sync"

// Map is a type-safe wrapper around sync.Map.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Delete deletes the value for a key.
func (m *Map[K, V]) Delete(key K) {
	m.m.Delete(key)
}

// Load returns the value stored in the map for a key, or the zero value if no
// value is present. The ok result indicates whether value was found in the map.
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	v, ok := m.m.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// LoadOrStore returns the existing value for the key if present.
// Otherwise, it stores and returns the given value.
// The loaded result is true if the value was loaded, false if stored.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	a, loaded := m.m.LoadOrStore(key, value)
	return a.(V), loaded
}

// Len counts the entries in the map. It is linear in the size of the map.
func (m *Map[K, V]) Len() int {
	var n int
	m.m.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// ComparableMap is a Map whose values are comparable, enabling
// compare-and-delete.
type ComparableMap[K comparable, V comparable] struct {
	Map[K, V]
}

// CompareAndDelete deletes the entry for key if its value is equal to old.
func (m *ComparableMap[K, V]) CompareAndDelete(key K, old V) (deleted bool) {
	return m.m.CompareAndDelete(key, old)
}
