// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package cache provides an interface and implementations for caching.
package cache

import (
	"sync"

	"github.com/google/cargo-avail/internal/syncx"
	"github.com/pkg/errors"
)

// Cache is a simple interface defining a cache.
type Cache[K comparable, V any] interface {
	Get(K) (V, error)
	GetOrSet(K, func() (V, error)) (V, error)
	Del(K)
}

// ErrNotExist is returned when a key does not exist in the cache.
var ErrNotExist = errors.New("does not exist")

// CoalescingMemoryCache is a simple cache that coalesces concurrent requests for the same key.
// Failed fetches are not retained.
type CoalescingMemoryCache[K comparable, V any] struct {
	data syncx.ComparableMap[K, *entry[V]]
}

type entry[V any] struct {
	fetch func() (V, error)
}

func newEntry[V any](fetch func() (V, error)) *entry[V] {
	return &entry[V]{fetch: sync.OnceValues(fetch)}
}

func (c *CoalescingMemoryCache[K, V]) valueOrClear(key K, e *entry[V]) (V, error) {
	val, err := e.fetch()
	if err != nil {
		c.data.CompareAndDelete(key, e)
	}
	return val, err
}

// Get returns the value for the given key.
func (c *CoalescingMemoryCache[K, V]) Get(key K) (V, error) {
	e, ok := c.data.Load(key)
	if !ok {
		var zero V
		return zero, ErrNotExist
	}
	return c.valueOrClear(key, e)
}

// GetOrSet returns the value for the given key, or sets it if it does not exist.
// Simultaneous accesses to the same key share one call to fetch.
func (c *CoalescingMemoryCache[K, V]) GetOrSet(key K, fetch func() (V, error)) (V, error) {
	e, _ := c.data.LoadOrStore(key, newEntry(fetch))
	return c.valueOrClear(key, e)
}

// Del deletes the value for the given key.
func (c *CoalescingMemoryCache[K, V]) Del(key K) {
	c.data.Delete(key)
}

// Len is the number of keys held, including fetches still in flight.
func (c *CoalescingMemoryCache[K, V]) Len() int {
	return c.data.Len()
}

var _ Cache[string, []byte] = &CoalescingMemoryCache[string, []byte]{}
