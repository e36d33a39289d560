// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoalescingMemoryCache_GetOrSetDel(t *testing.T) {
	cache := &CoalescingMemoryCache[string, string]{}

	val, err := cache.GetOrSet("key", func() (string, error) { return "value", nil })
	if err != nil || val != "value" {
		t.Fatalf("cache.GetOrSet() = %q, %v, want %q, nil", val, err, "value")
	}
	val, err = cache.Get("key")
	if err != nil || val != "value" {
		t.Fatalf("cache.Get() = %q, %v, want %q, nil", val, err, "value")
	}
	cache.Del("key")
	if _, err = cache.Get("key"); err != ErrNotExist {
		t.Fatalf("cache.Get() after Del error = %v, want ErrNotExist", err)
	}
}

func TestCoalescingMemoryCache_GetOrSetErr(t *testing.T) {
	cache := &CoalescingMemoryCache[string, string]{}
	foo := errors.New("foo")
	_, err := cache.GetOrSet("key", func() (string, error) { return "", foo })
	if err != foo {
		t.Fatalf("cache.GetOrSet() error = %v, want %v", err, foo)
	}
	if _, err = cache.Get("key"); err != ErrNotExist {
		t.Fatalf("cache.Get() error = %v, want ErrNotExist", err)
	}
	if cache.Len() != 0 {
		t.Fatalf("cache.Len() = %d, want 0", cache.Len())
	}
}

func TestCoalescingMemoryCache_GetOrSetCoalesces(t *testing.T) {
	cache := &CoalescingMemoryCache[string, string]{}

	want := "value"
	count := 5
	results := make(chan string, count)
	var called atomic.Int32
	for range count {
		go func() {
			val, err := cache.GetOrSet("key", func() (string, error) {
				called.Add(1)
				time.Sleep(100 * time.Millisecond)
				return want, nil
			})
			if err != nil {
				results <- ""
			} else {
				results <- val
			}
		}()
	}
	for range count {
		if got := <-results; got != want {
			t.Fatalf("results differed: want=%v,got=%v", want, got)
		}
	}
	if called.Load() != 1 {
		t.Fatalf("call count differed: want=1,got=%v", called.Load())
	}
}
