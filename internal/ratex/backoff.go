// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package ratex provides request pacing.
package ratex

import (
	"context"
	"sync"
	"time"
)

// BackoffLimiter spaces events at least one period apart. The period grows when
// the caller reports backpressure and decays back toward its minimum on success.
// It is safe for concurrent use.
type BackoffLimiter struct {
	mu            sync.Mutex
	currentPeriod time.Duration
	minimum       time.Duration
	maximum       time.Duration
	next          time.Time
}

// NewBackoffLimiter returns a limiter whose period never drops below minimum
// nor grows beyond 64 times minimum.
func NewBackoffLimiter(minimum time.Duration) *BackoffLimiter {
	return &BackoffLimiter{
		currentPeriod: minimum,
		minimum:       minimum,
		maximum:       64 * minimum,
	}
}

// reserve claims the next free slot and returns when it begins and ends.
func (l *BackoffLimiter) reserve() (start, end time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	start = time.Now()
	if l.next.After(start) {
		start = l.next
	}
	l.next = start.Add(l.currentPeriod)
	return start, l.next
}

// release returns an unused slot. Only the most recent reservation can be
// returned; earlier ones have been built upon.
func (l *BackoffLimiter) release(start, end time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.next.Equal(end) {
		l.next = start
	}
}

// Wait blocks until the limiter permits another event to happen.
// If ctx becomes Done(), Wait will return an error and give up its slot.
// If the slot would begin after ctx's deadline, Wait fails immediately with
// context.DeadlineExceeded.
func (l *BackoffLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start, end := l.reserve()
	if deadline, ok := ctx.Deadline(); ok && start.After(deadline) {
		l.release(start, end)
		return context.DeadlineExceeded
	}
	d := time.Until(start)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		l.release(start, end)
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff will increase the period by 33%.
// This will not take effect until the next reservation.
func (l *BackoffLimiter) Backoff() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPeriod = min(max(l.currentPeriod*4/3, l.currentPeriod+time.Millisecond), l.maximum)
}

// Success will decrease the period by 10%.
// This will not take effect until the next reservation.
func (l *BackoffLimiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentPeriod = max(l.currentPeriod*9/10, l.minimum)
}

func (l *BackoffLimiter) CurrentPeriod() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentPeriod
}
