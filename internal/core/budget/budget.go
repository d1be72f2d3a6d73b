// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-03-05
// Last Modified: 2026-03-11

// Package budget tracks the remaining GitHub API call budget.
// It keeps a conservative local estimate so that most operations avoid a
// round trip to the rate-limit endpoint, and blocks the caller while the
// budget is exhausted.
package budget

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// RemainingFunc performs an authoritative rate-limit query and returns
// the number of calls still allowed in the current window.
type RemainingFunc func(ctx context.Context) (int, error)

// Options tunes the tracker. Zero values fall back to defaults.
type Options struct {
	// FreshFor is how long a refreshed estimate is trusted (default: 60s).
	FreshFor time.Duration

	// Cooldown is the wait between refreshes while exhausted (default: 300s).
	Cooldown time.Duration

	// Now and Sleep are injectable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Tracker maintains the local budget estimate.
// Safe for concurrent use; the refresh path is exclusive.
type Tracker struct {
	refresh RemainingFunc

	freshFor time.Duration
	cooldown time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	remaining     int
	lastRefreshed time.Time
}

// NewTracker creates a tracker backed by the given rate-limit query.
func NewTracker(refresh RemainingFunc, opts Options) *Tracker {
	if opts.FreshFor == 0 {
		opts.FreshFor = 60 * time.Second
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = 300 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepCtx
	}

	return &Tracker{
		refresh:  refresh,
		freshFor: opts.FreshFor,
		cooldown: opts.Cooldown,
		now:      opts.Now,
		sleep:    opts.Sleep,
	}
}

// EnsureCapacity blocks until the estimated remaining budget exceeds need.
// The estimate is trusted while fresh; otherwise the authoritative
// endpoint is consulted, and the tracker waits out a cooldown between
// consultations while the budget stays exhausted.
func (t *Tracker) EnsureCapacity(ctx context.Context, need int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining > need && t.now().Sub(t.lastRefreshed) < t.freshFor {
		return nil
	}

	for {
		remaining, err := t.refresh(ctx)
		if err != nil {
			return fmt.Errorf("rate limit refresh failed: %w", err)
		}
		t.remaining = remaining
		t.lastRefreshed = t.now()

		if t.remaining > need {
			return nil
		}

		log.Printf("[budget] %d calls remaining (need %d, waiting), cooling down for %v", t.remaining, need, t.cooldown)
		if err := t.sleep(ctx, t.cooldown); err != nil {
			return err
		}
	}
}

// Spend records one consumed call against the local estimate.
// The estimate never goes negative; a refresh corrects it either way.
func (t *Tracker) Spend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
}

// Remaining returns the current local estimate (for logging).
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
