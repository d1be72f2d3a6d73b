// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-06
// Last Modified: 2026-03-12

package migrate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/similigh/bugport/internal/core/budget"
)

// baseBackoff is the unit of the linear backoff between attempts:
// attempt i sleeps baseBackoff * (i+1).
const baseBackoff = 800 * time.Millisecond

// Executor runs a single remote operation with bounded retries. Before
// every attempt it reserves budget capacity; every attempt consumes one
// call from the local estimate whether or not it succeeds.
type Executor struct {
	budget      *budget.Tracker
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor. maxAttempts <= 0 falls back to 10.
func NewExecutor(b *budget.Tracker, maxAttempts int) *Executor {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Executor{
		budget:      b,
		maxAttempts: maxAttempts,
		sleep:       sleepCtx,
	}
}

// Do executes op, retrying transient failures with linear backoff up to
// the attempt cap. ErrNotFound passes through immediately (it is a
// control signal, not a failure); any other non-transient error is fatal
// on the first occurrence. Exhausting the cap is fatal.
func (e *Executor) Do(ctx context.Context, desc string, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := e.budget.EnsureCapacity(ctx, 1); err != nil {
			return fmt.Errorf("%s: %w", desc, err)
		}

		err := op(ctx)
		e.budget.Spend()
		if err == nil {
			return nil
		}

		if errors.Is(err, ErrNotFound) {
			return err
		}
		if !errors.Is(err, ErrTransient) {
			return fmt.Errorf("%s: %w", desc, err)
		}

		lastErr = err
		if attempt == e.maxAttempts {
			break
		}

		delay := time.Duration(attempt+1) * baseBackoff
		log.Printf("[executor] %s: attempt %d/%d failed (%v), retrying in %v", desc, attempt, e.maxAttempts, err, delay)
		if err := e.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: %w", desc, err)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", desc, e.maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
