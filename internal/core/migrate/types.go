// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-05
// Last Modified: 2026-03-12

// Package migrate implements the reconciliation engine that mirrors
// Bugzilla bugs into GitHub issues: pagination over the bug id space,
// derivation of the desired issue state, budget-aware retries, and the
// per-record reconcile state machine.
package migrate

import (
	"context"
	"errors"
)

// Issue lifecycle states on the target side.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// ErrNotFound marks a lookup for a resource that does not exist. It is a
// control signal (create vs. update), never retried and never fatal.
var ErrNotFound = errors.New("not found")

// ErrTransient marks a remote failure worth retrying (timeouts, 5xx,
// secondary rate limits, consistency gaps).
var ErrTransient = errors.New("transient remote error")

// ErrExhausted is reported by the source once the cursor has passed the
// last existing record. It distinguishes clean completion from failure.
var ErrExhausted = errors.New("source records exhausted")

// Record is a source bug as fetched from Bugzilla. Read-only once handed
// to the reconciler.
type Record struct {
	ID         int
	Title      string
	Product    string
	Component  string
	Status     string
	Resolution string
}

// Issue is the target-side view of a GitHub issue.
type Issue struct {
	Number int
	Title  string
	Body   string
	Labels []string
	State  string
	Locked bool
}

// Desired is the issue content and state derived from a Record.
type Desired struct {
	Title  string
	Body   string
	Labels []string
	State  string
}

// Source reads bugs from the originating tracker.
type Source interface {
	// GetRecordRange fetches records with ids in [startID, startID+count),
	// sorted by id. Ids that do not exist are simply absent from the result.
	GetRecordRange(ctx context.Context, startID, count int) ([]*Record, error)

	// LastRecordID returns the highest existing record id, or 0 when the
	// source holds no records at all.
	LastRecordID(ctx context.Context) (int, error)
}

// Target mutates issues in the destination tracker. Implementations wrap
// failures with ErrNotFound or ErrTransient so the engine can dispatch on
// a closed set of failure kinds.
type Target interface {
	GetIssue(ctx context.Context, number int) (*Issue, error)
	CreateIssue(ctx context.Context, title, body string, labels []string) (*Issue, error)
	UpdateContent(ctx context.Context, number int, title, body string, labels []string) error
	SetState(ctx context.Context, number int, state string) error
	CreateComment(ctx context.Context, number int, body string) error
	LockIssue(ctx context.Context, number int) error
}
