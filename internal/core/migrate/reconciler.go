// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-06
// Last Modified: 2026-03-13

package migrate

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Outcome records what reconciling a single record actually did.
type Outcome struct {
	RecordID       int    `json:"record_id"`
	Created        bool   `json:"created"`
	ContentUpdated bool   `json:"content_updated"`
	StateChanged   bool   `json:"state_changed"`
	Locked         bool   `json:"locked"`
	FinalState     string `json:"final_state"`
}

// Unchanged reports whether reconciliation issued zero write calls.
func (o *Outcome) Unchanged() bool {
	return !o.Created && !o.ContentUpdated && !o.StateChanged && !o.Locked
}

// Reconciler brings one GitHub issue into agreement with its Bugzilla
// record. Every step is idempotent: re-running over already-synced data
// issues no writes.
type Reconciler struct {
	target  Target
	exec    *Executor
	deriver *Deriver

	lock    bool
	dryRun  bool
	verbose bool
}

// NewReconciler creates a reconciler. When lock is false the final lock
// step is skipped; when dryRun is true intended writes are logged but not
// performed.
func NewReconciler(target Target, exec *Executor, deriver *Deriver, lock, dryRun, verbose bool) *Reconciler {
	return &Reconciler{
		target:  target,
		exec:    exec,
		deriver: deriver,
		lock:    lock,
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// Reconcile runs the per-record state machine:
// lookup → create or update content → observe state → transition with a
// comment when needed → lock. Any retry-exhausted remote call aborts the
// record; the caller treats that as fatal for the whole run.
func (r *Reconciler) Reconcile(ctx context.Context, rec *Record) (*Outcome, error) {
	outcome := &Outcome{RecordID: rec.ID}
	desired := r.deriver.Derive(rec)

	// 1. Lookup. Not-found is the "absent" outcome, not a failure.
	issue, err := r.fetchIssue(ctx, rec.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return outcome, err
	}
	absent := errors.Is(err, ErrNotFound)

	// 2. Create or update content.
	if absent {
		issue, err = r.createIssue(ctx, rec, desired)
		if err != nil {
			return outcome, err
		}
		outcome.Created = true
	} else if !r.contentMatches(issue, desired) {
		if err := r.updateContent(ctx, rec.ID, desired); err != nil {
			return outcome, err
		}
		outcome.ContentUpdated = true
		issue.Title, issue.Body, issue.Labels = desired.Title, desired.Body, desired.Labels
	}

	// 3. State transition, with a comment documenting why.
	if issue.State != desired.State {
		if err := r.transitionState(ctx, rec, issue, desired.State); err != nil {
			return outcome, err
		}
		outcome.StateChanged = true
		issue.State = desired.State
	}
	outcome.FinalState = issue.State

	// 4. Lock, unless disabled or already locked.
	if r.lock && !issue.Locked {
		if err := r.lockIssue(ctx, rec.ID); err != nil {
			return outcome, err
		}
		outcome.Locked = true
	}

	if r.verbose {
		log.Printf("[reconciler] #%d: created=%v updated=%v stateChanged=%v locked=%v state=%s",
			rec.ID, outcome.Created, outcome.ContentUpdated, outcome.StateChanged, outcome.Locked, outcome.FinalState)
	}

	return outcome, nil
}

func (r *Reconciler) fetchIssue(ctx context.Context, number int) (*Issue, error) {
	var issue *Issue
	err := r.exec.Do(ctx, fmt.Sprintf("get issue #%d", number), func(ctx context.Context) error {
		got, err := r.target.GetIssue(ctx, number)
		if err != nil {
			return err
		}
		issue = got
		return nil
	})
	return issue, err
}

// createIssue creates the issue always in the open state; closing happens
// as an explicit, commented transition in the state step. After creation
// the issue is re-fetched so the reconciler works from the authoritative
// state, tolerating the API's eventual consistency.
func (r *Reconciler) createIssue(ctx context.Context, rec *Record, desired Desired) (*Issue, error) {
	if r.dryRun {
		log.Printf("[reconciler] DRY RUN: would create #%d %q with labels %v", rec.ID, desired.Title, desired.Labels)
		return &Issue{Number: rec.ID, Title: desired.Title, Body: desired.Body, Labels: desired.Labels, State: StateOpen}, nil
	}

	var created *Issue
	err := r.exec.Do(ctx, fmt.Sprintf("create issue #%d", rec.ID), func(ctx context.Context) error {
		got, err := r.target.CreateIssue(ctx, desired.Title, desired.Body, desired.Labels)
		if err != nil {
			return err
		}
		created = got
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The id mapping assumes GitHub's issue counter mirrors bug ids.
	// A divergence would silently corrupt every subsequent record, so it
	// aborts the run instead.
	if created.Number != rec.ID {
		return nil, fmt.Errorf("issue numbering diverged: created issue #%d for bug %d", created.Number, rec.ID)
	}

	log.Printf("[reconciler] Importing %s as issue #%d", r.deriver.BugURL(rec.ID), rec.ID)

	// Re-fetch for the authoritative state. A 404 here is the API lagging
	// behind its own create, so it is retried as transient.
	var fresh *Issue
	err = r.exec.Do(ctx, fmt.Sprintf("refetch issue #%d", rec.ID), func(ctx context.Context) error {
		got, err := r.target.GetIssue(ctx, rec.ID)
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("issue #%d not visible yet: %w", rec.ID, ErrTransient)
		}
		if err != nil {
			return err
		}
		fresh = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func (r *Reconciler) contentMatches(issue *Issue, desired Desired) bool {
	return issue.Title == desired.Title &&
		issue.Body == desired.Body &&
		SameLabelSet(issue.Labels, desired.Labels)
}

func (r *Reconciler) updateContent(ctx context.Context, number int, desired Desired) error {
	if r.dryRun {
		log.Printf("[reconciler] DRY RUN: would update content of #%d", number)
		return nil
	}
	return r.exec.Do(ctx, fmt.Sprintf("update issue #%d", number), func(ctx context.Context) error {
		return r.target.UpdateContent(ctx, number, desired.Title, desired.Body, desired.Labels)
	})
}

func (r *Reconciler) transitionState(ctx context.Context, rec *Record, issue *Issue, state string) error {
	comment := r.transitionComment(rec, state)
	if r.dryRun {
		log.Printf("[reconciler] DRY RUN: would comment and move #%d to %s", rec.ID, state)
		return nil
	}

	err := r.exec.Do(ctx, fmt.Sprintf("comment on issue #%d", rec.ID), func(ctx context.Context) error {
		return r.target.CreateComment(ctx, rec.ID, comment)
	})
	if err != nil {
		return err
	}

	return r.exec.Do(ctx, fmt.Sprintf("set issue #%d %s", rec.ID, state), func(ctx context.Context) error {
		return r.target.SetState(ctx, rec.ID, state)
	})
}

func (r *Reconciler) transitionComment(rec *Record, state string) string {
	if state == StateClosed {
		return fmt.Sprintf("Closing issue because Bugzilla bug %d is %s with resolution %s.", rec.ID, rec.Status, rec.Resolution)
	}
	if rec.Resolution != "" {
		return fmt.Sprintf("Re-opening issue because Bugzilla bug %d is %s with resolution %s.", rec.ID, rec.Status, rec.Resolution)
	}
	return fmt.Sprintf("Re-opening issue because Bugzilla bug %d is %s.", rec.ID, rec.Status)
}

func (r *Reconciler) lockIssue(ctx context.Context, number int) error {
	if r.dryRun {
		log.Printf("[reconciler] DRY RUN: would lock #%d", number)
		return nil
	}
	return r.exec.Do(ctx, fmt.Sprintf("lock issue #%d", number), func(ctx context.Context) error {
		return r.target.LockIssue(ctx, number)
	})
}
