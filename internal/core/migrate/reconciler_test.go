// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-07
// Last Modified: 2026-03-13

package migrate

import (
	"context"
	"fmt"
	"testing"
)

// fakeTarget implements Target over an in-memory issue map and records
// every write call for assertions.
type fakeTarget struct {
	issues map[int]*Issue

	// nextNumber is the number the next created issue receives,
	// simulating GitHub's own issue counter.
	nextNumber int

	writes   []string
	comments map[int][]string
}

func newFakeTarget(nextNumber int) *fakeTarget {
	return &fakeTarget{
		issues:     make(map[int]*Issue),
		nextNumber: nextNumber,
		comments:   make(map[int][]string),
	}
}

func (f *fakeTarget) GetIssue(ctx context.Context, number int) (*Issue, error) {
	issue, ok := f.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d: %w", number, ErrNotFound)
	}
	copied := *issue
	copied.Labels = append([]string(nil), issue.Labels...)
	return &copied, nil
}

func (f *fakeTarget) CreateIssue(ctx context.Context, title, body string, labels []string) (*Issue, error) {
	for f.issues[f.nextNumber] != nil {
		f.nextNumber++
	}
	number := f.nextNumber
	f.nextNumber++
	issue := &Issue{
		Number: number,
		Title:  title,
		Body:   body,
		Labels: append([]string(nil), labels...),
		State:  StateOpen,
	}
	f.issues[number] = issue
	f.writes = append(f.writes, fmt.Sprintf("create %d", number))
	copied := *issue
	return &copied, nil
}

func (f *fakeTarget) UpdateContent(ctx context.Context, number int, title, body string, labels []string) error {
	issue, ok := f.issues[number]
	if !ok {
		return fmt.Errorf("issue #%d: %w", number, ErrNotFound)
	}
	issue.Title, issue.Body = title, body
	issue.Labels = append([]string(nil), labels...)
	f.writes = append(f.writes, fmt.Sprintf("update %d", number))
	return nil
}

func (f *fakeTarget) SetState(ctx context.Context, number int, state string) error {
	issue, ok := f.issues[number]
	if !ok {
		return fmt.Errorf("issue #%d: %w", number, ErrNotFound)
	}
	issue.State = state
	f.writes = append(f.writes, fmt.Sprintf("state %d %s", number, state))
	return nil
}

func (f *fakeTarget) CreateComment(ctx context.Context, number int, body string) error {
	f.comments[number] = append(f.comments[number], body)
	f.writes = append(f.writes, fmt.Sprintf("comment %d", number))
	return nil
}

func (f *fakeTarget) LockIssue(ctx context.Context, number int) error {
	issue, ok := f.issues[number]
	if !ok {
		return fmt.Errorf("issue #%d: %w", number, ErrNotFound)
	}
	issue.Locked = true
	f.writes = append(f.writes, fmt.Sprintf("lock %d", number))
	return nil
}

func newTestReconciler(target Target) *Reconciler {
	return NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
}

// TestReconcileCreatesNewIssue covers the absent-record path: a NEW bug
// with no existing issue is created open, receives no state-change
// comment, and ends up locked.
func TestReconcileCreatesNewIssue(t *testing.T) {
	target := newFakeTarget(5)
	r := newTestReconciler(target)

	rec := &Record{ID: 5, Title: "New bug", Product: "clang", Component: "driver", Status: "NEW"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !outcome.Created {
		t.Error("Expected issue to be created")
	}
	if outcome.StateChanged {
		t.Error("Expected no state change for an open bug")
	}
	if !outcome.Locked {
		t.Error("Expected issue to be locked")
	}
	if len(target.comments[5]) != 0 {
		t.Errorf("Expected no comments, got %v", target.comments[5])
	}

	issue := target.issues[5]
	if issue == nil {
		t.Fatal("Issue 5 was not created")
	}
	if issue.State != StateOpen {
		t.Errorf("Expected created issue to be open, got %s", issue.State)
	}
	if !issue.Locked {
		t.Error("Expected issue 5 to be locked")
	}
}

// TestReconcileUpdatesAndCloses covers the stale-issue path: existing open
// issue with outdated content for a RESOLVED/FIXED bug gets its content
// updated, a closing comment, a close, and a lock.
func TestReconcileUpdatesAndCloses(t *testing.T) {
	target := newFakeTarget(0)
	target.issues[7] = &Issue{
		Number: 7,
		Title:  "Old title",
		Body:   "This issue was imported from Bugzilla https://bugs.example.org/show_bug.cgi?id=7.",
		Labels: []string{"clang/driver", "BZ-STATUS: RESOLVED", "BZ-RESOLUTION: FIXED", "imported from bugzilla"},
		State:  StateOpen,
	}
	r := newTestReconciler(target)

	rec := &Record{ID: 7, Title: "Fixed bug", Product: "clang", Component: "driver", Status: "RESOLVED", Resolution: "FIXED"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if outcome.Created {
		t.Error("Expected no creation for an existing issue")
	}
	if !outcome.ContentUpdated {
		t.Error("Expected content update for the stale title")
	}
	if !outcome.StateChanged || outcome.FinalState != StateClosed {
		t.Errorf("Expected transition to closed, got stateChanged=%v finalState=%s", outcome.StateChanged, outcome.FinalState)
	}
	if !outcome.Locked {
		t.Error("Expected lock")
	}

	comments := target.comments[7]
	if len(comments) != 1 {
		t.Fatalf("Expected exactly one comment, got %d", len(comments))
	}
	want := "Closing issue because Bugzilla bug 7 is RESOLVED with resolution FIXED."
	if comments[0] != want {
		t.Errorf("Expected comment %q, got %q", want, comments[0])
	}
	if target.issues[7].State != StateClosed {
		t.Errorf("Expected issue closed, got %s", target.issues[7].State)
	}
}

// TestReconcileAlreadySynced covers the no-op path: zero write calls when
// the issue already matches its record.
func TestReconcileAlreadySynced(t *testing.T) {
	target := newFakeTarget(0)
	target.issues[9] = &Issue{
		Number: 9,
		Title:  "Synced bug",
		Body:   "This issue was imported from Bugzilla https://bugs.example.org/show_bug.cgi?id=9.",
		Labels: []string{"clang/driver", "BZ-STATUS: RESOLVED", "BZ-RESOLUTION: FIXED", "imported from bugzilla"},
		State:  StateClosed,
		Locked: true,
	}
	r := newTestReconciler(target)

	rec := &Record{ID: 9, Title: "Synced bug", Product: "clang", Component: "driver", Status: "RESOLVED", Resolution: "FIXED"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !outcome.Unchanged() {
		t.Errorf("Expected zero writes, got outcome %+v", outcome)
	}
	if len(target.writes) != 0 {
		t.Errorf("Expected no write calls, got %v", target.writes)
	}
}

// TestReconcileIdempotent verifies that a second run over unchanged data
// issues no writes at all: no update, no duplicate comment, no second lock.
func TestReconcileIdempotent(t *testing.T) {
	target := newFakeTarget(11)
	r := newTestReconciler(target)

	rec := &Record{ID: 11, Title: "Fixed bug", Product: "llvm", Component: "codegen", Status: "RESOLVED", Resolution: "FIXED"}

	if _, err := r.Reconcile(context.Background(), rec); err != nil {
		t.Fatalf("First reconcile failed: %v", err)
	}
	firstWrites := len(target.writes)
	firstComments := len(target.comments[11])

	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Second reconcile failed: %v", err)
	}

	if !outcome.Unchanged() {
		t.Errorf("Expected second run to be a no-op, got %+v", outcome)
	}
	if len(target.writes) != firstWrites {
		t.Errorf("Expected no new writes on second run, got %v", target.writes[firstWrites:])
	}
	if len(target.comments[11]) != firstComments {
		t.Errorf("Expected no duplicate comments, got %v", target.comments[11])
	}
}

// TestReconcileLabelOrderInsensitive verifies that a label-order-only
// difference does not trigger an update.
func TestReconcileLabelOrderInsensitive(t *testing.T) {
	target := newFakeTarget(0)
	target.issues[3] = &Issue{
		Number: 3,
		Title:  "Bug",
		Body:   "This issue was imported from Bugzilla https://bugs.example.org/show_bug.cgi?id=3.",
		Labels: []string{"imported from bugzilla", "BZ-STATUS: NEW", "clang/driver"},
		State:  StateOpen,
		Locked: true,
	}
	r := newTestReconciler(target)

	rec := &Record{ID: 3, Title: "Bug", Product: "clang", Component: "driver", Status: "NEW"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if outcome.ContentUpdated {
		t.Error("Expected label order difference to not trigger an update")
	}
	if len(target.writes) != 0 {
		t.Errorf("Expected no write calls, got %v", target.writes)
	}
}

// TestReconcileReopens covers the reverse transition: a closed issue whose
// bug went back to REOPENED is commented and re-opened.
func TestReconcileReopens(t *testing.T) {
	target := newFakeTarget(0)
	target.issues[4] = &Issue{
		Number: 4,
		Title:  "Bug",
		Body:   "This issue was imported from Bugzilla https://bugs.example.org/show_bug.cgi?id=4.",
		Labels: []string{"clang/driver", "BZ-STATUS: REOPENED", "imported from bugzilla"},
		State:  StateClosed,
	}
	r := newTestReconciler(target)

	rec := &Record{ID: 4, Title: "Bug", Product: "clang", Component: "driver", Status: "REOPENED"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !outcome.StateChanged || outcome.FinalState != StateOpen {
		t.Errorf("Expected re-open, got %+v", outcome)
	}
	comments := target.comments[4]
	if len(comments) != 1 {
		t.Fatalf("Expected one comment, got %d", len(comments))
	}
	want := "Re-opening issue because Bugzilla bug 4 is REOPENED."
	if comments[0] != want {
		t.Errorf("Expected comment %q, got %q", want, comments[0])
	}
}

// TestReconcileNumberingDivergence verifies the mapping guard: if GitHub
// hands out a different issue number than the bug id, the run aborts.
func TestReconcileNumberingDivergence(t *testing.T) {
	target := newFakeTarget(6) // bug 5 would become issue 6
	r := newTestReconciler(target)

	rec := &Record{ID: 5, Title: "Bug", Product: "clang", Component: "driver", Status: "NEW"}
	_, err := r.Reconcile(context.Background(), rec)
	if err == nil {
		t.Fatal("Expected fatal error on issue numbering divergence")
	}
}

// TestReconcileSkipsLockWhenDisabled verifies the lock step is skipped
// entirely when locking is off.
func TestReconcileSkipsLockWhenDisabled(t *testing.T) {
	target := newFakeTarget(2)
	r := NewReconciler(target, newTestExecutor(10), testDeriver(), false, false, false)

	rec := &Record{ID: 2, Title: "Bug", Product: "clang", Component: "driver", Status: "NEW"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if outcome.Locked {
		t.Error("Expected no lock when locking is disabled")
	}
	if target.issues[2].Locked {
		t.Error("Expected issue to remain unlocked")
	}
}

// TestReconcileDryRunWritesNothing verifies dry-run mode performs only
// reads.
func TestReconcileDryRunWritesNothing(t *testing.T) {
	target := newFakeTarget(8)
	r := NewReconciler(target, newTestExecutor(10), testDeriver(), true, true, false)

	rec := &Record{ID: 8, Title: "Bug", Product: "clang", Component: "driver", Status: "RESOLVED", Resolution: "FIXED"}
	outcome, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(target.writes) != 0 {
		t.Errorf("Expected dry run to issue no writes, got %v", target.writes)
	}
	// The outcome still reports what would have happened.
	if !outcome.Created || !outcome.StateChanged || !outcome.Locked {
		t.Errorf("Expected dry-run outcome to report intended actions, got %+v", outcome)
	}
}
