// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-07
// Last Modified: 2026-03-13

package migrate

import (
	"context"
	"errors"
	"testing"
)

func TestImporterRunToCompletion(t *testing.T) {
	src := sourceWithRange()
	src.records[1] = &Record{ID: 1, Title: "a", Product: "p", Component: "c", Status: "NEW"}
	src.records[2] = &Record{ID: 2, Title: "b", Product: "p", Component: "c", Status: "RESOLVED", Resolution: "FIXED"}
	// id 3 is a hole
	src.records[4] = &Record{ID: 4, Title: "d", Product: "p", Component: "c", Status: "NEW"}
	src.lastID = 4

	// A placeholder occupies issue number 3, keeping the target's issue
	// counter aligned with the bug ids across the hole.
	target := newFakeTarget(1)
	target.issues[3] = &Issue{Number: 3, Title: "placeholder", State: StateOpen, Locked: true}
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 2), reconciler, false)

	var seen []int
	importer.OnRecord = func(o *Outcome) { seen = append(seen, o.RecordID) }

	summary, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Processed != 3 {
		t.Errorf("Expected 3 records processed, got %d", summary.Processed)
	}
	if summary.Created != 3 {
		t.Errorf("Expected 3 issues created, got %d", summary.Created)
	}
	if summary.Closed != 1 {
		t.Errorf("Expected 1 issue closed, got %d", summary.Closed)
	}
	if summary.Locked != 3 {
		t.Errorf("Expected 3 issues locked, got %d", summary.Locked)
	}
	if summary.RunID == "" {
		t.Error("Expected a run id")
	}

	want := []int{1, 2, 4}
	if len(seen) != len(want) {
		t.Fatalf("Expected records %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Record order: expected %v, got %v", want, seen)
			break
		}
	}
}

func TestImporterFailsFast(t *testing.T) {
	src := sourceWithRange()
	src.records[1] = &Record{ID: 1, Title: "a", Product: "p", Component: "c", Status: "NEW"}
	src.records[2] = &Record{ID: 2, Title: "b", Product: "p", Component: "c", Status: "NEW"}
	src.lastID = 2

	// Counter starts at 5: the very first create diverges and must abort
	// the run before record 2 is touched.
	target := newFakeTarget(5)
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 10), reconciler, false)

	summary, err := importer.Run(context.Background())
	if err == nil {
		t.Fatal("Expected run to abort on reconciliation failure")
	}
	if summary.Processed != 0 {
		t.Errorf("Expected no records tallied, got %d", summary.Processed)
	}
	if _, ok := target.issues[2]; ok {
		t.Error("Expected record 2 to never be reconciled after the abort")
	}
}

func TestImporterSourceFailureIsFatal(t *testing.T) {
	src := sourceWithRange(1, 2)
	wantErr := errors.New("bugzilla down")
	src.rangeErr = wantErr

	target := newFakeTarget(1)
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 10), reconciler, false)

	_, err := importer.Run(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected source failure to propagate, got %v", err)
	}
}

func TestImporterCleanCompletionOnEmptySource(t *testing.T) {
	src := sourceWithRange() // lastID stays 0

	target := newFakeTarget(1)
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 10), reconciler, false)

	summary, err := importer.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected clean completion on empty source, got %v", err)
	}
	if summary.Processed != 0 {
		t.Errorf("Expected nothing processed, got %d", summary.Processed)
	}
}

func TestImporterStopsOnCancelledContext(t *testing.T) {
	src := sourceWithRange(1, 2, 3)

	target := newFakeTarget(1)
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 10), reconciler, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context cancellation to stop the run, got %v", err)
	}
}

func TestImporterResumeCursorAfterAbort(t *testing.T) {
	src := sourceWithRange()
	src.records[1] = &Record{ID: 1, Title: "t", Product: "p", Component: "c", Status: "NEW"}
	src.records[2] = &Record{ID: 2, Title: "t", Product: "p", Component: "c", Status: "NEW"}
	// Hole at 3: with nothing occupying issue number 3 on the target, the
	// create for bug 4 receives number 3 and the mapping guard aborts.
	src.records[4] = &Record{ID: 4, Title: "t", Product: "p", Component: "c", Status: "NEW"}
	src.lastID = 4

	target := newFakeTarget(1)
	reconciler := NewReconciler(target, newTestExecutor(10), testDeriver(), true, false, false)
	importer := NewImporter(NewPaginator(src, 1, 2), reconciler, false)

	summary, err := importer.Run(context.Background())
	if err == nil {
		t.Fatal("Expected numbering divergence to abort the run")
	}
	if summary.Processed != 2 {
		t.Errorf("Expected 2 records tallied before the abort, got %d", summary.Processed)
	}
	// The last fully processed batch was ids 1-2, so the resume point is 3.
	if summary.NextID != 3 {
		t.Errorf("Expected resume cursor 3 after abort, got %d", summary.NextID)
	}
}
