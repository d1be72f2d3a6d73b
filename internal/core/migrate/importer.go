// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-03-07
// Last Modified: 2026-03-13

package migrate

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// Summary accumulates the results of an import run.
type Summary struct {
	RunID     string     `json:"run_id"`
	Processed int        `json:"processed"`
	Created   int        `json:"created"`
	Updated   int        `json:"updated"`
	Closed    int        `json:"closed"`
	Reopened  int        `json:"reopened"`
	Locked    int        `json:"locked"`
	Unchanged int        `json:"unchanged"`
	NextID    int        `json:"next_id"`
	Details   []*Outcome `json:"details,omitempty"`
}

// Importer drives the migration: it pulls batches from the paginator and
// reconciles each record in sequence, strictly one at a time. Any
// reconciliation failure aborts the run; records are never skipped
// silently.
type Importer struct {
	paginator  *Paginator
	reconciler *Reconciler
	verbose    bool

	// OnBatch and OnRecord, when set, receive progress notifications
	// (used by the TUI). Both are called from the run's goroutine.
	OnBatch  func(start, end int)
	OnRecord func(*Outcome)
}

// NewImporter creates an importer.
func NewImporter(paginator *Paginator, reconciler *Reconciler, verbose bool) *Importer {
	return &Importer{
		paginator:  paginator,
		reconciler: reconciler,
		verbose:    verbose,
	}
}

// Run processes batches until the source reports exhaustion (clean
// completion, nil error) or a failure occurs. The returned summary covers
// everything processed up to that point; Summary.NextID is the cursor to
// resume from after an aborted run.
func (imp *Importer) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: uuid.New().String(), NextID: imp.paginator.Cursor()}
	log.Printf("[importer] run %s starting at id %d", summary.RunID, imp.paginator.Cursor())

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		start := imp.paginator.Cursor()
		batch, err := imp.paginator.NextBatch(ctx)
		if errors.Is(err, ErrExhausted) {
			log.Printf("[importer] run %s complete: %d records processed, next id %d",
				summary.RunID, summary.Processed, summary.NextID)
			return summary, nil
		}
		if err != nil {
			return summary, err
		}

		if imp.OnBatch != nil {
			imp.OnBatch(start, imp.paginator.Cursor()-1)
		}
		if imp.verbose {
			log.Printf("[importer] batch %d-%d: %d records", start, imp.paginator.Cursor()-1, len(batch))
		}

		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			outcome, err := imp.reconciler.Reconcile(ctx, rec)
			if err != nil {
				return summary, fmt.Errorf("reconciling bug %d: %w", rec.ID, err)
			}
			imp.tally(summary, outcome)
			if imp.OnRecord != nil {
				imp.OnRecord(outcome)
			}
		}

		summary.NextID = imp.paginator.Cursor()
	}
}

func (imp *Importer) tally(summary *Summary, outcome *Outcome) {
	summary.Processed++
	summary.Details = append(summary.Details, outcome)

	if outcome.Created {
		summary.Created++
	}
	if outcome.ContentUpdated {
		summary.Updated++
	}
	if outcome.StateChanged {
		if outcome.FinalState == StateClosed {
			summary.Closed++
		} else {
			summary.Reopened++
		}
	}
	if outcome.Locked {
		summary.Locked++
	}
	if outcome.Unchanged() {
		summary.Unchanged++
	}
}
