// Author: Sachindu Nethmin
// GitHub: https://github.com/Sachindu-Nethmin
// Created: 2026-03-06
// Last Modified: 2026-03-12

package migrate

import (
	"context"
	"fmt"
	"log"
)

// Paginator walks the source record space in fixed-size, contiguous id
// ranges starting from a resumable cursor. Ids that do not exist in the
// source are holes inside a batch, not an end-of-data signal; the end is
// reported explicitly as ErrExhausted once the cursor passes the source's
// last record id.
type Paginator struct {
	source    Source
	cursor    int
	batchSize int

	lastID      int
	lastIDKnown bool
}

// NewPaginator creates a paginator resuming from startID.
func NewPaginator(source Source, startID, batchSize int) *Paginator {
	return &Paginator{
		source:    source,
		cursor:    startID,
		batchSize: batchSize,
	}
}

// NextBatch fetches records for [cursor, cursor+batchSize) and advances
// the cursor. A batch may be empty when every id in the range is a hole.
// Returns ErrExhausted once the cursor is past the last record id,
// re-confirming the last id first so bugs filed during the run are not
// missed. Any fetch failure is fatal.
func (p *Paginator) NextBatch(ctx context.Context) ([]*Record, error) {
	if !p.lastIDKnown {
		if err := p.refreshLastID(ctx); err != nil {
			return nil, err
		}
	}

	if p.cursor > p.lastID {
		if err := p.refreshLastID(ctx); err != nil {
			return nil, err
		}
		if p.cursor > p.lastID {
			return nil, fmt.Errorf("no records at or above id %d (last is %d): %w", p.cursor, p.lastID, ErrExhausted)
		}
	}

	start := p.cursor
	records, err := p.source.GetRecordRange(ctx, start, p.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records %d-%d: %w", start, start+p.batchSize-1, err)
	}

	p.cursor += p.batchSize
	return records, nil
}

// Cursor returns the id the next batch will start from.
func (p *Paginator) Cursor() int {
	return p.cursor
}

func (p *Paginator) refreshLastID(ctx context.Context) error {
	lastID, err := p.source.LastRecordID(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine last record id: %w", err)
	}
	p.lastID = lastID
	p.lastIDKnown = true
	log.Printf("[paginator] last record id is %d", lastID)
	return nil
}
