package session

import (
	"fmt"
	"time"
)

// Dataset is the immutable result of one fetch
type Dataset struct {
	FetchedAt time.Time
	rows      []Row
}

// NewDataset wraps rows produced at fetchedAt. The slice is copied.
func NewDataset(rows []Row, fetchedAt time.Time) *Dataset {
	return &Dataset{
		FetchedAt: fetchedAt,
		rows:      append([]Row(nil), rows...),
	}
}

// Transform flattens every raw session, preserving order. A single bad entry
// fails the whole batch.
func Transform(raws []Raw, now time.Time) (*Dataset, error) {
	rows := make([]Row, 0, len(raws))
	for i, raw := range raws {
		row, err := NewRow(raw, now)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return &Dataset{FetchedAt: now, rows: rows}, nil
}

// Rows returns a copy of the rows in fetch order
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	return append([]Row(nil), d.rows...)
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}
