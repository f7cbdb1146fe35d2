// Package filter narrows a schedule to the sessions a visitor picked.
//
// A Filter holds up to three selections: a scheduled date, a trainer and a
// class title. Each non-empty selection must match its column exactly, and all
// active selections must hold at once. Filtering never touches the input; it
// returns a new view.
//
// Options lists the values a selector can offer: the distinct values of each
// column in first-seen order, led by an empty "no filter" entry.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.Trainer = "Doe Jane"
//	view := f.Apply(ds.Rows())
//
//	f.Reset()
//	all := f.Apply(ds.Rows())
package filter

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
	"github.com/samber/lo"
)

// Filter represents the active selections. Empty means no constraint.
type Filter struct {
	Date       string `json:"date,omitempty"`
	Trainer    string `json:"trainer,omitempty"`
	ClassTitle string `json:"class_title,omitempty"`
}

// NewFilter creates a filter with no active selection
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty reports whether the filter would match every row
func (f *Filter) IsEmpty() bool {
	return f.Date == "" && f.Trainer == "" && f.ClassTitle == ""
}

// Reset clears all three selections
func (f *Filter) Reset() {
	*f = Filter{}
}

// Matches reports whether a row satisfies every active selection
func (f *Filter) Matches(row session.Row) bool {
	if f.Date != "" && row.ScheduledDate != f.Date {
		return false
	}
	if f.Trainer != "" && row.TrainerName != f.Trainer {
		return false
	}
	if f.ClassTitle != "" && row.ClassTitle != f.ClassTitle {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order. The result never
// shares its backing array with rows.
func (f *Filter) Apply(rows []session.Row) []session.Row {
	if f.IsEmpty() {
		return append([]session.Row{}, rows...)
	}

	return lo.Filter(rows, func(row session.Row, _ int) bool {
		return f.Matches(row)
	})
}

// String returns a human-readable description of the active selections
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string
	if f.Date != "" {
		parts = append(parts, fmt.Sprintf("Date: %s", f.Date))
	}
	if f.Trainer != "" {
		parts = append(parts, fmt.Sprintf("Trainer: %s", f.Trainer))
	}
	if f.ClassTitle != "" {
		parts = append(parts, fmt.Sprintf("Class: %s", f.ClassTitle))
	}

	return strings.Join(parts, " | ")
}

// Clone returns an independent copy
func (f *Filter) Clone() *Filter {
	clone := *f
	return &clone
}
