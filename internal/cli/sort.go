package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortByDate    SortOrder = "date"
	SortByTrainer SortOrder = "trainer"
	SortByTitle   SortOrder = "title"
)

const rowLayout = session.DateLayout + " " + session.ClockLayout

// ParseSortOrder validates a --sort value. Empty keeps page order.
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortNone, SortByDate, SortByTrainer, SortByTitle:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'date', 'trainer' or 'title')", s)
}

// sortRows returns a sorted copy of rows. Ties keep page order.
func sortRows(rows []session.Row, order SortOrder) []session.Row {
	sorted := append([]session.Row(nil), rows...)

	switch order {
	case SortByDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByTrainer:
		sort.SliceStable(sorted, func(i, j int) bool {
			if !strings.EqualFold(sorted[i].TrainerName, sorted[j].TrainerName) {
				return strings.ToLower(sorted[i].TrainerName) < strings.ToLower(sorted[j].TrainerName)
			}
			// If trainers are equal, sort by date
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			if !strings.EqualFold(sorted[i].ClassTitle, sorted[j].ClassTitle) {
				return strings.ToLower(sorted[i].ClassTitle) < strings.ToLower(sorted[j].ClassTitle)
			}
			// If titles are equal, sort by date
			return compareByDate(sorted[i], sorted[j])
		})
	}

	return sorted
}

// compareByDate compares two rows by their scheduled start.
// Returns true if row i should come before row j
func compareByDate(i, j session.Row) bool {
	startI := parseStart(i)
	startJ := parseStart(j)

	// If both dates are valid, compare them
	if !startI.IsZero() && !startJ.IsZero() {
		return startI.Before(startJ)
	}

	// If only one date is valid, put the valid one first
	if !startI.IsZero() {
		return true
	}
	if !startJ.IsZero() {
		return false
	}

	return i.ScheduledDate+i.StartTime < j.ScheduledDate+j.StartTime
}

func parseStart(row session.Row) time.Time {
	t, err := time.Parse(rowLayout, row.ScheduledDate+" "+row.StartTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
