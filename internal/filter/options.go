package filter

import (
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
	"github.com/samber/lo"
)

// Options are the choices offered by the three selectors. Every list starts
// with "" meaning no filter.
type Options struct {
	Dates       []string `json:"dates"`
	Trainers    []string `json:"trainers"`
	ClassTitles []string `json:"class_titles"`
}

// OptionsFor derives the selector choices from the full dataset
func OptionsFor(rows []session.Row) Options {
	return Options{
		Dates:       distinct(rows, func(r session.Row) string { return r.ScheduledDate }),
		Trainers:    distinct(rows, func(r session.Row) string { return r.TrainerName }),
		ClassTitles: distinct(rows, func(r session.Row) string { return r.ClassTitle }),
	}
}

// distinct returns "" followed by the non-empty values of a column in
// first-occurrence order. Empty values are folded into the leading "".
func distinct(rows []session.Row, column func(session.Row) string) []string {
	values := lo.Uniq(lo.Map(rows, func(r session.Row, _ int) string { return column(r) }))
	return append([]string{""}, lo.Compact(values)...)
}
