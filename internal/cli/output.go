package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/filter"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatXLSX OutputFormat = "xlsx"
	FormatICS  OutputFormat = "ics"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON, FormatXLSX, FormatICS:
		return format, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json', 'xlsx' or 'ics')", s)
}

// IsArtifact reports whether the format produces a downloadable file
func (f OutputFormat) IsArtifact() bool {
	return f == FormatXLSX || f == FormatICS
}

// OutputResult contains data to be output
type OutputResult struct {
	FetchedAt time.Time     `json:"fetched_at"`
	Filter    filter.Filter `json:"filter"`
	Rows      []session.Row `json:"rows"`
	RowCount  int           `json:"row_count"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	if result.Rows == nil {
		result.Rows = []session.Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text, grouped by date
func writeText(w io.Writer, result *OutputResult) error {
	if result.RowCount == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}

	if !result.Filter.IsEmpty() {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter.String())
	}

	lastDate := ""
	for _, row := range result.Rows {
		if row.ScheduledDate != lastDate {
			fmt.Fprintf(w, "\n%s\n", row.ScheduledDate)
			lastDate = row.ScheduledDate
		}
		fmt.Fprintf(w, "  %s-%s  %s (%s)\n", row.StartTime, row.EndTime, row.ClassTitle, row.TrainerName)
		fmt.Fprintf(w, "       %s, %s, slots: %s\n", row.ClassLocation, row.LengthOfClass, row.AvailableSlots)
	}

	fmt.Fprintf(w, "\nTotal: %d sessions\n", result.RowCount)
	return nil
}
