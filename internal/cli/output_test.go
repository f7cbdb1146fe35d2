package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/filter"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" xlsx ", FormatXLSX, false},
		{"ics", FormatICS, false},
		{"csv", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteOutput_Text(t *testing.T) {
	rows := []session.Row{
		{ClassTitle: "Yoga", TrainerName: "Doe Jane", ScheduledDate: "2024/03/01 Friday", StartTime: "07:00", EndTime: "08:00",
			ClassLocation: "Studio 1", LengthOfClass: "60 mins", AvailableSlots: "10"},
		{ClassTitle: "Spinning", TrainerName: "Doe Jane", ScheduledDate: "2024/03/01 Friday", StartTime: "09:00", EndTime: "09:45",
			ClassLocation: "Cycle Room", LengthOfClass: "45 mins", AvailableSlots: session.NoAvailableSlots},
		{ClassTitle: "Yoga", TrainerName: "Roe Rick", ScheduledDate: "2024/03/02 Saturday", StartTime: "18:00", EndTime: "19:00",
			ClassLocation: "Studio 2", LengthOfClass: "60 mins", AvailableSlots: "6"},
	}

	var buf bytes.Buffer
	err := WriteOutput(&buf, &OutputResult{
		FetchedAt: time.Now(),
		Rows:      rows,
		RowCount:  len(rows),
	}, FormatText)
	if err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	out := buf.String()
	if got := strings.Count(out, "2024/03/01 Friday\n"); got != 1 {
		t.Errorf("date header printed %d times, want 1", got)
	}
	if strings.Contains(out, "Filter:") {
		t.Error("empty filter should not be printed")
	}
	if !strings.Contains(out, "Total: 3 sessions") {
		t.Errorf("missing total:\n%s", out)
	}
}

func TestWriteOutput_Empty(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "No sessions found.\n"},
		{FormatJSON, `"rows": []`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			result := &OutputResult{Filter: filter.Filter{ClassTitle: "Boxing"}}
			if err := WriteOutput(&buf, result, tt.format); err != nil {
				t.Fatalf("WriteOutput() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, &OutputResult{}, FormatXLSX); err == nil {
		t.Error("expected error for artifact format")
	}
}
