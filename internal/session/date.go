package session

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout renders Scheduled Date, e.g. "2024/03/01 Friday"
	DateLayout = "2006/01/02 Monday"
	// ClockLayout renders Start Time and End Time
	ClockLayout = "15:04"
	// StampLayout renders the fetch date inside Headcount
	StampLayout = "01-02"
)

// instantLayouts are tried in order. Layouts without an offset yield UTC
// values whose wall clock equals the published text.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 instant as published by the site.
// The returned time keeps the offset it was published with, so formatting it
// reproduces the site's wall clock.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty instant", ErrSchemaMismatch)
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised instant %q", ErrSchemaMismatch, value)
}
