// Package calendar renders a schedule as an iCalendar (.ics) document.
//
// Every row becomes one VEVENT. Rows only carry a civil date and wall-clock
// times, so they are interpreted in the studio's time zone (Europe/Budapest)
// and written with a TZID parameter backed by a VTIMEZONE definition.
package calendar

import (
	"crypto/sha1"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

const (
	TimeZone = "Europe/Budapest"
	ProdID   = "-//Sugarfit Crawler//sugarfit-crawler//EN"
	UIDHost  = "sugarfitness.hu"

	rowLayout  = session.DateLayout + " " + session.ClockLayout
	localStamp = "20060102T150405"
	maxOctets  = 75
)

// ErrDateParse is returned when a row's date or time cannot be read
var ErrDateParse = errors.New("date parse error")

// timeNow is a variable for testability
var timeNow = time.Now

var loadZone = sync.OnceValues(func() (*time.Location, error) {
	return time.LoadLocation(TimeZone)
})

// Event is one calendar entry built from a row
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// NewEvent interprets a row in the studio time zone. A class whose end time
// is earlier than its start time is taken to finish the next day.
func NewEvent(row session.Row, loc *time.Location) (Event, error) {
	start, err := time.ParseInLocation(rowLayout, row.ScheduledDate+" "+row.StartTime, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%w: start of %q: %v", ErrDateParse, row.ClassTitle, err)
	}
	end, err := time.ParseInLocation(rowLayout, row.ScheduledDate+" "+row.EndTime, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%w: end of %q: %v", ErrDateParse, row.ClassTitle, err)
	}
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
	}

	return Event{
		Summary:     row.ClassTitle,
		Description: fmt.Sprintf("Trainer: %s", row.TrainerName),
		Location:    row.ClassLocation,
		Start:       start,
		End:         end,
	}, nil
}

// Events converts every row, failing on the first unreadable one
func Events(rows []session.Row) ([]Event, error) {
	loc, err := loadZone()
	if err != nil {
		return nil, fmt.Errorf("loading time zone %s: %w", TimeZone, err)
	}

	events := make([]Event, 0, len(rows))
	for i, row := range rows {
		evt, err := NewEvent(row, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		evt.UID = generateUID(i, row)
		events = append(events, evt)
	}
	return events, nil
}

// GenerateICS generates one calendar document holding an event per row.
// calendarName is optional.
func GenerateICS(rows []session.Row, calendarName string) (string, error) {
	events, err := Events(rows)
	if err != nil {
		return "", err
	}

	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProdID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if calendarName != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(calendarName))
	}
	writeLine(&ics, "X-WR-TIMEZONE:"+TimeZone)
	writeTimeZone(&ics)

	stamp := formatICSTime(timeNow())
	for _, evt := range events {
		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, "UID:"+evt.UID)
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, fmt.Sprintf("DTSTART;TZID=%s:%s", TimeZone, evt.Start.Format(localStamp)))
		writeLine(&ics, fmt.Sprintf("DTEND;TZID=%s:%s", TimeZone, evt.End.Format(localStamp)))
		writeLine(&ics, "SUMMARY:"+escapeICS(evt.Summary))
		writeLine(&ics, "DESCRIPTION:"+escapeICS(evt.Description))
		writeLine(&ics, "LOCATION:"+escapeICS(evt.Location))
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")

	return ics.String(), nil
}

// writeTimeZone emits the Central European rules in force since 1996
func writeTimeZone(ics *strings.Builder) {
	for _, line := range []string{
		"BEGIN:VTIMEZONE",
		"TZID:" + TimeZone,
		"BEGIN:DAYLIGHT",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0200",
		"TZNAME:CEST",
		"DTSTART:19700329T020000",
		"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
		"END:DAYLIGHT",
		"BEGIN:STANDARD",
		"TZOFFSETFROM:+0200",
		"TZOFFSETTO:+0100",
		"TZNAME:CET",
		"DTSTART:19701025T030000",
		"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
		"END:STANDARD",
		"END:VTIMEZONE",
	} {
		writeLine(ics, line)
	}
}

// generateUID derives a stable identifier from the row's position and content
func generateUID(index int, row session.Row) string {
	h := sha1.New()
	h.Write([]byte(fmt.Sprintf("%d|%s", index, strings.Join(row.Values()[:7], "|"))))
	return fmt.Sprintf("%x@%s", h.Sum(nil), UIDHost)
}

// writeLine folds a content line at 75 octets and terminates it with CRLF
func writeLine(ics *strings.Builder, line string) {
	limit := maxOctets
	for len(line) > limit {
		cut := limit
		// Never split a UTF-8 sequence
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
		limit = maxOctets - 1
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
