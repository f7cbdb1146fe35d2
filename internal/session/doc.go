// Package session provides the schedule data model for the studio crawler.
//
// A Raw value is one session entry exactly as the studio site embeds it in its
// page payload. NewRow flattens a Raw entry into a display-ready Row with the
// derived duration, headcount stamp and slot availability. Rows are values:
// once built they are never mutated, and a Dataset groups the rows of one fetch
// together with the wall-clock time they were stamped with.
package session
