// Package web serves the schedule as a filterable page.
//
// Every request fetches the schedule again; nothing is cached between
// requests. The page offers three selectors (date, trainer, class title), a
// reset control, the filtered table and two download links. The spreadsheet
// link always carries the full schedule while the calendar link carries the
// filtered view. The same artifacts are also served as plain downloads and
// the rows as JSON.
package web
