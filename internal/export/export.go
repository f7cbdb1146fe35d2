// Package export wraps generated artifacts in inline download links.
//
// A Link embeds the artifact as a base64 data URI, so a page can offer the
// download without a second round trip. Links are pure values: the same bytes
// always produce the same markup.
package export

import (
	"encoding/base64"
	"fmt"
	"html"
	"html/template"
)

const (
	SpreadsheetFilename = "extract.xlsx"
	SpreadsheetMIME     = "application/octet-stream"
	CalendarFilename    = "calendar.ics"
	CalendarMIME        = "text/calendar"
)

// Link is an embeddable download of one artifact
type Link struct {
	Filename string
	MIMEType string
	Label    string
	Data     []byte
}

// SpreadsheetLink wraps workbook bytes
func SpreadsheetLink(data []byte) Link {
	return Link{
		Filename: SpreadsheetFilename,
		MIMEType: SpreadsheetMIME,
		Label:    "Download Excel file",
		Data:     data,
	}
}

// CalendarLink wraps calendar bytes
func CalendarLink(data []byte) Link {
	return Link{
		Filename: CalendarFilename,
		MIMEType: CalendarMIME,
		Label:    "Download Calendar file",
		Data:     data,
	}
}

// DataURI returns the artifact as a base64 data URI
func (l Link) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", l.MIMEType, base64.StdEncoding.EncodeToString(l.Data))
}

// String renders the anchor element
func (l Link) String() string {
	return fmt.Sprintf(`<a href="%s" download="%s">%s</a>`,
		l.DataURI(), html.EscapeString(l.Filename), html.EscapeString(l.Label))
}

// HTML renders the anchor element for use in html/template
func (l Link) HTML() template.HTML {
	return template.HTML(l.String())
}
