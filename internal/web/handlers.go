package web

import (
	"bytes"
	"errors"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/pfrederiksen/sugarfit-crawler/internal/calendar"
	"github.com/pfrederiksen/sugarfit-crawler/internal/export"
	"github.com/pfrederiksen/sugarfit-crawler/internal/filter"
	"github.com/pfrederiksen/sugarfit-crawler/internal/logger"
	"github.com/pfrederiksen/sugarfit-crawler/internal/scraper"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
	"github.com/pfrederiksen/sugarfit-crawler/internal/spreadsheet"
)

const (
	fetchFailureMessage  = "Failed to retrieve the page"
	malformedPageMessage = "Could not find the JSON data in the HTML source."
)

// pageView is everything the index template renders
type pageView struct {
	Title           string
	Error           string
	Filter          filter.Filter
	Options         filter.Options
	Columns         []string
	Rows            []session.Row
	Total           int
	SpreadsheetLink template.HTML
	CalendarLink    template.HTML
	CalendarError   string
}

// SessionsResponse is the body of /api/sessions
type SessionsResponse struct {
	FetchedAt time.Time     `json:"fetched_at"`
	Filter    filter.Filter `json:"filter"`
	Count     int           `json:"count"`
	Rows      []session.Row `json:"rows"`
}

// filterFromQuery reads the selections; reset wins over everything else
func filterFromQuery(c *fiber.Ctx) *filter.Filter {
	f := filter.NewFilter()
	if c.Query("reset") != "" {
		return f
	}
	f.Date = utils.CopyString(c.Query("date"))
	f.Trainer = utils.CopyString(c.Query("trainer"))
	f.ClassTitle = utils.CopyString(c.Query("class"))
	return f
}

// sourceMessage returns the visitor-facing text for a source error, or "" if
// err did not come from the page itself
func sourceMessage(err error) string {
	switch {
	case errors.Is(err, scraper.ErrFetchFailure):
		return fetchFailureMessage
	case errors.Is(err, scraper.ErrMalformedPage):
		return malformedPageMessage
	}
	return ""
}

// fetch loads a fresh dataset, mapping source errors to 502
func fetch(c *fiber.Ctx, fetcher Fetcher) (*session.Dataset, error) {
	ds, err := fetcher.FetchDataset(c.UserContext())
	if err != nil {
		if msg := sourceMessage(err); msg != "" {
			return nil, fiber.NewError(fiber.StatusBadGateway, msg+": "+err.Error())
		}
		return nil, err
	}
	return ds, nil
}

func handleIndex(fetcher Fetcher, page *template.Template) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger.IncrCounter("http.index")

		f := filterFromQuery(c)
		view := pageView{
			Title:   Title,
			Filter:  *f,
			Columns: session.Columns(),
		}

		ds, err := fetcher.FetchDataset(c.UserContext())
		if err != nil {
			msg := sourceMessage(err)
			if msg == "" {
				return err
			}
			logger.Warn("Schedule unavailable", logger.Fields{"error": err.Error()})
			view.Error = msg
			return render(c.Status(fiber.StatusBadGateway), page, view)
		}

		rows := ds.Rows()
		view.Total = len(rows)
		view.Options = filter.OptionsFor(rows)
		view.Rows = f.Apply(rows)

		workbook, err := spreadsheet.Build(rows)
		if err != nil {
			return err
		}
		view.SpreadsheetLink = export.SpreadsheetLink(workbook).HTML()
		logExport("xlsx", len(rows), len(workbook))

		ics, err := calendar.GenerateICS(view.Rows, Title)
		if err != nil {
			logger.Error("Failed to build calendar", logger.Fields{"filter": f.String()}, err)
			view.CalendarError = "Could not build the calendar file: " + err.Error()
		} else {
			view.CalendarLink = export.CalendarLink([]byte(ics)).HTML()
			logExport("ics", len(view.Rows), len(ics))
		}

		return render(c, page, view)
	}
}

// logExport counts and logs one produced artifact
func logExport(format string, rows, size int) {
	logger.IncrCounter("export." + format)
	logger.Info("Built export", logger.Fields{"format": format, "rows": rows, "bytes": size})
}

func render(c *fiber.Ctx, page *template.Template, view pageView) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// handleSpreadsheet serves the full dataset; filters do not apply
func handleSpreadsheet(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := fetch(c, fetcher)
		if err != nil {
			return err
		}

		rows := ds.Rows()
		workbook, err := spreadsheet.Build(rows)
		if err != nil {
			return err
		}
		logExport("xlsx", len(rows), len(workbook))

		c.Attachment(export.SpreadsheetFilename)
		c.Set(fiber.HeaderContentType, export.SpreadsheetMIME)
		return c.Send(workbook)
	}
}

// handleCalendar serves the filtered view
func handleCalendar(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := fetch(c, fetcher)
		if err != nil {
			return err
		}

		view := filterFromQuery(c).Apply(ds.Rows())
		ics, err := calendar.GenerateICS(view, Title)
		if err != nil {
			return err
		}
		logExport("ics", len(view), len(ics))

		c.Attachment(export.CalendarFilename)
		c.Set(fiber.HeaderContentType, export.CalendarMIME)
		return c.SendString(ics)
	}
}

func handleSessions(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := fetch(c, fetcher)
		if err != nil {
			return err
		}

		f := filterFromQuery(c)
		rows := f.Apply(ds.Rows())
		return c.JSON(SessionsResponse{
			FetchedAt: ds.FetchedAt,
			Filter:    *f,
			Count:     len(rows),
			Rows:      rows,
		})
	}
}

func handleOptions(fetcher Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := fetch(c, fetcher)
		if err != nil {
			return err
		}
		return c.JSON(filter.OptionsFor(ds.Rows()))
	}
}
