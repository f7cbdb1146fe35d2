package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/sugarfit-crawler/internal/logger"
	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

const (
	ScheduleURL = "https://www.sugarfitness.hu/"
	UserAgent   = "sugarfit-crawler/1.0 (github.com/pfrederiksen/sugarfit-crawler)"
	Timeout     = 30 * time.Second

	payloadSelector = `script[type="application/json"]`
)

var (
	// ErrFetchFailure is returned when the page cannot be retrieved
	ErrFetchFailure = errors.New("fetch failure")
	// ErrMalformedPage is returned when the page has no usable JSON payload
	ErrMalformedPage = errors.New("malformed page")
)

// Scraper handles fetching and parsing the schedule page
type Scraper struct {
	client *http.Client
	url    string
	now    func() time.Time
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL points the scraper at a different page
func WithURL(url string) Option {
	return func(s *Scraper) {
		s.url = url
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithClock replaces the wall clock used to stamp datasets
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		s.now = now
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url: ScheduleURL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the page the scraper reads
func (s *Scraper) URL() string {
	return s.url
}

// FetchSessions retrieves the page and returns the raw session entries in
// page order.
func (s *Scraper) FetchSessions(ctx context.Context) ([]session.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching page: %v", ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrFetchFailure, resp.StatusCode)
	}
	logger.Debug("Fetched page", logger.Fields{"url": s.url, "status": resp.StatusCode})

	return parseSessions(resp.Body)
}

// FetchDataset retrieves the page and flattens every session into a row.
// Each call fetches again; nothing is cached between calls.
func (s *Scraper) FetchDataset(ctx context.Context) (*session.Dataset, error) {
	started := time.Now()

	raws, err := s.FetchSessions(ctx)
	if err != nil {
		logger.IncrCounter("fetch.failure")
		logger.Error("Schedule fetch failed", logger.Fields{"url": s.url}, err)
		return nil, err
	}

	ds, err := session.Transform(raws, s.now())
	if err != nil {
		logger.IncrCounter("fetch.failure")
		logger.Error("Schedule transform failed", logger.Fields{"url": s.url, "sessions": len(raws)}, err)
		return nil, err
	}

	elapsed := time.Since(started)
	logger.IncrCounter("fetch.success")
	logger.SetGauge("dataset.rows", float64(ds.Len()))
	logger.RecordTiming("fetch.duration", elapsed)
	logger.Info("Fetched schedule", logger.Fields{
		"url":         s.url,
		"rows":        ds.Len(),
		"duration_ms": elapsed.Milliseconds(),
	})

	return ds, nil
}

// pagePayload mirrors the part of the embedded state we depend on. Pointers
// distinguish a missing key from an empty value.
type pagePayload struct {
	Props *struct {
		PageProps *struct {
			Sessions *[]session.Raw `json:"sessions"`
		} `json:"pageProps"`
	} `json:"props"`
}

// parseSessions extracts the session list from the page HTML
func parseSessions(r io.Reader) ([]session.Raw, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrMalformedPage, err)
	}

	script := doc.Find(payloadSelector).First()
	if script.Length() == 0 {
		return nil, fmt.Errorf("%w: could not find the JSON data in the HTML source", ErrMalformedPage)
	}

	body := strings.TrimSpace(script.Text())
	if body == "" {
		return nil, fmt.Errorf("%w: JSON element is empty", ErrMalformedPage)
	}

	return decodePayload([]byte(body))
}

// decodePayload validates the props.pageProps.sessions path and decodes it
func decodePayload(data []byte) ([]session.Raw, error) {
	var payload pagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedPage, err)
		}
		if errors.Is(err, session.ErrSchemaMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", session.ErrSchemaMismatch, err)
	}

	switch {
	case payload.Props == nil:
		return nil, fmt.Errorf("%w: props is missing", session.ErrSchemaMismatch)
	case payload.Props.PageProps == nil:
		return nil, fmt.Errorf("%w: props.pageProps is missing", session.ErrSchemaMismatch)
	case payload.Props.PageProps.Sessions == nil:
		return nil, fmt.Errorf("%w: props.pageProps.sessions is missing", session.ErrSchemaMismatch)
	}

	return *payload.Props.PageProps.Sessions, nil
}
