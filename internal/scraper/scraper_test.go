package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
)

const samplePayload = `{
	"props": {
		"pageProps": {
			"sessions": [
				{
					"class": {"title": "Spinning", "difficulty": "Intermediate", "category": "Cardio"},
					"trainer": {"first_name": "Jane", "last_name": "Doe", "gender": "female", "position": "Coach"},
					"location": {"title": "Cycle Room"},
					"start": "2024-03-01T09:00:00",
					"end": "2024-03-01T09:45:00",
					"date": "2024-03-01T00:00:00",
					"max_headcount": 10,
					"current_headcount": 10
				},
				{
					"class": {"title": "Yoga", "difficulty": "Beginner", "category": "Mind"},
					"trainer": {"first_name": "Anna", "last_name": "Kovacs"},
					"location": "Studio 2",
					"start": "2024-03-01T18:00:00",
					"end": "2024-03-01T19:00:00",
					"date": "2024-03-01T00:00:00",
					"max_headcount": 15,
					"current_headcount": 9
				}
			]
		},
		"page": "/"
	}
}`

func pageWith(payload string) string {
	return `<html><head><title>Schedule</title></head><body>
		<div id="__next"><p>Loading</p></div>
		<script id="__NEXT_DATA__" type="application/json">` + payload + `</script>
	</body></html>`
}

func TestFetchSessions(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		statusCode int
		wantErr    error
		wantCount  int
	}{
		{
			name:       "successful fetch",
			body:       pageWith(samplePayload),
			statusCode: http.StatusOK,
			wantCount:  2,
		},
		{
			name:       "not found",
			body:       "",
			statusCode: http.StatusNotFound,
			wantErr:    ErrFetchFailure,
		},
		{
			name:       "server error",
			body:       pageWith(samplePayload),
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrFetchFailure,
		},
		{
			name:       "page without payload",
			body:       `<html><body><p>Maintenance</p></body></html>`,
			statusCode: http.StatusOK,
			wantErr:    ErrMalformedPage,
		},
		{
			name:       "empty session list",
			body:       pageWith(`{"props": {"pageProps": {"sessions": []}}}`),
			statusCode: http.StatusOK,
			wantCount:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "sugarfit-crawler") {
					t.Errorf("User-Agent = %q, should contain 'sugarfit-crawler'", userAgent)
				}
				if r.Method != http.MethodGet {
					t.Errorf("Method = %s, want GET", r.Method)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := New(WithURL(server.URL))
			sessions, err := s.FetchSessions(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FetchSessions() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchSessions() unexpected error: %v", err)
			}
			if len(sessions) != tt.wantCount {
				t.Errorf("FetchSessions() returned %d sessions, want %d", len(sessions), tt.wantCount)
			}
		})
	}
}

func TestFetchSessions_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(WithURL(url)).FetchSessions(context.Background())
	if !errors.Is(err, ErrFetchFailure) {
		t.Errorf("FetchSessions() error = %v, want ErrFetchFailure", err)
	}
}

func TestFetchDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageWith(samplePayload)))
	}))
	defer server.Close()

	clock := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	s := New(WithURL(server.URL), WithClock(func() time.Time { return clock }))

	ds, err := s.FetchDataset(context.Background())
	if err != nil {
		t.Fatalf("FetchDataset() error: %v", err)
	}

	rows := ds.Rows()
	if len(rows) != 2 {
		t.Fatalf("FetchDataset() returned %d rows, want 2", len(rows))
	}

	first := rows[0]
	if first.AvailableSlots != session.NoAvailableSlots {
		t.Errorf("AvailableSlots = %q, want %q", first.AvailableSlots, session.NoAvailableSlots)
	}
	if first.LengthOfClass != "45 mins" {
		t.Errorf("LengthOfClass = %q, want 45 mins", first.LengthOfClass)
	}
	if first.ClassLocation != "Cycle Room" {
		t.Errorf("ClassLocation = %q, want Cycle Room", first.ClassLocation)
	}
	if first.Headcount != "10/10@02-28" {
		t.Errorf("Headcount = %q, want 10/10@02-28", first.Headcount)
	}

	second := rows[1]
	if second.ClassLocation != "Studio 2" || second.AvailableSlots != "6" {
		t.Errorf("second row = %+v", second)
	}
	if second.TrainerName != "Kovacs Anna" {
		t.Errorf("TrainerName = %q, want Kovacs Anna", second.TrainerName)
	}
	if !ds.FetchedAt.Equal(clock) {
		t.Errorf("FetchedAt = %v, want %v", ds.FetchedAt, clock)
	}
}

func TestFetchDataset_RefetchesEveryCall(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(pageWith(samplePayload)))
	}))
	defer server.Close()

	s := New(WithURL(server.URL))
	for i := 0; i < 3; i++ {
		if _, err := s.FetchDataset(context.Background()); err != nil {
			t.Fatalf("FetchDataset() error: %v", err)
		}
	}

	if hits != 3 {
		t.Errorf("server hit %d times, want 3", hits)
	}
}

func TestFetchDataset_SchemaMismatch(t *testing.T) {
	payload := `{"props": {"pageProps": {"sessions": [{"start": "2024-03-01T09:00:00", "end": "2024-03-01T10:00:00", "date": "2024-03-01"}]}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pageWith(payload)))
	}))
	defer server.Close()

	_, err := New(WithURL(server.URL)).FetchDataset(context.Background())
	if !errors.Is(err, session.ErrSchemaMismatch) {
		t.Errorf("FetchDataset() error = %v, want ErrSchemaMismatch", err)
	}
}

func TestParseSessions_Errors(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		wantErr error
	}{
		{"no script", `<html><body></body></html>`, ErrMalformedPage},
		{"script of wrong type", `<script type="text/javascript">var x = {}</script>`, ErrMalformedPage},
		{"empty script", `<script type="application/json">   </script>`, ErrMalformedPage},
		{"invalid JSON", `<script type="application/json">{"props": </script>`, ErrMalformedPage},
		{"missing props", pageWith(`{"query": {}}`), session.ErrSchemaMismatch},
		{"missing pageProps", pageWith(`{"props": {}}`), session.ErrSchemaMismatch},
		{"missing sessions", pageWith(`{"props": {"pageProps": {"classes": []}}}`), session.ErrSchemaMismatch},
		{"null sessions", pageWith(`{"props": {"pageProps": {"sessions": null}}}`), session.ErrSchemaMismatch},
		{"sessions not a list", pageWith(`{"props": {"pageProps": {"sessions": {"a": 1}}}}`), session.ErrSchemaMismatch},
		{"headcount not a number", pageWith(`{"props": {"pageProps": {"sessions": [{"max_headcount": "ten"}]}}}`), session.ErrSchemaMismatch},
		{"payload is a list", pageWith(`[1, 2, 3]`), session.ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSessions(strings.NewReader(tt.html))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseSessions() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSessions_FirstPayloadWins(t *testing.T) {
	html := pageWith(samplePayload) + `<script type="application/json">{"props": {"pageProps": {"sessions": []}}}</script>`

	sessions, err := parseSessions(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parseSessions() error: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("parseSessions() returned %d sessions, want 2 from the first element", len(sessions))
	}
}

func TestParseSessions_PreservesOrder(t *testing.T) {
	sessions, err := parseSessions(strings.NewReader(pageWith(samplePayload)))
	if err != nil {
		t.Fatalf("parseSessions() error: %v", err)
	}

	if sessions[0].Class.Title != "Spinning" || sessions[1].Class.Title != "Yoga" {
		t.Errorf("order = %q, %q", sessions[0].Class.Title, sessions[1].Class.Title)
	}
	if sessions[0].Location.Kind != session.LocationStructured {
		t.Errorf("first location kind = %v, want structured", sessions[0].Location.Kind)
	}
	if sessions[1].Location.Kind != session.LocationPlain {
		t.Errorf("second location kind = %v, want plain", sessions[1].Location.Kind)
	}
}

func TestNew(t *testing.T) {
	s := New()

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", s.client.Timeout, Timeout)
	}
	if s.URL() != ScheduleURL {
		t.Errorf("scraper url = %q, want %q", s.URL(), ScheduleURL)
	}
}

func TestNew_Options(t *testing.T) {
	s := New(WithURL("https://example.test/"), WithTimeout(5*time.Second))

	if s.URL() != "https://example.test/" {
		t.Errorf("url = %q", s.URL())
	}
	if s.client.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", s.client.Timeout)
	}
}
