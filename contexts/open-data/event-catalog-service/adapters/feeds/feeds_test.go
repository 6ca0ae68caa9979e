package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

func testFetcher(attempts int) HTTPFetcher {
	fetcher := NewHTTPFetcher(2*time.Second, attempts, nil)
	fetcher.InitialBackoff = time.Millisecond
	fetcher.MaxBackoff = 5 * time.Millisecond
	return fetcher
}

func TestHTTPFetcherRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if r.Header.Get("User-Agent") != "opendata-harvester/1.0" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	feed, err := testFetcher(3).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected three attempts, got %d", hits)
	}
	if feed.StatusCode != http.StatusOK || feed.ContentType != "text/calendar" || feed.URL != srv.URL {
		t.Fatalf("unexpected feed %+v", feed)
	}
}

func TestHTTPFetcherReturnsClientErrorsWithoutRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	feed, err := testFetcher(3).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("client errors are returned as fetched: %v", err)
	}
	if feed.StatusCode != http.StatusNotFound || atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single 404 attempt, got status %d after %d hits", feed.StatusCode, hits)
	}
}

func TestHTTPFetcherGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := testFetcher(2).Fetch(context.Background(), srv.URL); !errors.Is(err, errServerStatus) {
		t.Fatalf("expected server status error, got %v", err)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected cancellation after one call, got %v after %d calls", err, calls)
	}
}

func TestParserDispatchesOnContentType(t *testing.T) {
	parser := Parser{}

	calendar := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nBEGIN:VEVENT\r\nUID:u1\r\nDTSTAMP:20240101T000000Z\r\nSUMMARY:Parade\r\nDTSTART:20240501T100000Z\r\nEND:VEVENT\r\nEND:VCALENDAR\r\n"
	candidates, err := parser.Parse(ports.FetchedFeed{ContentType: "text/calendar; charset=utf-8", Body: []byte(calendar)})
	if err != nil {
		t.Fatalf("calendar parse failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ExternalID != "u1" || candidates[0].Fields["title"] != "Parade" {
		t.Fatalf("unexpected calendar candidates %+v", candidates)
	}

	collection := `{"collection":{"items":[{"data":[{"name":"id","value":"c1"},{"name":"title","value":"Fair"}]}]}}`
	candidates, err = parser.Parse(ports.FetchedFeed{ContentType: "application/vnd.collection+json", Body: []byte(collection)})
	if err != nil {
		t.Fatalf("collection parse failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ExternalID != "c1" {
		t.Fatalf("unexpected collection candidates %+v", candidates)
	}

	candidates, err = parser.Parse(ports.FetchedFeed{ContentType: "application/json", Body: []byte(`{"events":[{"id":7,"title":"Run"}]}`)})
	if err != nil {
		t.Fatalf("json parse failed: %v", err)
	}
	if candidates[0].ExternalID != "7" {
		t.Fatalf("numeric ids must be stringified, got %q", candidates[0].ExternalID)
	}

	if _, err := parser.Parse(ports.FetchedFeed{ContentType: "text/html", Body: []byte("<html/>")}); !errors.Is(err, domainerrors.ErrFeedFormatUnrecognized) {
		t.Fatalf("expected unrecognized format, got %v", err)
	}
	if _, err := parser.Parse(ports.FetchedFeed{ContentType: "", Body: nil}); !errors.Is(err, domainerrors.ErrFeedFormatUnrecognized) {
		t.Fatalf("expected unrecognized format without content type, got %v", err)
	}
	if _, err := parser.Parse(ports.FetchedFeed{ContentType: "application/json", Body: []byte("{")}); !errors.Is(err, domainerrors.ErrFeedParseFailed) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestParserAcceptsGenericJSONTypes(t *testing.T) {
	parser := Parser{}
	collection := `{"collection":{"version":"1.0","items":[{"data":[{"name":"id","value":"c1"},{"name":"title","value":"Fair"},{"name":"start_time","value":"2024-05-01T10:00:00"}]}]}}`

	for _, contentType := range []string{"text/json", "text/json; charset=utf-8", "application/json"} {
		candidates, err := parser.Parse(ports.FetchedFeed{ContentType: contentType, Body: []byte(collection)})
		if err != nil {
			t.Fatalf("%s: parse failed: %v", contentType, err)
		}
		if len(candidates) != 1 || candidates[0].ExternalID != "c1" || candidates[0].Fields["title"] != "Fair" {
			t.Fatalf("%s: unexpected candidates %+v", contentType, candidates)
		}
	}

	candidates, err := parser.Parse(ports.FetchedFeed{ContentType: "application/ld+json", Body: []byte(`{"events":[{"id":"e1","title":"Run"}]}`)})
	if err != nil {
		t.Fatalf("+json parse failed: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ExternalID != "e1" {
		t.Fatalf("unexpected +json candidates %+v", candidates)
	}
}
