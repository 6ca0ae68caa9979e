package workers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"opendata/contexts/open-data/event-catalog-service/adapters/feeds"
	"opendata/contexts/open-data/event-catalog-service/adapters/memory"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

type stubFetcher struct {
	feeds map[string]ports.FetchedFeed
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, feedURL string) (ports.FetchedFeed, error) {
	f.calls = append(f.calls, feedURL)
	feed, ok := f.feeds[feedURL]
	if !ok {
		return ports.FetchedFeed{}, errors.New("connection refused")
	}
	feed.URL = feedURL
	return feed, nil
}

type countingMetrics struct {
	sources map[string]int
	events  map[string]int
	sweeps  int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{sources: map[string]int{}, events: map[string]int{}}
}

func (m *countingMetrics) SourceFetched(outcome string) { m.sources[outcome]++ }
func (m *countingMetrics) EventIngested(outcome string) { m.events[outcome]++ }
func (m *countingMetrics) SweepCompleted(time.Duration) { m.sweeps++ }

func calendar(events ...string) []byte {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//feed//EN"}
	for _, event := range events {
		lines = append(lines, strings.Split(event, "\n")...)
	}
	lines = append(lines, "END:VCALENDAR")
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

const concert = "BEGIN:VEVENT\nUID:concert-1@feeds.example\nDTSTAMP:20240801T000000Z\nSUMMARY:Open air concert\nLOCATION:Market square\nDTSTART:20240901T190000Z\nDTEND:20240901T220000Z\nEND:VEVENT"

const undated = "BEGIN:VEVENT\nUID:undated@feeds.example\nDTSTAMP:20240801T000000Z\nSUMMARY:Someday\nEND:VEVENT"

func addSource(t *testing.T, store *memory.Store, feedURL string, active bool) {
	t.Helper()
	id, _ := store.NewID(context.Background())
	err := store.Collection(entities.KindSource).CreateRecords(context.Background(), []entities.Record{{
		ID:     id,
		Owner:  "provider-a",
		Fields: entities.Fields{"url": feedURL, "active": active},
	}})
	if err != nil {
		t.Fatalf("add source failed: %v", err)
	}
}

func newHarvester(store *memory.Store, fetcher ports.FeedFetcher, metrics ports.HarvestMetrics) Harvester {
	return Harvester{
		Sources:     store,
		Events:      store,
		Fetcher:     fetcher,
		Parser:      feeds.Parser{},
		Schema:      schema.Event,
		IDGenerator: store,
		Clock:       store,
		Metrics:     metrics,
	}
}

func listEvents(t *testing.T, store *memory.Store) []entities.Record {
	t.Helper()
	items, err := store.Collection(entities.KindEvent).ListRecords(context.Background(), ports.ListFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	return items
}

func TestHarvesterIsIdempotent(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/city.ics", true)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/city.ics": {StatusCode: 200, ContentType: "text/calendar; charset=utf-8", Body: calendar(concert)},
	}}
	harvester := newHarvester(store, fetcher, nil)

	first, err := harvester.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if first.EventsCreated != 1 {
		t.Fatalf("expected one created event, got %+v", first)
	}
	second, err := harvester.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if second.EventsCreated != 0 || second.EventsUpdated != 1 {
		t.Fatalf("expected the second sweep to update in place, got %+v", second)
	}

	events := listEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected exactly one stored event, got %d", len(events))
	}
	event := events[0]
	if event.ExternalID != "concert-1@feeds.example" {
		t.Fatalf("unexpected external id %q", event.ExternalID)
	}
	if event.String("title") != "Open air concert" || event.String("location_name") != "Market square" {
		t.Fatalf("unexpected fields %+v", event.Fields)
	}
	if event.String("source") != "https://feeds.example/city.ics" {
		t.Fatalf("expected source to default to the feed url, got %q", event.String("source"))
	}
	start, _ := event.Time("start_time")
	if !start.Equal(time.Date(2024, 9, 1, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if event.Owner != "" {
		t.Fatalf("harvested events carry no owner, got %q", event.Owner)
	}
}

func TestHarvesterUpdatesChangedEntries(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/city.ics", true)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/city.ics": {StatusCode: 200, ContentType: "text/calendar", Body: calendar(concert)},
	}}
	harvester := newHarvester(store, fetcher, nil)
	if _, err := harvester.RunOnce(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	original := listEvents(t, store)[0]

	fetcher.feeds["https://feeds.example/city.ics"] = ports.FetchedFeed{
		StatusCode:  200,
		ContentType: "text/calendar",
		Body:        calendar(strings.Replace(concert, "SUMMARY:Open air concert", "SUMMARY:Concert moved indoors", 1)),
	}
	if _, err := harvester.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}

	events := listEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].ID != original.ID {
		t.Fatalf("update must keep the stored id: %q != %q", events[0].ID, original.ID)
	}
	if events[0].String("title") != "Concert moved indoors" {
		t.Fatalf("expected the new title, got %q", events[0].String("title"))
	}
}

func TestHarvesterIsolatesFailingSources(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://down.example/feed.ics", true)
	addSource(t, store, "https://broken.example/feed.json", true)
	addSource(t, store, "https://html.example/", true)
	addSource(t, store, "https://gone.example/feed.ics", true)
	addSource(t, store, "https://feeds.example/city.ics", true)
	addSource(t, store, "https://paused.example/feed.ics", false)

	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://broken.example/feed.json": {StatusCode: 200, ContentType: "application/json", Body: []byte("{not json")},
		"https://html.example/":            {StatusCode: 200, ContentType: "text/html", Body: []byte("<html></html>")},
		"https://gone.example/feed.ics":    {StatusCode: 404, ContentType: "text/plain"},
		"https://feeds.example/city.ics":   {StatusCode: 200, ContentType: "text/calendar", Body: calendar(concert)},
		"https://paused.example/feed.ics":  {StatusCode: 200, ContentType: "text/calendar", Body: calendar(concert)},
	}}
	metrics := newCountingMetrics()
	report, err := newHarvester(store, fetcher, metrics).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if report.SourcesVisited != 5 || report.SourcesFailed != 4 || report.EventsCreated != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, called := range fetcher.calls {
		if called == "https://paused.example/feed.ics" {
			t.Fatal("inactive sources must not be fetched")
		}
	}
	if metrics.sources[OutcomeFetchFailed] != 2 || metrics.sources[OutcomeParseFailed] != 1 ||
		metrics.sources[OutcomeUnrecognized] != 1 || metrics.sources[OutcomeFetched] != 1 {
		t.Fatalf("unexpected source outcomes %+v", metrics.sources)
	}
	if metrics.events[OutcomeCreated] != 1 || metrics.sweeps != 1 {
		t.Fatalf("unexpected event metrics %+v, sweeps %d", metrics.events, metrics.sweeps)
	}
}

func TestHarvesterDiscardsEntriesWithoutStart(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/city.ics", true)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/city.ics": {StatusCode: 200, ContentType: "text/calendar", Body: calendar(undated, concert)},
	}}

	report, err := newHarvester(store, fetcher, nil).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.EventsDiscarded != 1 || report.EventsCreated != 1 {
		t.Fatalf("expected one discarded and one created, got %+v", report)
	}
	if store.Count(entities.KindEvent) != 1 {
		t.Fatalf("expected only the dated event stored, got %d", store.Count(entities.KindEvent))
	}
}

func TestHarvesterKeepsEntriesWithUnusableTitles(t *testing.T) {
	untitled := "BEGIN:VEVENT\nUID:untitled@feeds.example\nDTSTAMP:20240801T000000Z\nDTSTART:20240902T100000Z\nEND:VEVENT"
	verbose := "BEGIN:VEVENT\nUID:verbose@feeds.example\nDTSTAMP:20240801T000000Z\nSUMMARY:" +
		strings.Repeat("a", 1001) + "\nDTSTART:20240903T100000Z\nEND:VEVENT"
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/city.ics", true)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/city.ics": {StatusCode: 200, ContentType: "text/calendar", Body: calendar(untitled, verbose)},
	}}

	report, err := newHarvester(store, fetcher, nil).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.EventsCreated != 2 || report.EventsDiscarded != 0 {
		t.Fatalf("expected both entries stored, got %+v", report)
	}

	titles := map[string]string{}
	for _, event := range listEvents(t, store) {
		titles[event.ExternalID] = event.String("title")
	}
	if title, ok := titles["untitled@feeds.example"]; !ok || title != "" {
		t.Fatalf("expected the untitled entry with an empty title, got %q (stored=%v)", title, ok)
	}
	if title := titles["verbose@feeds.example"]; title != strings.Repeat("a", 1000) {
		t.Fatalf("expected the title truncated to 1000 characters, got %d", len(title))
	}
}

func TestHarvesterFallsBackToDerivedExternalID(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/events.json", true)
	body := []byte(`{"events":[{"title":"Book fair","start_time":"2024-10-05T10:00:00","source":"https://library.example"}]}`)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/events.json": {StatusCode: 200, ContentType: "application/json", Body: body},
	}}
	harvester := newHarvester(store, fetcher, nil)

	for i := 0; i < 2; i++ {
		if _, err := harvester.RunOnce(context.Background()); err != nil {
			t.Fatalf("sweep %d failed: %v", i, err)
		}
	}
	events := listEvents(t, store)
	if len(events) != 1 {
		t.Fatalf("expected one event across sweeps, got %d", len(events))
	}
	want := FallbackExternalID("Book fair", time.Date(2024, 10, 5, 10, 0, 0, 0, time.UTC))
	if events[0].ExternalID != want {
		t.Fatalf("expected derived external id %q, got %q", want, events[0].ExternalID)
	}
	if events[0].String("source") != "https://library.example" {
		t.Fatalf("an explicit source must be kept, got %q", events[0].String("source"))
	}
}

type failingUpserter struct{}

func (failingUpserter) UpsertEventByExternalID(context.Context, entities.Record) (entities.Record, bool, error) {
	return entities.Record{}, false, errors.New("database unavailable")
}

func TestHarvesterAbortsOnStorageFailure(t *testing.T) {
	store := memory.NewStore("", nil)
	addSource(t, store, "https://feeds.example/city.ics", true)
	fetcher := &stubFetcher{feeds: map[string]ports.FetchedFeed{
		"https://feeds.example/city.ics": {StatusCode: 200, ContentType: "text/calendar", Body: calendar(concert)},
	}}
	harvester := newHarvester(store, fetcher, nil)
	harvester.Events = failingUpserter{}

	if _, err := harvester.RunOnce(context.Background()); err == nil {
		t.Fatal("expected storage failure to abort the sweep")
	}
}

func TestFallbackExternalIDIsStable(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if FallbackExternalID("a", start) != FallbackExternalID("a", start.In(time.FixedZone("CET", 3600))) {
		t.Fatal("derived ids must not depend on the time zone")
	}
	if FallbackExternalID("a", start) == FallbackExternalID("b", start) {
		t.Fatal("derived ids must differ by title")
	}
	if _, err := url.Parse(FallbackExternalID("a", start)); err != nil {
		t.Fatalf("derived id must be url-safe: %v", err)
	}
}
