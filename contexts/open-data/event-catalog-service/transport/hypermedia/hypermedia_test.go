package hypermedia

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
)

func sampleEvent(t *testing.T, id string) entities.Record {
	t.Helper()
	fields, errs := schema.Event.Validate(map[string]any{
		"title":         "Harbour festival",
		"organiser":     "Port authority",
		"location_name": "North pier",
		"start_time":    "2024-08-10T18:00:00",
		"end_time":      "2024-08-10T23:30:00",
		"tags":          []any{"music", "outdoor"},
		"images":        []any{map[string]any{"url": "http://img.example/pier.jpg", "license": "CC0"}},
	})
	if len(errs) != 0 {
		t.Fatalf("invalid fixture: %+v", errs)
	}
	updated := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	return entities.Record{ID: id, Kind: entities.KindEvent, Fields: fields, CreatedAt: updated, UpdatedAt: updated}
}

func eventDocument(records []entities.Record, single bool, total int) Document {
	return Document{
		Kind:    entities.KindEvent,
		Schema:  schema.Event,
		Href:    "http://catalog.example/v1/events",
		Records: records,
		Single:  single,
		Total:   total,
	}
}

func TestEncodeCollectionPage(t *testing.T) {
	body, err := EncodeCollection(eventDocument([]entities.Record{sampleEvent(t, "evt-1")}, false, 12))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var doc CollectionDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	collection := doc.Collection
	if collection.Version != "1.0" || collection.Href != "http://catalog.example/v1/events" {
		t.Fatalf("unexpected envelope %+v", collection)
	}
	if collection.TotalCount == nil || *collection.TotalCount != 12 || collection.CurrentCount != 1 {
		t.Fatalf("unexpected counts %v/%d", collection.TotalCount, collection.CurrentCount)
	}
	item := collection.Items[0]
	if item.Href != "http://catalog.example/v1/events/evt-1" {
		t.Fatalf("unexpected item href %q", item.Href)
	}
	if item.Data[0].Name != "id" || item.Data[0].Value != "evt-1" {
		t.Fatalf("id must lead the item data, got %+v", item.Data[0])
	}
	if len(item.Data) != len(schema.Event.Fields)+1 {
		t.Fatalf("expected every field in item data, got %d", len(item.Data))
	}
	values := map[string]any{}
	for _, entry := range item.Data {
		values[entry.Name] = entry.Value
	}
	if values["start_time"] != "2024-08-10T18:00:00" {
		t.Fatalf("unexpected start_time %#v", values["start_time"])
	}
	if values["publication_start"] != nil {
		t.Fatalf("unset timestamps must encode as null, got %#v", values["publication_start"])
	}
	if collection.Template == nil || len(collection.Template.Data) != len(schema.Event.Fields) {
		t.Fatal("expected a write template listing every field")
	}
}

func TestEncodeCollectionSingleOmitsTotal(t *testing.T) {
	body, err := EncodeCollection(eventDocument([]entities.Record{sampleEvent(t, "evt-1")}, true, 1))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if strings.Contains(string(body), "total_count") {
		t.Fatalf("single item documents carry no total, got %s", body)
	}
}

func TestCollectionRoundTrip(t *testing.T) {
	record := sampleEvent(t, "evt-1")
	body, err := EncodeCollection(eventDocument([]entities.Record{record}, false, 1))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	items, err := DecodeCollection(entities.KindEvent, body)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}

	fields, errs := schema.Event.Validate(items[0])
	if len(errs) != 0 {
		t.Fatalf("decoded item must validate, got %+v", errs)
	}
	for _, name := range []string{"title", "organiser", "location_name"} {
		if fields[name] != record.Fields[name] {
			t.Fatalf("%s changed in round trip: %#v != %#v", name, fields[name], record.Fields[name])
		}
	}
	if !fields["start_time"].(time.Time).Equal(record.Fields["start_time"].(time.Time)) {
		t.Fatal("start_time changed in round trip")
	}
	if tags := fields["tags"].([]string); len(tags) != 2 || tags[1] != "outdoor" {
		t.Fatalf("tags changed in round trip: %#v", tags)
	}
	if images := fields["images"].([]map[string]any); len(images) != 1 || images[0]["license"] != "CC0" {
		t.Fatalf("images changed in round trip: %#v", images)
	}
}

func TestDecodeCollectionShapes(t *testing.T) {
	template := `{"template":{"data":[{"name":"title","value":"One"},{"name":"start_time","value":"2024-01-01"}]}}`
	items, err := DecodeCollection(entities.KindEvent, []byte(template))
	if err != nil || len(items) != 1 || items[0]["title"] != "One" {
		t.Fatalf("template decode: %v %+v", err, items)
	}

	batch := `{"collection":{"items":[{"data":[{"name":"title","value":"A"}]},{"data":{"title":"B"}}]}}`
	items, err = DecodeCollection(entities.KindEvent, []byte(batch))
	if err != nil || len(items) != 2 || items[1]["title"] != "B" {
		t.Fatalf("batch decode: %v %+v", err, items)
	}

	for _, body := range []string{`{"collection":{}}`, `not json`, `{"template":{"data":"x"}}`} {
		if _, err := DecodeCollection(entities.KindEvent, []byte(body)); !errors.Is(err, domainerrors.ErrInvalidPayload) {
			t.Fatalf("expected invalid payload for %s, got %v", body, err)
		}
	}
}

func TestJSONEnvelopes(t *testing.T) {
	body, err := EncodeJSON(eventDocument([]entities.Record{sampleEvent(t, "evt-1")}, true, 1))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	var single map[string]map[string]any
	if err := json.Unmarshal(body, &single); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if single["event"]["id"] != "evt-1" || single["event"]["end_time"] != "2024-08-10T23:30:00" {
		t.Fatalf("unexpected single envelope %s", body)
	}

	body, err = EncodeJSON(eventDocument(nil, false, 0))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(body) != `{"events":[]}` {
		t.Fatalf("unexpected empty page %s", body)
	}

	for _, raw := range []string{
		`{"events":[{"title":"A"},{"title":"B"}]}`,
		`{"event":{"title":"A"}}`,
		`{"title":"A","start_time":"2024-01-01"}`,
	} {
		items, err := DecodeJSON(entities.KindEvent, []byte(raw))
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if items[0]["title"] != "A" {
			t.Fatalf("decode %s: unexpected items %+v", raw, items)
		}
	}
	if _, err := DecodeJSON(entities.KindEvent, []byte(`[1,2]`)); !errors.Is(err, domainerrors.ErrInvalidPayload) {
		t.Fatalf("expected invalid payload for a bare list, got %v", err)
	}
}

func TestCalendarRoundTrip(t *testing.T) {
	record := sampleEvent(t, "evt-1@catalog.example")
	body, err := EncodeCalendar(eventDocument([]entities.Record{record}, false, 1))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, "BEGIN:VCALENDAR") || !strings.Contains(text, "SUMMARY:Harbour festival") {
		t.Fatalf("unexpected calendar:\n%s", text)
	}

	entries, err := DecodeCalendar(body)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UID != "evt-1@catalog.example" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	fields, errs := schema.Event.Coerce(entries[0].Fields)
	if len(errs) != 0 {
		t.Fatalf("decoded entry must validate, got %+v", errs)
	}
	if fields["title"] != "Harbour festival" || fields["location_name"] != "North pier" {
		t.Fatalf("unexpected fields %+v", fields)
	}
	start := fields["start_time"].(time.Time)
	if !start.Equal(time.Date(2024, 8, 10, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
}

func TestDecodeCalendarUnescapesText(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:a@feeds.example",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY:Rock\\, pop and jazz",
		"DTSTART:20240301",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"

	entries, err := DecodeCalendar([]byte(body))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if entries[0].Fields["title"] != "Rock, pop and jazz" {
		t.Fatalf("unexpected title %q", entries[0].Fields["title"])
	}
	if entries[0].Fields["start_time"] != "20240301" {
		t.Fatalf("expected the raw DTSTART value, got %#v", entries[0].Fields["start_time"])
	}
}

func TestEncodeCSV(t *testing.T) {
	body, err := EncodeCSV(eventDocument([]entities.Record{sampleEvent(t, "evt-1")}, false, 1))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse failed: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "id" || len(rows[0]) != len(schema.Event.Fields)+1 {
		t.Fatalf("unexpected csv shape %v", rows[0])
	}
	cells := map[string]string{}
	for i, name := range rows[0] {
		cells[name] = rows[1][i]
	}
	if cells["tags"] != "music;outdoor" {
		t.Fatalf("unexpected tags cell %q", cells["tags"])
	}
	if cells["images"] != "http://img.example/pier.jpg|CC0" {
		t.Fatalf("unexpected images cell %q", cells["images"])
	}
	if cells["start_time"] != "2024-08-10T18:00:00" || cells["publication_end"] != "" {
		t.Fatalf("unexpected timestamp cells %q %q", cells["start_time"], cells["publication_end"])
	}
}

func TestNegotiate(t *testing.T) {
	offers := []string{MediaTypeCollection, MediaTypeJSON, MediaTypeCalendar}
	cases := []struct {
		accept string
		want   string
	}{
		{"", MediaTypeCollection},
		{"*/*", MediaTypeCollection},
		{"application/json", MediaTypeJSON},
		{"text/*", MediaTypeCalendar},
		{"application/json;q=0.5, text/calendar", MediaTypeCalendar},
		{"text/html, application/json;q=0.1", MediaTypeJSON},
	}
	for _, tc := range cases {
		got, err := Negotiate(tc.accept, offers)
		if err != nil {
			t.Fatalf("negotiate %q: %v", tc.accept, err)
		}
		if got != tc.want {
			t.Fatalf("negotiate %q: expected %s, got %s", tc.accept, tc.want, got)
		}
	}

	for _, accept := range []string{"text/html", "application/json;q=0"} {
		if _, err := Negotiate(accept, offers); !errors.Is(err, domainerrors.ErrNotAcceptable) {
			t.Fatalf("negotiate %q: expected not acceptable, got %v", accept, err)
		}
	}
}

func TestIntakesSelect(t *testing.T) {
	intakes := Intakes{{MediaType: MediaTypeJSON, Decode: DecodeJSON}}
	if _, err := intakes.Select("application/json; charset=utf-8"); err != nil {
		t.Fatalf("charset parameter must be ignored: %v", err)
	}
	for _, contentType := range []string{"text/plain", "", "%%%"} {
		if _, err := intakes.Select(contentType); !errors.Is(err, domainerrors.ErrUnsupportedContentType) {
			t.Fatalf("expected unsupported content type for %q, got %v", contentType, err)
		}
	}
}
