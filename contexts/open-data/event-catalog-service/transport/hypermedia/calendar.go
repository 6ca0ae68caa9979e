package hypermedia

import (
	"bytes"
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

const calendarProductID = "-//opendata//event catalog//EN"

// calendarFields maps text properties to event fields. Timestamps are
// handled separately.
var calendarFields = []struct {
	property ics.ComponentProperty
	field    string
}{
	{ics.ComponentPropertySummary, "title"},
	{ics.ComponentPropertyDescription, "description"},
	{ics.ComponentPropertyLocation, "location_name"},
	{ics.ComponentPropertyUrl, "url"},
}

// EncodeCalendar renders event records as a VCALENDAR with one VEVENT per
// record, keyed by record id.
func EncodeCalendar(doc Document) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	for _, record := range doc.Records {
		event := cal.AddEvent(record.ID)
		event.SetDtStampTime(record.UpdatedAt)
		if title := record.String("title"); title != "" {
			event.SetSummary(title)
		}
		if description := record.String("description"); description != "" {
			event.SetDescription(description)
		}
		if location := record.String("location_name"); location != "" {
			event.SetLocation(location)
		}
		if url := record.String("url"); url != "" {
			event.SetURL(url)
		}
		if start, ok := record.Time("start_time"); ok {
			event.SetStartAt(start)
		}
		if end, ok := record.Time("end_time"); ok {
			event.SetEndAt(end)
		}
	}
	return []byte(cal.Serialize()), nil
}

// CalendarEntry is one VEVENT read from a calendar feed.
type CalendarEntry struct {
	UID    string
	Fields map[string]any
}

// DecodeCalendar reads every VEVENT of body. Timestamps are passed through
// as their raw property values for the schema to parse; a VEVENT without
// DTSTART yields an entry without start_time.
func DecodeCalendar(body []byte) ([]CalendarEntry, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(bytes.TrimSpace(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrFeedParseFailed, err)
	}

	events := cal.Events()
	entries := make([]CalendarEntry, 0, len(events))
	for _, event := range events {
		fields := make(map[string]any, len(calendarFields)+2)
		for _, mapping := range calendarFields {
			if prop := event.GetProperty(mapping.property); prop != nil {
				fields[mapping.field] = unescapeText(prop.Value)
			}
		}
		if prop := event.GetProperty(ics.ComponentPropertyDtStart); prop != nil {
			fields["start_time"] = prop.Value
		}
		if prop := event.GetProperty(ics.ComponentPropertyDtEnd); prop != nil {
			fields["end_time"] = prop.Value
		}
		entries = append(entries, CalendarEntry{UID: event.Id(), Fields: fields})
	}
	return entries, nil
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescapeText(value string) string {
	return textUnescaper.Replace(value)
}
