package schema

import (
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

const (
	// SafeMaxLength bounds free-text fields.
	SafeMaxLength = 1000
	// TagMaxLength bounds each tag and category.
	TagMaxLength = 50
	// CollectionMaxLength is the largest page a list query may request.
	CollectionMaxLength = 50
)

func text(name string) Field {
	return Field{Name: name, Type: TypeString, MinLength: 1, MaxLength: SafeMaxLength}
}

func sortableText(name string) Field {
	field := text(name)
	field.Sortable = true
	return field
}

func timestamp(name string, required bool) Field {
	return Field{Name: name, Type: TypeTimestamp, Required: required, Sortable: true}
}

func tagList(name string) Field {
	return Field{Name: name, Type: TypeStringList, MinLength: 1, MaxLength: TagMaxLength}
}

func mediaList(name string) Field {
	return Field{Name: name, Type: TypeStructList, Item: []Field{text("url"), text("license")}}
}

// Event is the field table of the events collection.
var Event = Schema{
	Name:     string(entities.KindEvent),
	Location: domainerrors.LocationBody,
	Fields: []Field{
		text("author_email"),
		text("author_firstname"),
		text("author_lastname"),
		text("author_telephone"),
		text("description"),
		text("event_id"),
		text("email"),
		text("firstname"),
		text("language"),
		text("lastname"),
		text("latlong"),
		text("price_information"),
		sortableText("organiser"),
		text("performers"),
		text("press_url"),
		text("source_id"),
		text("source"),
		text("target"),
		text("telephone"),
		{Name: "title", Type: TypeString, Required: true, MinLength: 1, MaxLength: SafeMaxLength, Sortable: true},
		text("url"),
		sortableText("location_name"),
		text("location_address"),
		text("location_post_code"),
		sortableText("location_town"),
		text("location_capacity"),
		text("location_country"),
		timestamp("start_time", true),
		timestamp("end_time", false),
		timestamp("publication_start", false),
		timestamp("publication_end", false),
		text("press_contact_email"),
		text("press_contact_name"),
		text("press_contact_phone_number"),
		text("ticket_contact_email"),
		text("ticket_contact_name"),
		text("ticket_contact_phone_number"),
		mediaList("videos"),
		mediaList("sounds"),
		mediaList("images"),
		tagList("tags"),
		tagList("categories"),
	},
}
