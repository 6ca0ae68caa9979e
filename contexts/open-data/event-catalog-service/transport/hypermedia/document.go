package hypermedia

import (
	"time"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
)

// Document is the encoder input: one record or a page of a collection.
type Document struct {
	Kind     entities.Kind
	Schema   schema.Schema
	Href     string
	ItemHref func(id string) string
	Records  []entities.Record
	Single   bool
	Total    int
}

type Encoder func(doc Document) ([]byte, error)

// Decoder turns a request body into raw items for schema validation.
type Decoder func(kind entities.Kind, body []byte) ([]map[string]any, error)

func (d Document) itemHref(id string) string {
	if d.ItemHref == nil {
		return d.Href + "/" + id
	}
	return d.ItemHref(id)
}

// RenderValue converts a cleaned field value to its wire form.
func RenderValue(value any) any {
	switch typed := value.(type) {
	case time.Time:
		return schema.FormatTimestamp(typed)
	case []string:
		if typed == nil {
			return []string{}
		}
		return typed
	case []map[string]any:
		if typed == nil {
			return []map[string]any{}
		}
		return typed
	default:
		return value
	}
}

// itemObject renders a record as a flat object keyed by field name.
func itemObject(s schema.Schema, record entities.Record) map[string]any {
	out := make(map[string]any, len(s.Fields)+1)
	out["id"] = record.ID
	for _, field := range s.Fields {
		out[field.Name] = RenderValue(fieldValue(field, record))
	}
	return out
}

func fieldValue(field schema.Field, record entities.Record) any {
	if value, ok := record.Fields[field.Name]; ok {
		return value
	}
	return schema.Schema{Fields: []schema.Field{field}}.Defaults()[field.Name]
}
