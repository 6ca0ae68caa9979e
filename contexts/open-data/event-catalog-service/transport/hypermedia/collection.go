package hypermedia

import (
	"bytes"
	"encoding/json"
	"fmt"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
)

const CollectionVersion = "1.0"

type DataEntry struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type CollectionItem struct {
	Href string      `json:"href"`
	Data []DataEntry `json:"data"`
}

type Template struct {
	Data []DataEntry `json:"data"`
}

type Collection struct {
	Version      string           `json:"version"`
	Href         string           `json:"href"`
	Items        []CollectionItem `json:"items"`
	TotalCount   *int             `json:"total_count,omitempty"`
	CurrentCount int              `json:"current_count"`
	Template     *Template        `json:"template,omitempty"`
}

type CollectionDocument struct {
	Collection Collection `json:"collection"`
}

// EncodeCollection renders doc as application/vnd.collection+json. Item
// data lists id first, then every schema field in declaration order.
func EncodeCollection(doc Document) ([]byte, error) {
	items := make([]CollectionItem, 0, len(doc.Records))
	for _, record := range doc.Records {
		items = append(items, CollectionItem{
			Href: doc.itemHref(record.ID),
			Data: itemData(doc.Schema, record),
		})
	}

	collection := Collection{
		Version:      CollectionVersion,
		Href:         doc.Href,
		Items:        items,
		CurrentCount: len(items),
		Template:     &Template{Data: templateData(doc.Schema)},
	}
	if !doc.Single {
		total := doc.Total
		collection.TotalCount = &total
	}
	return json.Marshal(CollectionDocument{Collection: collection})
}

func itemData(s schema.Schema, record entities.Record) []DataEntry {
	data := make([]DataEntry, 0, len(s.Fields)+1)
	data = append(data, DataEntry{Name: "id", Value: record.ID})
	for _, field := range s.Fields {
		data = append(data, DataEntry{Name: field.Name, Value: RenderValue(fieldValue(field, record))})
	}
	return data
}

func templateData(s schema.Schema) []DataEntry {
	defaults := s.Defaults()
	data := make([]DataEntry, 0, len(s.Fields))
	for _, field := range s.Fields {
		value := RenderValue(defaults[field.Name])
		if value == nil {
			value = ""
		}
		data = append(data, DataEntry{Name: field.Name, Value: value})
	}
	return data
}

type rawTemplate struct {
	Data json.RawMessage `json:"data"`
}

type rawCollection struct {
	Template   *rawTemplate `json:"template"`
	Collection *struct {
		Items []struct {
			Data json.RawMessage `json:"data"`
		} `json:"items"`
		Template *rawTemplate `json:"template"`
	} `json:"collection"`
}

// DecodeCollection reads a collection+json write body: a template for a
// single item, or collection items for a batch. Each data block may be a
// name/value list or a plain object.
func DecodeCollection(_ entities.Kind, body []byte) ([]map[string]any, error) {
	var doc rawCollection
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidPayload, err)
	}

	var blocks []json.RawMessage
	switch {
	case doc.Template != nil:
		blocks = append(blocks, doc.Template.Data)
	case doc.Collection != nil && len(doc.Collection.Items) > 0:
		for _, item := range doc.Collection.Items {
			blocks = append(blocks, item.Data)
		}
	case doc.Collection != nil && doc.Collection.Template != nil:
		blocks = append(blocks, doc.Collection.Template.Data)
	default:
		return nil, fmt.Errorf("%w: expected template or collection items", domainerrors.ErrInvalidPayload)
	}

	items := make([]map[string]any, 0, len(blocks))
	for i, block := range blocks {
		item, err := dataToMap(block)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", domainerrors.ErrInvalidPayload, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func dataToMap(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("missing data")
	}

	if trimmed[0] == '[' {
		var entries []DataEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(entries))
		for _, entry := range entries {
			out[entry.Name] = entry.Value
		}
		return out, nil
	}

	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("data must be a list or an object")
	}
	return out, nil
}
