package hypermedia

import (
	"encoding/json"
	"fmt"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

// EncodeJSON renders {"event": {...}} for a single record and
// {"events": [...]} for a page.
func EncodeJSON(doc Document) ([]byte, error) {
	if doc.Single && len(doc.Records) == 1 {
		return json.Marshal(map[string]any{
			string(doc.Kind): itemObject(doc.Schema, doc.Records[0]),
		})
	}
	items := make([]map[string]any, 0, len(doc.Records))
	for _, record := range doc.Records {
		items = append(items, itemObject(doc.Schema, record))
	}
	return json.Marshal(map[string]any{doc.Kind.Plural(): items})
}

// DecodeJSON accepts {"events": [...]}, {"event": {...}} or a bare object.
func DecodeJSON(kind entities.Kind, body []byte) ([]map[string]any, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", domainerrors.ErrInvalidPayload)
	}

	if raw, ok := envelope[kind.Plural()]; ok {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %s must be a list of objects", domainerrors.ErrInvalidPayload, kind.Plural())
		}
		for i, item := range items {
			if item == nil {
				return nil, fmt.Errorf("%w: %s.%d must be an object", domainerrors.ErrInvalidPayload, kind.Plural(), i)
			}
		}
		return items, nil
	}

	if raw, ok := envelope[string(kind)]; ok && len(envelope) == 1 {
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err == nil && item != nil {
			return []map[string]any{item}, nil
		}
	}

	var item map[string]any
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidPayload, err)
	}
	return []map[string]any{item}, nil
}
