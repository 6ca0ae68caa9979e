package entities

import (
	"strings"
	"time"
)

// Kind names an entity collection served by the catalog.
type Kind string

const (
	KindEvent  Kind = "event"
	KindSource Kind = "source"
)

// Plural is the collection name used in URLs and plain JSON envelopes.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Fields is the flat, schema-cleaned field map of a record.
// Values are string, int, bool, time.Time, nil, []string or []map[string]any.
type Fields map[string]any

// Clone copies the map and its list values so stored state is never aliased.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for key, value := range f {
		switch typed := value.(type) {
		case []string:
			out[key] = append([]string{}, typed...)
		case []map[string]any:
			items := make([]map[string]any, 0, len(typed))
			for _, item := range typed {
				copied := make(map[string]any, len(item))
				for k, v := range item {
					copied[k] = v
				}
				items = append(items, copied)
			}
			out[key] = items
		default:
			out[key] = value
		}
	}
	return out
}

// Record is the common shape of Events and Sources.
type Record struct {
	ID         string
	Kind       Kind
	Owner      string
	ExternalID string
	Fields     Fields
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OwnedBy reports whether caller is the non-empty owner of the record.
func (r Record) OwnedBy(caller string) bool {
	caller = strings.TrimSpace(caller)
	return caller != "" && r.Owner == caller
}

// String returns a string field, or "" when unset.
func (r Record) String(name string) string {
	value, _ := r.Fields[name].(string)
	return value
}

// Time returns a timestamp field; ok is false when the field is null.
func (r Record) Time(name string) (time.Time, bool) {
	value, ok := r.Fields[name].(time.Time)
	return value, ok
}

// Bool returns a boolean field, false when unset.
func (r Record) Bool(name string) bool {
	value, _ := r.Fields[name].(bool)
	return value
}
