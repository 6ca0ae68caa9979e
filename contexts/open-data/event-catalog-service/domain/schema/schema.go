package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

type FieldType int

const (
	TypeString FieldType = iota
	TypeInteger
	TypeBoolean
	TypeTimestamp
	TypeStringList
	TypeStructList
)

// Field declares one entry of a schema table. Length bounds count runes and
// apply to strings and to string list elements; Item is the sub-schema of a
// struct list element.
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	Default   any
	MinLength int
	MaxLength int
	Min       *int
	Max       *int
	OneOf     []string
	URL       bool
	Sortable  bool
	Item      []Field
}

// Schema is an ordered field table consumed uniformly by validation and
// encoding.
type Schema struct {
	Name     string
	Location string
	Fields   []Field
}

func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.Name)
	}
	return names
}

func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func (s Schema) SortableNames() []string {
	var names []string
	for _, field := range s.Fields {
		if field.Sortable {
			names = append(names, field.Name)
		}
	}
	return names
}

// Defaults returns a field map with every field at its default value.
func (s Schema) Defaults() entities.Fields {
	out := make(entities.Fields, len(s.Fields))
	for _, field := range s.Fields {
		out[field.Name] = field.defaultValue()
	}
	return out
}

// Validate cleans raw against the schema. All violations are returned
// together; the field map is only meaningful when no errors are returned.
func (s Schema) Validate(raw map[string]any) (entities.Fields, []domainerrors.FieldError) {
	return s.clean(raw, false)
}

// Coerce is the lenient form of Validate. Over-long strings are truncated to
// their maximum length, other invalid values fall back to their defaults (or
// are dropped from lists), and missing required fields keep their defaults.
// The violations come back as warnings alongside a usable field map.
func (s Schema) Coerce(raw map[string]any) (entities.Fields, []domainerrors.FieldError) {
	return s.clean(raw, true)
}

func (s Schema) clean(raw map[string]any, lenient bool) (entities.Fields, []domainerrors.FieldError) {
	location := s.Location
	if location == "" {
		location = domainerrors.LocationBody
	}

	out := make(entities.Fields, len(s.Fields))
	var errs []domainerrors.FieldError
	for _, field := range s.Fields {
		value, fieldErrs := field.clean(field.Name, raw[field.Name])
		if lenient && len(fieldErrs) > 0 {
			value = field.salvage(raw[field.Name], value)
		}
		for i := range fieldErrs {
			fieldErrs[i].Location = location
		}
		errs = append(errs, fieldErrs...)
		out[field.Name] = value
	}
	return out, errs
}

func (f Field) defaultValue() any {
	switch f.Type {
	case TypeStringList:
		if values, ok := f.Default.([]string); ok {
			return append([]string{}, values...)
		}
		return []string{}
	case TypeStructList:
		return []map[string]any{}
	}
	if f.Default != nil {
		return f.Default
	}
	switch f.Type {
	case TypeString:
		return ""
	case TypeInteger:
		return 0
	case TypeBoolean:
		return false
	default:
		return nil
	}
}

// clean always returns a best-effort value next to the violations it found.
func (f Field) clean(path string, raw any) (any, []domainerrors.FieldError) {
	if isAbsent(raw) {
		if f.Required {
			return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "Required")}
		}
		return f.defaultValue(), nil
	}

	switch f.Type {
	case TypeString:
		value, errs := f.cleanString(path, raw)
		if len(errs) > 0 {
			return f.defaultValue(), errs
		}
		return value, nil
	case TypeInteger:
		value, errs := f.cleanInteger(path, raw)
		if len(errs) > 0 {
			return f.defaultValue(), errs
		}
		return value, nil
	case TypeBoolean:
		value, err := parseBool(raw)
		if err != nil {
			return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "%s is neither true nor false", quote(raw))}
		}
		return value, nil
	case TypeTimestamp:
		value, err := toTimestamp(raw)
		if err != nil {
			return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "Invalid date")}
		}
		return value, nil
	case TypeStringList:
		return f.cleanStringList(path, raw)
	case TypeStructList:
		return f.cleanStructList(path, raw)
	default:
		return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "unsupported field type")}
	}
}

// salvage keeps the leading MaxLength runes of an over-long string when the
// shortened value is otherwise valid.
func (f Field) salvage(raw any, fallback any) any {
	text, ok := raw.(string)
	if f.Type != TypeString || !ok || f.MaxLength <= 0 || utf8.RuneCountInString(text) <= f.MaxLength {
		return fallback
	}
	truncated := string([]rune(text)[:f.MaxLength])
	if value, errs := f.cleanString(f.Name, truncated); len(errs) == 0 {
		return value
	}
	return fallback
}

func (f Field) cleanString(path string, raw any) (string, []domainerrors.FieldError) {
	var value string
	switch typed := raw.(type) {
	case string:
		value = typed
	case float64:
		value = strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		value = typed.String()
	case int:
		value = strconv.Itoa(typed)
	case bool:
		value = strconv.FormatBool(typed)
	default:
		return "", []domainerrors.FieldError{fieldError(path, "%s is not a string", quote(raw))}
	}

	var errs []domainerrors.FieldError
	length := utf8.RuneCountInString(value)
	if f.MinLength > 0 && length < f.MinLength {
		errs = append(errs, fieldError(path, "Shorter than minimum length %d", f.MinLength))
	}
	if f.MaxLength > 0 && length > f.MaxLength {
		errs = append(errs, fieldError(path, "Longer than maximum length %d", f.MaxLength))
	}
	if len(f.OneOf) > 0 && !contains(f.OneOf, value) {
		errs = append(errs, fieldError(path, "%s is not one of %s", quote(value), strings.Join(f.OneOf, ", ")))
	}
	if f.URL && !isURL(value) {
		errs = append(errs, fieldError(path, "Must be a URL"))
	}
	return value, errs
}

func (f Field) cleanInteger(path string, raw any) (int, []domainerrors.FieldError) {
	var value int
	switch typed := raw.(type) {
	case int:
		value = typed
	case int64:
		value = int(typed)
	case float64:
		if typed != math.Trunc(typed) {
			return 0, []domainerrors.FieldError{fieldError(path, "%s is not a number", quote(raw))}
		}
		value = int(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, []domainerrors.FieldError{fieldError(path, "%s is not a number", quote(raw))}
		}
		value = int(parsed)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, []domainerrors.FieldError{fieldError(path, "%s is not a number", quote(raw))}
		}
		value = parsed
	default:
		return 0, []domainerrors.FieldError{fieldError(path, "%s is not a number", quote(raw))}
	}

	var errs []domainerrors.FieldError
	if f.Min != nil && value < *f.Min {
		errs = append(errs, fieldError(path, "%d is less than minimum value %d", value, *f.Min))
	}
	if f.Max != nil && value > *f.Max {
		errs = append(errs, fieldError(path, "%d is greater than maximum value %d", value, *f.Max))
	}
	return value, errs
}

func (f Field) cleanStringList(path string, raw any) (any, []domainerrors.FieldError) {
	items, ok := toList(raw)
	if !ok {
		return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "%s is not iterable", quote(raw))}
	}

	element := Field{
		Type:      TypeString,
		Required:  true,
		MinLength: f.MinLength,
		MaxLength: f.MaxLength,
		OneOf:     f.OneOf,
	}
	out := make([]string, 0, len(items))
	var errs []domainerrors.FieldError
	for i, item := range items {
		value, itemErrs := element.clean(fmt.Sprintf("%s.%d", path, i), item)
		if len(itemErrs) > 0 {
			errs = append(errs, itemErrs...)
			continue
		}
		out = append(out, value.(string))
	}
	return out, errs
}

func (f Field) cleanStructList(path string, raw any) (any, []domainerrors.FieldError) {
	items, ok := toList(raw)
	if !ok {
		return f.defaultValue(), []domainerrors.FieldError{fieldError(path, "%s is not iterable", quote(raw))}
	}

	out := make([]map[string]any, 0, len(items))
	var errs []domainerrors.FieldError
	for i, item := range items {
		itemPath := fmt.Sprintf("%s.%d", path, i)
		mapping, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, fieldError(itemPath, "%s is not a mapping type", quote(item)))
			continue
		}
		cleaned := make(map[string]any, len(f.Item))
		for _, sub := range f.Item {
			value, subErrs := sub.clean(itemPath+"."+sub.Name, mapping[sub.Name])
			errs = append(errs, subErrs...)
			cleaned[sub.Name] = value
		}
		out = append(out, cleaned)
	}
	return out, errs
}

// ParseTimestamp accepts ISO-8601 date-times with or without a zone. Zoned
// values are converted to UTC; naive values are read as UTC wall clock.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		TimestampLayout,
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"20060102T150405Z",
		"20060102T150405",
		"2006-01-02",
		"20060102",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return NormalizeTimestamp(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// TimestampLayout is the wire form of timestamps: ISO-8601 without zone.
const TimestampLayout = "2006-01-02T15:04:05"

func FormatTimestamp(value time.Time) string {
	return value.UTC().Format(TimestampLayout)
}

// NormalizeTimestamp is the stored form of a timestamp: UTC, whole seconds.
func NormalizeTimestamp(value time.Time) time.Time {
	return value.UTC().Truncate(time.Second)
}

func toTimestamp(raw any) (time.Time, error) {
	switch typed := raw.(type) {
	case time.Time:
		return NormalizeTimestamp(typed), nil
	case *time.Time:
		if typed == nil {
			return time.Time{}, fmt.Errorf("nil timestamp")
		}
		return NormalizeTimestamp(*typed), nil
	case string:
		return ParseTimestamp(typed)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp %T", raw)
	}
}

func parseBool(raw any) (bool, error) {
	switch typed := raw.(type) {
	case bool:
		return typed, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "t", "yes", "y", "on":
			return true, nil
		case "0", "false", "f", "no", "n", "off":
			return false, nil
		}
	case float64:
		if typed == 0 || typed == 1 {
			return typed == 1, nil
		}
	}
	return false, fmt.Errorf("not a boolean: %v", raw)
}

func toList(raw any) ([]any, bool) {
	switch typed := raw.(type) {
	case []any:
		return typed, true
	case []string:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			items = append(items, item)
		}
		return items, true
	case []map[string]any:
		items := make([]any, 0, len(typed))
		for _, item := range typed {
			items = append(items, item)
		}
		return items, true
	default:
		return nil, false
	}
}

func isAbsent(raw any) bool {
	switch typed := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case *time.Time:
		return typed == nil
	default:
		return false
	}
}

func isURL(value string) bool {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

func quote(raw any) string {
	return `"` + fmt.Sprint(raw) + `"`
}

func fieldError(path string, format string, args ...any) domainerrors.FieldError {
	return domainerrors.FieldError{
		Name:        path,
		Description: fmt.Sprintf(format, args...),
	}
}

func intPtr(value int) *int {
	return &value
}
