package hypermedia

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"opendata/contexts/open-data/event-catalog-service/domain/schema"
)

const (
	csvListSeparator  = ";"
	csvValueSeparator = "|"
)

// EncodeCSV writes a header of id plus schema fields, then one row per
// record. List values are joined with ";" and struct items render their
// values joined with "|".
func EncodeCSV(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append([]string{"id"}, doc.Schema.Names()...)
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, record := range doc.Records {
		row := make([]string, 0, len(header))
		row = append(row, record.ID)
		for _, field := range doc.Schema.Fields {
			row = append(row, csvCell(field, fieldValue(field, record)))
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvCell(field schema.Field, value any) string {
	switch typed := RenderValue(value).(type) {
	case nil:
		return ""
	case string:
		return typed
	case []string:
		return strings.Join(typed, csvListSeparator)
	case []map[string]any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			parts := make([]string, 0, len(field.Item))
			for _, sub := range field.Item {
				parts = append(parts, csvCell(sub, item[sub.Name]))
			}
			items = append(items, strings.Join(parts, csvValueSeparator))
		}
		return strings.Join(items, csvListSeparator)
	default:
		return fmt.Sprint(typed)
	}
}
