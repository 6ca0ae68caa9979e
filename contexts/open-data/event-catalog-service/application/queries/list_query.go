package queries

import (
	"net/url"
	"strings"
	"time"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// ListQuery is the parsed form of a collection query string.
type ListQuery struct {
	Offset     int
	Limit      int
	SortBy     string
	Descending bool
	Range      *ports.TimeRange
}

// ParseListQuery validates values against querySchema. Every violation is
// reported together; unknown parameters are ignored.
func ParseListQuery(values url.Values, querySchema schema.Schema) (ListQuery, error) {
	raw := make(map[string]any, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}

	fields, errs := querySchema.Validate(raw)
	if len(errs) > 0 {
		return ListQuery{}, domainerrors.NewValidationError(errs)
	}

	query := ListQuery{}
	query.Offset, _ = fields["offset"].(int)
	query.Limit, _ = fields["limit"].(int)
	query.SortBy, _ = fields["sort_by"].(string)
	direction, _ := fields["sort_direction"].(string)
	query.Descending = strings.EqualFold(direction, "desc")

	start, hasStart := fields["start_time"].(time.Time)
	end, hasEnd := fields["end_time"].(time.Time)
	if hasStart || hasEnd {
		query.Range = &ports.TimeRange{}
		if hasStart {
			query.Range.Start = &start
		}
		if hasEnd {
			query.Range.End = &end
		}
	}
	return query, nil
}

func (q ListQuery) Filter(owner string) ports.ListFilter {
	return ports.ListFilter{
		Owner:      owner,
		Offset:     q.Offset,
		Limit:      q.Limit,
		SortBy:     q.SortBy,
		Descending: q.Descending,
		Range:      q.Range,
	}
}
