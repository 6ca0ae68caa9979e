package schema

import domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"

// SortByID is accepted as a sort key by every collection.
const SortByID = "id"

// ListQuery builds the query string schema of a collection. Collections
// with a start_time field also accept start_time/end_time range filters.
func ListQuery(resource Schema) Schema {
	sortable := append([]string{SortByID}, resource.SortableNames()...)
	fields := []Field{
		{Name: "limit", Type: TypeInteger, Min: intPtr(0), Max: intPtr(CollectionMaxLength), Default: CollectionMaxLength},
		{Name: "offset", Type: TypeInteger, Min: intPtr(0), Default: 0},
		{Name: "sort_by", Type: TypeString, OneOf: sortable},
		{Name: "sort_direction", Type: TypeString, OneOf: []string{"asc", "desc"}, Default: "asc"},
	}
	if HasTimeRange(resource) {
		fields = append(fields,
			Field{Name: "start_time", Type: TypeTimestamp},
			Field{Name: "end_time", Type: TypeTimestamp},
		)
	}
	return Schema{
		Name:     resource.Name + "_query",
		Location: domainerrors.LocationQueryString,
		Fields:   fields,
	}
}

// HasTimeRange reports whether records of the schema occupy a time span.
func HasTimeRange(resource Schema) bool {
	_, ok := resource.Field("start_time")
	return ok
}
