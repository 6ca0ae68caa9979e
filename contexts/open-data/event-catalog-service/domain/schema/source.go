package schema

import (
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

// Source is the field table of the sources collection.
var Source = Schema{
	Name:     string(entities.KindSource),
	Location: domainerrors.LocationBody,
	Fields: []Field{
		{Name: "url", Type: TypeString, Required: true, MaxLength: SafeMaxLength, URL: true, Sortable: true},
		{Name: "active", Type: TypeBoolean, Default: false, Sortable: true},
	},
}
