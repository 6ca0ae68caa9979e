package application

import (
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// Resource configures the engine for one entity kind.
type Resource struct {
	Kind    entities.Kind
	Schema  schema.Schema
	Policy  services.AccessPolicy
	Records ports.RecordRepository
}

func (r Resource) QuerySchema() schema.Schema {
	return schema.ListQuery(r.Schema)
}
