package postgresadapter

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
)

// rowModel is implemented by the pointer of every table model. The full
// cleaned field map lives in the document column; sortable and filterable
// fields are mirrored into plain columns named after the field.
type rowModel[M any] interface {
	*M
	fill(record entities.Record, seq int64) error
	record() (entities.Record, error)
	sequence() int64
}

type eventModel struct {
	ID               string         `gorm:"column:id;primaryKey"`
	Owner            string         `gorm:"column:owner;index"`
	ExternalID       *string        `gorm:"column:external_id;uniqueIndex"`
	Seq              int64          `gorm:"column:seq;index"`
	Title            string         `gorm:"column:title"`
	Organiser        string         `gorm:"column:organiser"`
	LocationName     string         `gorm:"column:location_name"`
	LocationTown     string         `gorm:"column:location_town"`
	StartTime        *time.Time     `gorm:"column:start_time;index"`
	EndTime          *time.Time     `gorm:"column:end_time"`
	PublicationStart *time.Time     `gorm:"column:publication_start"`
	PublicationEnd   *time.Time     `gorm:"column:publication_end"`
	Document         datatypes.JSON `gorm:"column:document"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (eventModel) TableName() string {
	return "catalog_events"
}

func (m *eventModel) sequence() int64 {
	return m.Seq
}

func (m *eventModel) fill(record entities.Record, seq int64) error {
	document, err := encodeDocument(record.Fields)
	if err != nil {
		return err
	}
	m.ID = record.ID
	m.Owner = record.Owner
	m.ExternalID = nil
	if record.ExternalID != "" {
		externalID := record.ExternalID
		m.ExternalID = &externalID
	}
	m.Seq = seq
	m.Title = record.String("title")
	m.Organiser = record.String("organiser")
	m.LocationName = record.String("location_name")
	m.LocationTown = record.String("location_town")
	m.StartTime = optionalTime(record, "start_time")
	m.EndTime = optionalTime(record, "end_time")
	m.PublicationStart = optionalTime(record, "publication_start")
	m.PublicationEnd = optionalTime(record, "publication_end")
	m.Document = document
	m.CreatedAt = record.CreatedAt.UTC()
	m.UpdatedAt = record.UpdatedAt.UTC()
	return nil
}

func (m *eventModel) record() (entities.Record, error) {
	fields, err := decodeDocument(schema.Event, m.Document)
	if err != nil {
		return entities.Record{}, fmt.Errorf("event %s: %w", m.ID, err)
	}
	externalID := ""
	if m.ExternalID != nil {
		externalID = *m.ExternalID
	}
	return entities.Record{
		ID:         m.ID,
		Kind:       entities.KindEvent,
		Owner:      m.Owner,
		ExternalID: externalID,
		Fields:     fields,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}, nil
}

type sourceModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	Owner     string         `gorm:"column:owner;index"`
	Seq       int64          `gorm:"column:seq;index"`
	URL       string         `gorm:"column:url"`
	Active    bool           `gorm:"column:active;index"`
	Document  datatypes.JSON `gorm:"column:document"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (sourceModel) TableName() string {
	return "catalog_sources"
}

func (m *sourceModel) sequence() int64 {
	return m.Seq
}

func (m *sourceModel) fill(record entities.Record, seq int64) error {
	document, err := encodeDocument(record.Fields)
	if err != nil {
		return err
	}
	m.ID = record.ID
	m.Owner = record.Owner
	m.Seq = seq
	m.URL = record.String("url")
	m.Active = record.Bool("active")
	m.Document = document
	m.CreatedAt = record.CreatedAt.UTC()
	m.UpdatedAt = record.UpdatedAt.UTC()
	return nil
}

func (m *sourceModel) record() (entities.Record, error) {
	fields, err := decodeDocument(schema.Source, m.Document)
	if err != nil {
		return entities.Record{}, fmt.Errorf("source %s: %w", m.ID, err)
	}
	return entities.Record{
		ID:        m.ID,
		Kind:      entities.KindSource,
		Owner:     m.Owner,
		Fields:    fields,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

func encodeDocument(fields entities.Fields) (datatypes.JSON, error) {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		if ts, ok := value.(time.Time); ok {
			value = schema.FormatTimestamp(ts)
		}
		out[name] = value
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}

// decodeDocument re-cleans a stored document so values regain their typed
// form (timestamps, string lists, struct lists).
func decodeDocument(s schema.Schema, document datatypes.JSON) (entities.Fields, error) {
	raw := map[string]any{}
	if len(document) > 0 {
		if err := json.Unmarshal(document, &raw); err != nil {
			return nil, err
		}
	}
	fields, _ := s.Coerce(raw)
	return fields, nil
}

func optionalTime(record entities.Record, name string) *time.Time {
	value, ok := record.Time(name)
	if !ok {
		return nil
	}
	value = value.UTC()
	return &value
}
