package ports

import (
	"context"
	"time"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
)

// TimeRange is the half-open window [Start, End) a listing is restricted to.
// Nil bounds are open.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

type ListFilter struct {
	Owner      string
	Offset     int
	Limit      int
	SortBy     string
	Descending bool
	Range      *TimeRange
}

// RecordRepository stores the records of a single kind. Implementations
// return domainerrors.ErrRecordNotFound for unknown ids.
type RecordRepository interface {
	ListRecords(ctx context.Context, filter ListFilter) ([]entities.Record, error)
	CountRecords(ctx context.Context, filter ListFilter) (int, error)
	GetRecord(ctx context.Context, id string) (entities.Record, error)
	// CreateRecords persists every record or none of them.
	CreateRecords(ctx context.Context, records []entities.Record) error
	ReplaceRecord(ctx context.Context, record entities.Record) error
	DeleteRecord(ctx context.Context, id string) error
}

// EventUpserter inserts an event or overwrites the fields of the event
// carrying the same external id. The stored id of an existing event is kept.
type EventUpserter interface {
	UpsertEventByExternalID(ctx context.Context, record entities.Record) (entities.Record, bool, error)
}

type SourceLister interface {
	ListActiveSources(ctx context.Context) ([]entities.Record, error)
}

type FetchedFeed struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (FetchedFeed, error)
}

// FeedCandidate is one event read from a feed, before coercion.
type FeedCandidate struct {
	ExternalID string
	Fields     map[string]any
}

// FeedParser returns domainerrors.ErrFeedFormatUnrecognized for content
// types it cannot read.
type FeedParser interface {
	Parse(feed FetchedFeed) ([]FeedCandidate, error)
}

type HarvestMetrics interface {
	SourceFetched(outcome string)
	EventIngested(outcome string)
	SweepCompleted(duration time.Duration)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
