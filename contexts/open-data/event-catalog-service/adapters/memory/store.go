package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// Store is an in-memory adapter implementing the catalog ports for local
// runtime and tests. It is not intended as production persistence.
type Store struct {
	mu         sync.RWMutex
	records    map[entities.Kind]map[string]storedRecord
	externalID map[string]string
	sequence   uint64
	ids        uint64
	idDomain   string
	logger     *slog.Logger
}

type storedRecord struct {
	record entities.Record
	seq    uint64
}

func NewStore(idDomain string, logger *slog.Logger) *Store {
	return &Store{
		records: map[entities.Kind]map[string]storedRecord{
			entities.KindEvent:  {},
			entities.KindSource: {},
		},
		externalID: make(map[string]string),
		idDomain:   idDomain,
		logger:     application.ResolveLogger(logger),
	}
}

// Collection returns a RecordRepository view over one kind.
func (s *Store) Collection(kind entities.Kind) *Collection {
	return &Collection{store: s, kind: kind}
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	value := atomic.AddUint64(&s.ids, 1)
	id := fmt.Sprintf("%032x", value)
	if s.idDomain != "" {
		id += "@" + s.idDomain
	}
	return id, nil
}

func (s *Store) UpsertEventByExternalID(_ context.Context, record entities.Record) (entities.Record, bool, error) {
	if record.ExternalID == "" {
		return entities.Record{}, false, domainerrors.ErrRepositoryInvariantBroke
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.records[entities.KindEvent]
	if id, ok := s.externalID[record.ExternalID]; ok {
		if existing, ok := events[id]; ok {
			record.ID = existing.record.ID
			record.Owner = existing.record.Owner
			record.CreatedAt = existing.record.CreatedAt
			record.Kind = entities.KindEvent
			record.Fields = record.Fields.Clone()
			events[id] = storedRecord{record: record, seq: existing.seq}
			return cloneRecord(record), false, nil
		}
	}

	s.sequence++
	record.Kind = entities.KindEvent
	record.Fields = record.Fields.Clone()
	events[record.ID] = storedRecord{record: record, seq: s.sequence}
	s.externalID[record.ExternalID] = record.ID
	return cloneRecord(record), true, nil
}

func (s *Store) ListActiveSources(_ context.Context) ([]entities.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []storedRecord
	for _, stored := range s.records[entities.KindSource] {
		if stored.record.Bool("active") {
			active = append(active, stored)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].seq < active[j].seq })

	items := make([]entities.Record, 0, len(active))
	for _, stored := range active {
		items = append(items, cloneRecord(stored.record))
	}
	return items, nil
}

// Count reports how many records of kind are stored.
func (s *Store) Count(kind entities.Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[kind])
}

// Collection is the RecordRepository of one kind backed by a Store.
type Collection struct {
	store *Store
	kind  entities.Kind
}

func (c *Collection) ListRecords(_ context.Context, filter ports.ListFilter) ([]entities.Record, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	matched := c.filtered(filter)
	sortRecords(matched, filter)

	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit >= 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	items := make([]entities.Record, 0, end-start)
	for _, stored := range matched[start:end] {
		items = append(items, cloneRecord(stored.record))
	}
	return items, nil
}

func (c *Collection) CountRecords(_ context.Context, filter ports.ListFilter) (int, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return len(c.filtered(filter)), nil
}

func (c *Collection) GetRecord(_ context.Context, id string) (entities.Record, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	stored, ok := c.store.records[c.kind][id]
	if !ok {
		return entities.Record{}, domainerrors.ErrRecordNotFound
	}
	return cloneRecord(stored.record), nil
}

func (c *Collection) CreateRecords(_ context.Context, records []entities.Record) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	table := c.store.records[c.kind]
	for _, record := range records {
		if _, exists := table[record.ID]; exists {
			return domainerrors.ErrDuplicateRecord
		}
	}
	for _, record := range records {
		c.store.sequence++
		record.Kind = c.kind
		record.Fields = record.Fields.Clone()
		table[record.ID] = storedRecord{record: record, seq: c.store.sequence}
	}
	return nil
}

func (c *Collection) ReplaceRecord(_ context.Context, record entities.Record) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	table := c.store.records[c.kind]
	existing, ok := table[record.ID]
	if !ok {
		return domainerrors.ErrRecordNotFound
	}
	record.Kind = c.kind
	record.Owner = existing.record.Owner
	record.ExternalID = existing.record.ExternalID
	record.CreatedAt = existing.record.CreatedAt
	record.Fields = record.Fields.Clone()
	table[record.ID] = storedRecord{record: record, seq: existing.seq}
	return nil
}

func (c *Collection) DeleteRecord(_ context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	table := c.store.records[c.kind]
	existing, ok := table[id]
	if !ok {
		return domainerrors.ErrRecordNotFound
	}
	delete(table, id)
	if existing.record.ExternalID != "" {
		delete(c.store.externalID, existing.record.ExternalID)
	}
	return nil
}

func (c *Collection) filtered(filter ports.ListFilter) []storedRecord {
	var matched []storedRecord
	for _, stored := range c.store.records[c.kind] {
		if filter.Owner != "" && stored.record.Owner != filter.Owner {
			continue
		}
		if filter.Range != nil && !inRange(stored.record, filter.Range) {
			continue
		}
		matched = append(matched, stored)
	}
	return matched
}

func inRange(record entities.Record, window *ports.TimeRange) bool {
	start, ok := record.Time("start_time")
	if !ok {
		return false
	}
	var end *time.Time
	if value, ok := record.Time("end_time"); ok {
		end = &value
	}
	return services.OverlapsRange(start, end, window.Start, window.End)
}

func sortRecords(items []storedRecord, filter ports.ListFilter) {
	sort.SliceStable(items, func(i, j int) bool {
		if filter.SortBy != "" {
			if cmp := compareField(items[i].record, items[j].record, filter.SortBy); cmp != 0 {
				if filter.Descending {
					return cmp > 0
				}
				return cmp < 0
			}
			return items[i].seq < items[j].seq
		}
		if filter.Descending {
			return items[i].seq > items[j].seq
		}
		return items[i].seq < items[j].seq
	})
}

// compareField orders nulls first; the gorm repository sorts with an
// explicit NULLS FIRST to agree.
func compareField(a, b entities.Record, name string) int {
	if name == "id" {
		return compareStrings(a.ID, b.ID)
	}
	switch left := a.Fields[name].(type) {
	case string:
		right, _ := b.Fields[name].(string)
		return compareStrings(left, right)
	case bool:
		right, _ := b.Fields[name].(bool)
		switch {
		case left == right:
			return 0
		case !left:
			return -1
		default:
			return 1
		}
	case time.Time:
		right, ok := b.Fields[name].(time.Time)
		switch {
		case !ok:
			return 1
		case left.Before(right):
			return -1
		case left.After(right):
			return 1
		default:
			return 0
		}
	default:
		if _, ok := b.Fields[name].(time.Time); ok {
			return -1
		}
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cloneRecord(record entities.Record) entities.Record {
	record.Fields = record.Fields.Clone()
	return record
}
