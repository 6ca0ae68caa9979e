package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// Repository stores the records of one kind in its own table.
type Repository[M any, PM rowModel[M]] struct {
	db         *gorm.DB
	logger     *slog.Logger
	sortable   map[string]struct{}
	timeRanged bool
}

type EventRepository struct {
	*Repository[eventModel, *eventModel]
}

type SourceRepository struct {
	*Repository[sourceModel, *sourceModel]
}

func NewEventRepository(db *gorm.DB, logger *slog.Logger) *EventRepository {
	return &EventRepository{newRepository[eventModel](db, logger, schema.Event)}
}

func NewSourceRepository(db *gorm.DB, logger *slog.Logger) *SourceRepository {
	return &SourceRepository{newRepository[sourceModel](db, logger, schema.Source)}
}

func newRepository[M any, PM rowModel[M]](db *gorm.DB, logger *slog.Logger, s schema.Schema) *Repository[M, PM] {
	if logger == nil {
		logger = slog.Default()
	}
	sortable := map[string]struct{}{schema.SortByID: {}}
	for _, name := range s.SortableNames() {
		sortable[name] = struct{}{}
	}
	return &Repository[M, PM]{
		db:         db,
		logger:     logger,
		sortable:   sortable,
		timeRanged: schema.HasTimeRange(s),
	}
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&eventModel{}, &sourceModel{})
}

func (r *Repository[M, PM]) ListRecords(ctx context.Context, filter ports.ListFilter) ([]entities.Record, error) {
	if filter.Limit == 0 {
		return []entities.Record{}, nil
	}

	tx := r.applySort(r.scope(ctx, filter), filter)
	tx = tx.Offset(filter.Offset)
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []M
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toRecords(rows)
}

func (r *Repository[M, PM]) CountRecords(ctx context.Context, filter ports.ListFilter) (int, error) {
	var count int64
	if err := r.scope(ctx, filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository[M, PM]) GetRecord(ctx context.Context, id string) (entities.Record, error) {
	var row M
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Record{}, domainerrors.ErrRecordNotFound
		}
		return entities.Record{}, err
	}
	return PM(&row).record()
}

// CreateRecords inserts the batch in one transaction, keeping the order of
// records as their insertion sequence.
func (r *Repository[M, PM]) CreateRecords(ctx context.Context, records []entities.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := r.nextSeq(tx)
		if err != nil {
			return err
		}
		rows := make([]M, len(records))
		for i, record := range records {
			if err := PM(&rows[i]).fill(record, seq+int64(i)); err != nil {
				return err
			}
		}
		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateRecord
			}
			return err
		}
		return nil
	})
}

func (r *Repository[M, PM]) ReplaceRecord(ctx context.Context, record entities.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing M
		if err := tx.Where("id = ?", record.ID).Take(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrRecordNotFound
			}
			return err
		}
		current, err := PM(&existing).record()
		if err != nil {
			return err
		}

		record.Owner = current.Owner
		record.ExternalID = current.ExternalID
		record.CreatedAt = current.CreatedAt
		var row M
		if err := PM(&row).fill(record, PM(&existing).sequence()); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
}

func (r *Repository[M, PM]) DeleteRecord(ctx context.Context, id string) error {
	var zero M
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&zero)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRecordNotFound
	}
	return nil
}

func (r *Repository[M, PM]) scope(ctx context.Context, filter ports.ListFilter) *gorm.DB {
	var zero M
	tx := r.db.WithContext(ctx).Model(&zero)
	if filter.Owner != "" {
		tx = tx.Where("owner = ?", filter.Owner)
	}
	if r.timeRanged && filter.Range != nil {
		if filter.Range.End != nil {
			tx = tx.Where("start_time < ?", filter.Range.End.UTC())
		}
		if filter.Range.Start != nil {
			start := filter.Range.Start.UTC()
			tx = tx.Where("((end_time IS NULL AND start_time >= ?) OR (end_time IS NOT NULL AND end_time > ?))", start, start)
		}
	}
	return tx
}

func (r *Repository[M, PM]) applySort(tx *gorm.DB, filter ports.ListFilter) *gorm.DB {
	if _, ok := r.sortable[filter.SortBy]; ok && filter.SortBy != "" {
		// Unset values sort first ascending and last descending on every
		// dialect, as the in-memory store does.
		direction := "ASC NULLS FIRST"
		if filter.Descending {
			direction = "DESC NULLS LAST"
		}
		tx = tx.Order(tx.Statement.Quote(filter.SortBy) + " " + direction)
	}
	return tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "seq"}, Desc: filter.Descending && filter.SortBy == ""}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: filter.Descending && filter.SortBy == ""})
}

func (r *Repository[M, PM]) nextSeq(tx *gorm.DB) (int64, error) {
	var zero M
	var current int64
	if err := tx.Model(&zero).Select("COALESCE(MAX(seq), 0)").Scan(&current).Error; err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *Repository[M, PM]) toRecords(rows []M) ([]entities.Record, error) {
	items := make([]entities.Record, 0, len(rows))
	for i := range rows {
		record, err := PM(&rows[i]).record()
		if err != nil {
			r.logger.Error("stored record could not be decoded",
				"event", "catalog_record_decode_failed",
				"module", "open-data/event-catalog-service",
				"layer", "adapter",
				"error", err.Error(),
			)
			return nil, domainerrors.ErrRepositoryInvariantBroke
		}
		items = append(items, record)
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// sqlite drivers built without an error translator
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
