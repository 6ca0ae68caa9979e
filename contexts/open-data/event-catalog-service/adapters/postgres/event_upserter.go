package postgresadapter

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

// UpsertEventByExternalID inserts record, or overwrites the fields of the
// event already stored under the same external id. The stored id, owner and
// creation time are kept. A concurrent insert of the same external id is
// retried once as an update.
func (r *EventRepository) UpsertEventByExternalID(ctx context.Context, record entities.Record) (entities.Record, bool, error) {
	if record.ExternalID == "" {
		return entities.Record{}, false, domainerrors.ErrRepositoryInvariantBroke
	}

	stored, created, err := r.upsert(ctx, record)
	if err != nil && errors.Is(err, domainerrors.ErrDuplicateRecord) {
		stored, created, err = r.upsert(ctx, record)
	}
	return stored, created, err
}

func (r *EventRepository) upsert(ctx context.Context, record entities.Record) (entities.Record, bool, error) {
	var stored entities.Record
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing eventModel
		err := tx.Where("external_id = ?", record.ExternalID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq, err := r.nextSeq(tx)
			if err != nil {
				return err
			}
			var row eventModel
			if err := row.fill(record, seq); err != nil {
				return err
			}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrDuplicateRecord
				}
				return err
			}
			stored = record
			created = true
			return nil
		case err != nil:
			return err
		}

		record.ID = existing.ID
		record.Owner = existing.Owner
		record.CreatedAt = existing.CreatedAt.UTC()
		var row eventModel
		if err := row.fill(record, existing.Seq); err != nil {
			return err
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		stored = record
		return nil
	})
	if err != nil {
		return entities.Record{}, false, err
	}
	return stored, created, nil
}

// ListActiveSources returns active sources in insertion order.
func (r *SourceRepository) ListActiveSources(ctx context.Context) ([]entities.Record, error) {
	var rows []sourceModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("seq ASC").
		Order("id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return r.toRecords(rows)
}
