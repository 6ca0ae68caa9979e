package commands

import (
	"context"
	"log/slog"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

type CreateRecordsCommand struct {
	Caller  string
	Payload PayloadDecoder
}

type CreateRecordsResult struct {
	Records []entities.Record
}

type CreateRecordsUseCase struct {
	Resource    application.Resource
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute creates one or more records. A batch is validated as a whole and
// persisted in a single transaction, so one invalid item rejects all.
func (u CreateRecordsUseCase) Execute(ctx context.Context, cmd CreateRecordsCommand) (CreateRecordsResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if decision := u.Resource.Policy.Authorize(services.OperationCreate, cmd.Caller, ""); decision != services.Allow {
		return CreateRecordsResult{}, decision.Err()
	}

	items, err := decode(cmd.Payload)
	if err != nil {
		return CreateRecordsResult{}, err
	}
	cleaned, err := validateItems(u.Resource.Schema, items)
	if err != nil {
		logger.Info("create records rejected",
			"event", "catalog_create_records_rejected",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"item_count", len(items),
			"error", err.Error(),
		)
		return CreateRecordsResult{}, err
	}

	createdAt := now(u.Clock)
	records := make([]entities.Record, 0, len(cleaned))
	for _, fields := range cleaned {
		id, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return CreateRecordsResult{}, err
		}
		records = append(records, entities.Record{
			ID:        id,
			Kind:      u.Resource.Kind,
			Owner:     cmd.Caller,
			Fields:    fields,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}

	if err := u.Resource.Records.CreateRecords(ctx, records); err != nil {
		logger.Error("create records failed",
			"event", "catalog_create_records_failed",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"item_count", len(records),
			"error", err.Error(),
		)
		return CreateRecordsResult{}, err
	}

	logger.Info("records created",
		"event", "catalog_records_created",
		"module", "open-data/event-catalog-service",
		"layer", "application",
		"kind", string(u.Resource.Kind),
		"owner", cmd.Caller,
		"item_count", len(records),
	)
	return CreateRecordsResult{Records: records}, nil
}
