package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

type ReplaceRecordCommand struct {
	Caller  string
	ID      string
	Payload PayloadDecoder
}

type ReplaceRecordUseCase struct {
	Resource application.Resource
	Clock    ports.Clock
	Logger   *slog.Logger
}

// Execute replaces every field of a record; fields absent from the payload
// fall back to their defaults. Identity, then ownership, then the payload
// are checked, in that order.
func (u ReplaceRecordUseCase) Execute(ctx context.Context, cmd ReplaceRecordCommand) (entities.Record, error) {
	logger := application.ResolveLogger(u.Logger)
	if decision := u.Resource.Policy.Admit(services.OperationUpdate, cmd.Caller); decision != services.Allow {
		return entities.Record{}, decision.Err()
	}

	record, err := u.Resource.Records.GetRecord(ctx, cmd.ID)
	if err != nil {
		return entities.Record{}, err
	}
	if decision := u.Resource.Policy.Authorize(services.OperationUpdate, cmd.Caller, record.Owner); decision != services.Allow {
		logger.Warn("replace record denied",
			"event", "catalog_replace_record_denied",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"record_id", cmd.ID,
		)
		return entities.Record{}, decision.Err()
	}

	items, err := decode(cmd.Payload)
	if err != nil {
		return entities.Record{}, err
	}
	if len(items) != 1 {
		return entities.Record{}, fmt.Errorf("%w: replace takes exactly one item", domainerrors.ErrInvalidPayload)
	}
	cleaned, err := validateItems(u.Resource.Schema, items)
	if err != nil {
		return entities.Record{}, err
	}

	record.Fields = cleaned[0]
	record.UpdatedAt = now(u.Clock)
	if err := u.Resource.Records.ReplaceRecord(ctx, record); err != nil {
		logger.Error("replace record failed",
			"event", "catalog_replace_record_failed",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"record_id", cmd.ID,
			"error", err.Error(),
		)
		return entities.Record{}, err
	}

	logger.Info("record replaced",
		"event", "catalog_record_replaced",
		"module", "open-data/event-catalog-service",
		"layer", "application",
		"kind", string(u.Resource.Kind),
		"record_id", cmd.ID,
	)
	return record, nil
}
