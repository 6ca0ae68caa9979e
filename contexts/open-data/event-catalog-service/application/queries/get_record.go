package queries

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
)

type GetRecordQuery struct {
	Caller string
	ID     string
}

type GetRecordUseCase struct {
	Resource application.Resource
	Logger   *slog.Logger
}

func (u GetRecordUseCase) Execute(ctx context.Context, query GetRecordQuery) (entities.Record, error) {
	logger := application.ResolveLogger(u.Logger)
	if decision := u.Resource.Policy.Admit(services.OperationRead, query.Caller); decision != services.Allow {
		return entities.Record{}, decision.Err()
	}
	if strings.TrimSpace(query.ID) == "" {
		return entities.Record{}, domainerrors.ErrRecordNotFound
	}

	record, err := u.Resource.Records.GetRecord(ctx, query.ID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrRecordNotFound) {
			logger.Error("get record failed",
				"event", "catalog_get_record_failed",
				"module", "open-data/event-catalog-service",
				"layer", "application",
				"kind", string(u.Resource.Kind),
				"record_id", query.ID,
				"error", err.Error(),
			)
		}
		return entities.Record{}, err
	}

	if decision := u.Resource.Policy.Authorize(services.OperationRead, query.Caller, record.Owner); decision != services.Allow {
		return entities.Record{}, decision.Err()
	}
	return record, nil
}
