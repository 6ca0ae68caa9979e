package commands

import (
	"context"
	"log/slog"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
)

type DeleteRecordCommand struct {
	Caller string
	ID     string
}

type DeleteRecordUseCase struct {
	Resource application.Resource
	Logger   *slog.Logger
}

func (u DeleteRecordUseCase) Execute(ctx context.Context, cmd DeleteRecordCommand) error {
	logger := application.ResolveLogger(u.Logger)
	if decision := u.Resource.Policy.Admit(services.OperationDelete, cmd.Caller); decision != services.Allow {
		return decision.Err()
	}

	record, err := u.Resource.Records.GetRecord(ctx, cmd.ID)
	if err != nil {
		return err
	}
	if decision := u.Resource.Policy.Authorize(services.OperationDelete, cmd.Caller, record.Owner); decision != services.Allow {
		return decision.Err()
	}

	if err := u.Resource.Records.DeleteRecord(ctx, cmd.ID); err != nil {
		logger.Error("delete record failed",
			"event", "catalog_delete_record_failed",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"record_id", cmd.ID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("record deleted",
		"event", "catalog_record_deleted",
		"module", "open-data/event-catalog-service",
		"layer", "application",
		"kind", string(u.Resource.Kind),
		"record_id", cmd.ID,
	)
	return nil
}
