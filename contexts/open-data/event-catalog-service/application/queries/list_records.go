package queries

import (
	"context"
	"log/slog"
	"net/url"

	application "opendata/contexts/open-data/event-catalog-service/application"
	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	"opendata/contexts/open-data/event-catalog-service/domain/services"
)

type ListRecordsQuery struct {
	Caller string
	Values url.Values
}

type ListRecordsResult struct {
	Items []entities.Record
	Total int
	Query ListQuery
}

type ListRecordsUseCase struct {
	Resource application.Resource
	Logger   *slog.Logger
}

func (u ListRecordsUseCase) Execute(ctx context.Context, query ListRecordsQuery) (ListRecordsResult, error) {
	logger := application.ResolveLogger(u.Logger)
	if decision := u.Resource.Policy.Admit(services.OperationList, query.Caller); decision != services.Allow {
		return ListRecordsResult{}, decision.Err()
	}

	parsed, err := ParseListQuery(query.Values, u.Resource.QuerySchema())
	if err != nil {
		return ListRecordsResult{}, err
	}

	filter := parsed.Filter(u.Resource.Policy.ListScope(query.Caller))
	total, err := u.Resource.Records.CountRecords(ctx, filter)
	if err != nil {
		logger.Error("count records failed",
			"event", "catalog_count_records_failed",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"error", err.Error(),
		)
		return ListRecordsResult{}, err
	}

	items, err := u.Resource.Records.ListRecords(ctx, filter)
	if err != nil {
		logger.Error("list records failed",
			"event", "catalog_list_records_failed",
			"module", "open-data/event-catalog-service",
			"layer", "application",
			"kind", string(u.Resource.Kind),
			"error", err.Error(),
		)
		return ListRecordsResult{}, err
	}

	logger.Debug("records listed",
		"event", "catalog_records_listed",
		"module", "open-data/event-catalog-service",
		"layer", "application",
		"kind", string(u.Resource.Kind),
		"owner", filter.Owner,
		"total", total,
		"count", len(items),
	)
	return ListRecordsResult{Items: items, Total: total, Query: parsed}, nil
}
