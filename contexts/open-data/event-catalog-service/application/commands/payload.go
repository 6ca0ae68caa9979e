package commands

import (
	"fmt"
	"time"

	"opendata/contexts/open-data/event-catalog-service/domain/entities"
	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
	"opendata/contexts/open-data/event-catalog-service/domain/schema"
	"opendata/contexts/open-data/event-catalog-service/ports"
)

// PayloadDecoder yields the raw items of a write request. It is invoked only
// after the caller has been authorized, so Content-Type and body errors never
// leak to callers who may not write.
type PayloadDecoder func() ([]map[string]any, error)

// validateItems cleans every item and collects all violations. Field names
// are prefixed with the item index when more than one item was sent.
func validateItems(itemSchema schema.Schema, items []map[string]any) ([]entities.Fields, error) {
	cleaned := make([]entities.Fields, 0, len(items))
	var errs []domainerrors.FieldError
	for i, item := range items {
		fields, fieldErrs := itemSchema.Validate(item)
		if len(items) > 1 {
			for j := range fieldErrs {
				fieldErrs[j].Name = fmt.Sprintf("items.%d.%s", i, fieldErrs[j].Name)
			}
		}
		errs = append(errs, fieldErrs...)
		cleaned = append(cleaned, fields)
	}
	if len(errs) > 0 {
		return nil, domainerrors.NewValidationError(errs)
	}
	return cleaned, nil
}

func decode(decoder PayloadDecoder) ([]map[string]any, error) {
	if decoder == nil {
		return nil, fmt.Errorf("%w: empty body", domainerrors.ErrInvalidPayload)
	}
	items, err := decoder()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", domainerrors.ErrInvalidPayload)
	}
	return items, nil
}

func now(clock ports.Clock) time.Time {
	if clock != nil {
		return clock.Now().UTC()
	}
	return time.Now().UTC()
}
