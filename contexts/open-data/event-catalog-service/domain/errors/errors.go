package errors

import (
	"errors"
	"strings"
)

var (
	ErrRecordNotFound           = errors.New("record not found")
	ErrForbidden                = errors.New("caller identity required")
	ErrNotAcceptable            = errors.New("no acceptable representation")
	ErrUnsupportedContentType   = errors.New("unsupported content type")
	ErrInvalidPayload           = errors.New("invalid payload")
	ErrValidation               = errors.New("validation failed")
	ErrDuplicateRecord          = errors.New("record already exists")
	ErrFeedFetchFailed          = errors.New("feed fetch failed")
	ErrFeedParseFailed          = errors.New("feed parse failed")
	ErrFeedFormatUnrecognized   = errors.New("feed format unrecognized")
	ErrRepositoryInvariantBroke = errors.New("repository invariant violated")
)

// Request locations reported with field errors.
const (
	LocationBody        = "body"
	LocationQueryString = "querystring"
)

// FieldError describes one violated constraint.
type FieldError struct {
	Location    string `json:"location"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidationError carries every violation found in a payload or query.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: append([]FieldError(nil), errs...)}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Name+": "+fe.Description)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
