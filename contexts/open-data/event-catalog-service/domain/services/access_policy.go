package services

import (
	"strings"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

type Operation string

const (
	OperationList   Operation = "list"
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

type Decision int

const (
	Allow Decision = iota
	Forbidden
	MaskedNotFound
)

// Err maps a decision onto the sentinel surfaced to callers.
func (d Decision) Err() error {
	switch d {
	case Forbidden:
		return domainerrors.ErrForbidden
	case MaskedNotFound:
		return domainerrors.ErrRecordNotFound
	default:
		return nil
	}
}

// AccessPolicy decides who may touch a collection. Writes always need an
// identity; reads need one unless the collection is public.
type AccessPolicy struct {
	PublicRead bool
}

func (p AccessPolicy) isRead(op Operation) bool {
	return op == OperationList || op == OperationRead
}

// Admit is evaluated before any lookup so anonymous callers never learn
// whether an id exists.
func (p AccessPolicy) Admit(op Operation, caller string) Decision {
	if strings.TrimSpace(caller) != "" {
		return Allow
	}
	if p.isRead(op) && p.PublicRead {
		return Allow
	}
	return Forbidden
}

// Authorize checks op against an existing record owned by owner. A non-owner
// receives the same answer as for an absent record.
func (p AccessPolicy) Authorize(op Operation, caller, owner string) Decision {
	if decision := p.Admit(op, caller); decision != Allow {
		return decision
	}
	if op == OperationCreate || op == OperationList {
		return Allow
	}
	if p.isRead(op) && p.PublicRead {
		return Allow
	}
	if strings.TrimSpace(caller) == owner {
		return Allow
	}
	return MaskedNotFound
}

// ListScope returns the owner a listing is restricted to, or "" for all.
func (p AccessPolicy) ListScope(caller string) string {
	return strings.TrimSpace(caller)
}
