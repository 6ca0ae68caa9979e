package services

import (
	"errors"
	"testing"

	domainerrors "opendata/contexts/open-data/event-catalog-service/domain/errors"
)

func TestAccessPolicyAnonymousCallers(t *testing.T) {
	public := AccessPolicy{PublicRead: true}
	private := AccessPolicy{}

	if public.Admit(OperationList, "") != Allow || public.Admit(OperationRead, " ") != Allow {
		t.Fatal("public collections must admit anonymous reads")
	}
	if private.Admit(OperationList, "") != Forbidden || private.Admit(OperationRead, "") != Forbidden {
		t.Fatal("private collections must reject anonymous reads")
	}
	for _, op := range []Operation{OperationCreate, OperationUpdate, OperationDelete} {
		if public.Admit(op, "") != Forbidden {
			t.Fatalf("anonymous %s must be forbidden", op)
		}
		if public.Authorize(op, "", "provider-a") != Forbidden {
			t.Fatalf("anonymous %s on an existing record must be forbidden, not masked", op)
		}
	}
}

func TestAccessPolicyMasksForeignRecords(t *testing.T) {
	policy := AccessPolicy{}
	if policy.Authorize(OperationUpdate, "provider-a", "provider-a") != Allow {
		t.Fatal("owner must be allowed to update")
	}
	decision := policy.Authorize(OperationDelete, "provider-b", "provider-a")
	if decision != MaskedNotFound {
		t.Fatalf("expected masked not found, got %v", decision)
	}
	if !errors.Is(decision.Err(), domainerrors.ErrRecordNotFound) {
		t.Fatalf("masked decision must surface as not found, got %v", decision.Err())
	}
	if policy.Authorize(OperationRead, "provider-b", "provider-a") != MaskedNotFound {
		t.Fatal("private reads of foreign records must be masked")
	}
	if (AccessPolicy{PublicRead: true}).Authorize(OperationRead, "provider-b", "provider-a") != Allow {
		t.Fatal("public reads of foreign records must be allowed")
	}
	if policy.Authorize(OperationCreate, "provider-b", "") != Allow {
		t.Fatal("any identified caller may create")
	}
}

func TestAccessPolicyListScope(t *testing.T) {
	policy := AccessPolicy{PublicRead: true}
	if policy.ListScope("  provider-a ") != "provider-a" {
		t.Fatal("identified listings are scoped to the caller")
	}
	if policy.ListScope("") != "" {
		t.Fatal("anonymous listings are unscoped")
	}
}
