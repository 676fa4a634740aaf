// Package contract checks that adapters honor the canonical record and error
// contracts. Adapter tests run these suites against fake upstreams.
package contract

import (
	"context"
	"testing"

	"nsg/internal/registry/models"
	"nsg/internal/registry/providers"
)

// ContractTest is one successful lookup to validate.
type ContractTest struct {
	Name         string
	Provider     providers.Provider
	NationalID   string
	Identifier   string
	ValidateFunc func(rec *models.CompanyRecord) error
}

// ContractSuite groups the contract tests of one jurisdiction.
type ContractSuite struct {
	Jurisdiction models.Jurisdiction
	Tests        []ContractTest
}

// Run executes all contract tests in the suite.
func (s *ContractSuite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			if got := test.Provider.Jurisdiction(); got != s.Jurisdiction {
				t.Fatalf("expected jurisdiction %s, got %s", s.Jurisdiction, got)
			}

			rec, err := test.Provider.Fetch(context.Background(), test.NationalID, test.Identifier)
			if err != nil {
				t.Fatalf("provider fetch failed: %v", err)
			}
			ValidateRecord(t, s.Jurisdiction, rec)

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(rec); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// ValidateRecord asserts the invariants every canonical record holds.
func ValidateRecord(t *testing.T, j models.Jurisdiction, rec *models.CompanyRecord) {
	t.Helper()
	if rec == nil {
		t.Fatal("record is nil")
	}
	if rec.Identifier.Notation == "" || rec.Identifier.IssuingAuthorityName == "" {
		t.Errorf("identifier incomplete: %+v", rec.Identifier)
	}
	if rec.Name == "" {
		t.Error("name not set")
	}
	if rec.RegistrationDate.IsZero() {
		t.Error("registration date not set")
	}
	if models.HasLegalForms(j.String()) {
		code, err := models.ParseLegalForm(string(rec.LegalForm.Code))
		if err != nil {
			t.Errorf("legal form: %v", err)
		} else if code.Country() != j.String() {
			t.Errorf("legal form %s does not belong to %s", code, j)
		}
	}
	if rec.LegalStatus != models.LegalStatusNoRegistered && rec.LegalStatus != models.LegalStatusSomeRegistered {
		t.Errorf("unexpected legal status %q", rec.LegalStatus)
	}
	if len(rec.Activity) > 3 {
		t.Errorf("at most three activities, got %d", len(rec.Activity))
	}
}

// ErrorContractTest validates that a failing lookup is classified correctly.
type ErrorContractTest struct {
	Name              string
	Provider          providers.Provider
	NationalID        string
	Identifier        string
	ExpectedCategory  providers.Category
	ExpectedTransient bool
}

// Run executes an error contract test.
func (ect *ErrorContractTest) Run(t *testing.T) {
	t.Helper()
	_, err := ect.Provider.Fetch(context.Background(), ect.NationalID, ect.Identifier)
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if category := providers.GetCategory(err); category != ect.ExpectedCategory {
		t.Errorf("expected error category %s, got %s (%v)", ect.ExpectedCategory, category, err)
	}
	if transient := providers.IsTransient(err); transient != ect.ExpectedTransient {
		t.Errorf("expected transient=%v, got %v", ect.ExpectedTransient, transient)
	}
}
