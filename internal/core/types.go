// Package core implements the buyer-lead pipeline: candidate validation,
// CSV transcoding, bulk-import reconciliation and the field-level change
// diff that feeds the audit trail. It has no transport or UI dependencies.
package core

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a fully validated, normalized buyer record. Optional attributes
// use pointers so that "not provided" is explicit rather than a zero value;
// only the validator produces Lead values from raw input.
type Lead struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"fullName"`
	Email        *string   `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PropertyType string    `json:"propertyType"`
	Bhk          *string   `json:"bhk"`
	Purpose      string    `json:"purpose"`
	BudgetMin    *int64    `json:"budgetMin"`
	BudgetMax    *int64    `json:"budgetMax"`
	Timeline     string    `json:"timeline"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	Notes        *string   `json:"notes"`
	Tags         []string  `json:"tags"`
	OwnerID      uuid.UUID `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Candidate is a raw, untrusted record as produced by a form or a CSV row.
// All scalar values are carried as text; the validator owns every coercion
// so that no implicit defaults leak in at call sites.
type Candidate struct {
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	Bhk          string   `json:"bhk"`
	Purpose      string   `json:"purpose"`
	BudgetMin    string   `json:"budgetMin"`
	BudgetMax    string   `json:"budgetMax"`
	Timeline     string   `json:"timeline"`
	Source       string   `json:"source"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"`
}

// ChangeRecord is an append-only audit entry for a lead. Diff maps changed
// field names to their old/new values; create and import events carry a
// single marker field instead of a per-field diff.
type ChangeRecord struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	ChangedBy uuid.UUID `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
	Diff      Diff      `json:"diff"`
}

// Filter is the exact-match/search surface for lead listings.
// Zero values mean "no constraint".
type Filter struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	// Search matches fullName, phone and email by case-insensitive substring.
	Search string
}

// DefaultPageSize is used when a listing request does not set a page size.
const DefaultPageSize = 10

// Page describes pagination for lead listings. Page is 1-based.
type Page struct {
	Page     int
	PageSize int
}

// Sort describes the listing order. Column is an internal field name.
type Sort struct {
	Column string
	Desc   bool
}
