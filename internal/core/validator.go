package core

// validator.go turns raw candidate records into normalized leads.
//
// Validation runs in two stages:
//  1. Every per-field rule from the schema package, run independently so
//     that all failures are collected, never just the first.
//  2. Cross-field refinements: the BHK requirement for Apartment/Villa and
//     the budget ordering invariant.
//
// Normalization happens here and nowhere else: absent optionals become nil
// pointers, status defaults to New, tags are de-duplicated. Validating an
// already-normalized record is a no-op.

import (
	"strconv"
	"strings"

	"github.com/rsharma-dev/leadbook/internal/schema"
)

// Stable refinement messages, keyed by field in the resulting FieldErrors.
const (
	msgBhkRequired = "BHK is required for Apartment and Villa properties"
	msgBudgetOrder = "Budget max must be greater than or equal to budget min"
)

// ValidateCandidate applies every schema rule and both refinements to a
// candidate. It returns the normalized lead and a nil error list, or a
// zero lead and one entry per offending field. Identity, ownership and
// timestamps are left unset; they belong to the store.
func ValidateCandidate(c Candidate) (Lead, FieldErrors) {
	var errs FieldErrors

	check := func(name, raw string) string {
		spec, _ := schema.FieldByName(name)
		v, err := spec.Validate(raw)
		if err != nil {
			errs = append(errs, FieldError{Field: name, Message: err.Error()})
		}
		return v
	}

	var lead Lead
	lead.FullName = check("full_name", c.FullName)
	lead.Email = optional(check("email", c.Email))
	lead.Phone = check("phone", c.Phone)
	lead.City = check("city", c.City)
	lead.PropertyType = check("property_type", c.PropertyType)
	lead.Bhk = optional(check("bhk", c.Bhk))
	lead.Purpose = check("purpose", c.Purpose)
	lead.BudgetMin = parseBudget("budget_min", c.BudgetMin, &errs)
	lead.BudgetMax = parseBudget("budget_max", c.BudgetMax, &errs)
	lead.Timeline = check("timeline", c.Timeline)
	lead.Source = check("source", c.Source)
	lead.Notes = optional(check("notes", c.Notes))
	lead.Tags = NormalizeTags(c.Tags)

	if strings.TrimSpace(c.Status) == "" {
		lead.Status = schema.DefaultStatus
	} else {
		lead.Status = check("status", c.Status)
	}

	// Refinement 1: bedroom count is required for Apartment and Villa and
	// meaningless otherwise (a supplied value is dropped, not rejected).
	if schema.RequiresBhk(lead.PropertyType) {
		if lead.Bhk == nil && !errs.Has("bhk") {
			errs = append(errs, FieldError{Field: "bhk", Message: msgBhkRequired})
		}
	} else {
		lead.Bhk = nil
	}

	// Refinement 2: budget ordering when both bounds are present.
	if lead.BudgetMin != nil && lead.BudgetMax != nil && *lead.BudgetMax < *lead.BudgetMin {
		errs = append(errs, FieldError{Field: "budget_max", Message: msgBudgetOrder})
	}

	if len(errs) > 0 {
		return Lead{}, errs
	}
	return lead, nil
}

// parseBudget coerces a raw budget cell to an optional positive integer.
// Empty input and the literal 0 both mean "not provided"; the minimum
// representable budget is 1.
func parseBudget(name, raw string, errs *FieldErrors) *int64 {
	spec, _ := schema.FieldByName(name)

	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		*errs = append(*errs, FieldError{Field: name, Message: spec.Label + " must be a number"})
		return nil
	}
	if n == 0 {
		return nil
	}
	if n < 0 {
		*errs = append(*errs, FieldError{Field: name, Message: spec.Label + " must be positive"})
		return nil
	}
	return &n
}

// NormalizeTags trims, drops empties and de-duplicates tags while keeping
// first-occurrence order. Matching is exact and case-sensitive; the same
// policy applies to the edit and import paths.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CandidateOf converts a normalized lead back into candidate form. It is
// the inverse of ValidateCandidate for valid leads and backs the CSV
// export direction.
func CandidateOf(l Lead) Candidate {
	return Candidate{
		FullName:     l.FullName,
		Email:        deref(l.Email),
		Phone:        l.Phone,
		City:         l.City,
		PropertyType: l.PropertyType,
		Bhk:          deref(l.Bhk),
		Purpose:      l.Purpose,
		BudgetMin:    formatBudget(l.BudgetMin),
		BudgetMax:    formatBudget(l.BudgetMax),
		Timeline:     l.Timeline,
		Source:       l.Source,
		Notes:        deref(l.Notes),
		Tags:         append([]string(nil), l.Tags...),
		Status:       l.Status,
	}
}

// optional returns nil for empty strings, a pointer otherwise.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatBudget(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
