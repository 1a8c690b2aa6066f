package core

// diff.go computes the minimal field-level change-set between two versions
// of a lead. The diff feeds the audit trail: one ChangeRecord per edit with
// only the fields that actually changed, and a marker entry for create and
// import events.

// FieldChange holds the before/after values for one changed field.
// Absent optionals serialize as null.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff maps changed field names to their old/new values. Unchanged fields
// are never present; an empty diff means the edit changed nothing and no
// ChangeRecord should be written.
type Diff map[string]FieldChange

// diffFields is the editable field set, in canonical order. Identity,
// ownership and timestamps are store-managed and never diffed.
var diffFields = []string{
	"full_name", "email", "phone", "city", "property_type", "bhk",
	"purpose", "budget_min", "budget_max", "timeline", "source",
	"notes", "tags", "status",
}

// DiffLeads compares two leads field by field using deep structural
// equality. Tag order is significant: reordering tags counts as a change.
// The result is deterministic for identical inputs.
func DiffLeads(before, after Lead) Diff {
	d := make(Diff)
	for _, field := range diffFields {
		ov := fieldValue(before, field)
		nv := fieldValue(after, field)
		if !valueEqual(ov, nv) {
			d[field] = FieldChange{Old: ov, New: nv}
		}
	}
	return d
}

// MarkerCreated is the audit diff recorded when a lead is created directly.
func MarkerCreated() Diff {
	return Diff{"created": {Old: nil, New: "Lead created"}}
}

// MarkerImported is the audit diff recorded for each lead that arrives via
// a CSV import.
func MarkerImported() Diff {
	return Diff{"imported": {Old: nil, New: "Lead imported from CSV"}}
}

// fieldValue extracts a diffable value for a field. Optionals surface as
// nil or their dereferenced value so the JSON form is old/new scalars.
func fieldValue(l Lead, field string) any {
	switch field {
	case "full_name":
		return l.FullName
	case "email":
		return strPtrValue(l.Email)
	case "phone":
		return l.Phone
	case "city":
		return l.City
	case "property_type":
		return l.PropertyType
	case "bhk":
		return strPtrValue(l.Bhk)
	case "purpose":
		return l.Purpose
	case "budget_min":
		return intPtrValue(l.BudgetMin)
	case "budget_max":
		return intPtrValue(l.BudgetMax)
	case "timeline":
		return l.Timeline
	case "source":
		return l.Source
	case "notes":
		return strPtrValue(l.Notes)
	case "tags":
		return append([]string(nil), l.Tags...)
	case "status":
		return l.Status
	}
	return nil
}

// valueEqual compares two diffable values structurally. The only non-scalar
// case is the tag slice, which compares element-wise and order-sensitively.
func valueEqual(a, b any) bool {
	at, aok := a.([]string)
	bt, bok := b.([]string)
	if aok || bok {
		if !aok || !bok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if at[i] != bt[i] {
				return false
			}
		}
		return true
	}
	return a == b
}

func strPtrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtrValue(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
