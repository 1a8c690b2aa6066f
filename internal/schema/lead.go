package schema

import "regexp"

// Enum value sets for buyer lead attributes. Matching is case-sensitive
// and exact; the store re-validates the same sets via CHECK constraints.
var (
	Cities        = []string{"Chandigarh", "Mohali", "Zirakpur", "Panchkula", "Other"}
	PropertyTypes = []string{"Apartment", "Villa", "Plot", "Office", "Retail"}
	BhkValues     = []string{"1", "2", "3", "4", "Studio"}
	Purposes      = []string{"Buy", "Rent"}
	Timelines     = []string{"0-3m", "3-6m", ">6m", "Exploring"}
	Sources       = []string{"Website", "Referral", "Walk-in", "Call", "Other"}
	Statuses      = []string{"New", "Qualified", "Contacted", "Visited", "Negotiation", "Converted", "Dropped"}
)

// DefaultStatus is assigned when a candidate record omits status.
const DefaultStatus = "New"

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// LeadFields lists the validation rules for every lead attribute, in CSV
// column order. The budget, bhk and tag refinements that span multiple
// fields are applied by the validator on top of these per-field rules.
var LeadFields = []FieldSpec{
	{Name: "full_name", Column: "fullName", Label: "Full name", Type: FieldText, Required: true, MinLen: 2, MaxLen: 80},
	{Name: "email", Column: "email", Label: "Email", Type: FieldText, Pattern: emailPattern, PatternMsg: "Invalid email format"},
	{Name: "phone", Column: "phone", Label: "Phone", Type: FieldText, Required: true, Pattern: phonePattern, PatternMsg: "Phone must be 10-15 digits only"},
	{Name: "city", Column: "city", Label: "City", Type: FieldEnum, Required: true, EnumValues: Cities},
	{Name: "property_type", Column: "propertyType", Label: "Property type", Type: FieldEnum, Required: true, EnumValues: PropertyTypes},
	{Name: "bhk", Column: "bhk", Label: "BHK", Type: FieldEnum, EnumValues: BhkValues},
	{Name: "purpose", Column: "purpose", Label: "Purpose", Type: FieldEnum, Required: true, EnumValues: Purposes},
	{Name: "budget_min", Column: "budgetMin", Label: "Budget min", Type: FieldNumeric},
	{Name: "budget_max", Column: "budgetMax", Label: "Budget max", Type: FieldNumeric},
	{Name: "timeline", Column: "timeline", Label: "Timeline", Type: FieldEnum, Required: true, EnumValues: Timelines},
	{Name: "source", Column: "source", Label: "Source", Type: FieldEnum, Required: true, EnumValues: Sources},
	{Name: "notes", Column: "notes", Label: "Notes", Type: FieldText, MaxLen: 1000},
	{Name: "tags", Column: "tags", Label: "Tags", Type: FieldText},
	{Name: "status", Column: "status", Label: "Status", Type: FieldEnum, EnumValues: Statuses},
}

// CSVColumns returns the external column headers in canonical order.
// Import and export share this order exactly.
func CSVColumns() []string {
	cols := make([]string, len(LeadFields))
	for i, f := range LeadFields {
		cols[i] = f.Column
	}
	return cols
}

// FieldByName returns the spec for an internal field name.
func FieldByName(name string) (FieldSpec, bool) {
	for _, f := range LeadFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RequiresBhk reports whether the property type mandates a bedroom count.
func RequiresBhk(propertyType string) bool {
	return propertyType == "Apartment" || propertyType == "Villa"
}
