// Package schema defines the declarative field rules for buyer leads.
// Every rule is a pure predicate over raw input; normalization and
// cross-field refinements live in the validator that consumes these specs.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldType represents the expected data type for a lead attribute.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldNumeric
)

// FieldSpec defines validation rules for a single lead attribute.
type FieldSpec struct {
	Name       string // Internal field name: "full_name"
	Column     string // CSV column header: "fullName"
	Label      string // Display label used in error messages: "Full name"
	Type       FieldType
	Required   bool
	MinLen     int            // Inclusive; 0 means no lower bound
	MaxLen     int            // Inclusive; 0 means no upper bound
	EnumValues []string       // Valid values for FieldEnum (case-sensitive, exact)
	Pattern    *regexp.Regexp // Optional format check for FieldText
	PatternMsg string         // Stable message when Pattern fails
}

// Validate checks a raw value against the spec and returns the trimmed value.
// Empty input passes for optional fields; the caller decides how "absent"
// is represented downstream. The returned error message is a stable string.
func (s FieldSpec) Validate(raw string) (string, error) {
	v := strings.TrimSpace(raw)

	if v == "" {
		if s.Required {
			return "", fmt.Errorf("%s is required", s.Label)
		}
		return "", nil
	}

	switch s.Type {
	case FieldEnum:
		for _, ev := range s.EnumValues {
			if ev == v {
				return v, nil
			}
		}
		return "", fmt.Errorf("%s must be one of: %s", s.Label, strings.Join(s.EnumValues, ", "))

	case FieldNumeric:
		// Numeric cells are carried as raw text; the validator coerces them.
		return v, nil
	}

	// Length bounds count characters, not bytes.
	n := utf8.RuneCountInString(v)
	if s.MinLen > 0 && n < s.MinLen {
		return "", fmt.Errorf("%s must be at least %d characters", s.Label, s.MinLen)
	}
	if s.MaxLen > 0 && n > s.MaxLen {
		return "", fmt.Errorf("%s must not exceed %d characters", s.Label, s.MaxLen)
	}

	if s.Pattern != nil && !s.Pattern.MatchString(v) {
		return "", fmt.Errorf("%s", s.PatternMsg)
	}

	return v, nil
}
