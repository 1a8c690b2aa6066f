package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSpecValidate(t *testing.T) {
	fullName, ok := FieldByName("full_name")
	require.True(t, ok)
	phone, _ := FieldByName("phone")
	email, _ := FieldByName("email")
	city, _ := FieldByName("city")
	notes, _ := FieldByName("notes")

	tests := []struct {
		name    string
		spec    FieldSpec
		raw     string
		want    string
		wantErr string
	}{
		{"trims whitespace", fullName, "  Asha Verma  ", "Asha Verma", ""},
		{"required empty", fullName, "   ", "", "Full name is required"},
		{"below min length", fullName, "A", "", "Full name must be at least 2 characters"},
		{"optional empty passes", email, "", "", ""},
		{"email pattern", email, "not-an-email", "", "Invalid email format"},
		{"phone pattern short", phone, "12345", "", "Phone must be 10-15 digits only"},
		{"phone pattern letters", phone, "98765abc10", "", "Phone must be 10-15 digits only"},
		{"phone valid", phone, "9876543210", "9876543210", ""},
		{"enum exact match", city, "Mohali", "Mohali", ""},
		{"enum is case-sensitive", city, "mohali", "", "City must be one of: Chandigarh, Mohali, Zirakpur, Panchkula, Other"},
		{"optional enum empty", mustField(t, "bhk"), "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.spec.Validate(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("length counts runes not bytes", func(t *testing.T) {
		// 1000 multi-byte characters stay within the notes bound.
		long := make([]rune, 1000)
		for i := range long {
			long[i] = 'é'
		}
		_, err := notes.Validate(string(long))
		require.NoError(t, err)

		_, err = notes.Validate(string(long) + "x")
		require.Error(t, err)
		assert.Equal(t, "Notes must not exceed 1000 characters", err.Error())
	})
}

func TestCSVColumns(t *testing.T) {
	want := []string{
		"fullName", "email", "phone", "city", "propertyType", "bhk",
		"purpose", "budgetMin", "budgetMax", "timeline", "source",
		"notes", "tags", "status",
	}
	assert.Equal(t, want, CSVColumns())
}

func TestRequiresBhk(t *testing.T) {
	assert.True(t, RequiresBhk("Apartment"))
	assert.True(t, RequiresBhk("Villa"))
	assert.False(t, RequiresBhk("Plot"))
	assert.False(t, RequiresBhk("Office"))
	assert.False(t, RequiresBhk("Retail"))
	assert.False(t, RequiresBhk(""))
}

func mustField(t *testing.T, name string) FieldSpec {
	t.Helper()
	spec, ok := FieldByName(name)
	require.True(t, ok)
	return spec
}
