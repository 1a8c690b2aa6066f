package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() Candidate {
	return Candidate{
		FullName:     "Asha Verma",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		Bhk:          "2",
		Purpose:      "Buy",
		BudgetMin:    "5000000",
		BudgetMax:    "7500000",
		Timeline:     "0-3m",
		Source:       "Website",
		Notes:        "prefers a corner unit",
		Tags:         []string{"urgent", "follow-up"},
		Status:       "New",
	}
}

func TestValidateCandidateValid(t *testing.T) {
	lead, errs := ValidateCandidate(validCandidate())
	require.Empty(t, errs)

	assert.Equal(t, "Asha Verma", lead.FullName)
	require.NotNil(t, lead.Email)
	assert.Equal(t, "asha@example.com", *lead.Email)
	require.NotNil(t, lead.Bhk)
	assert.Equal(t, "2", *lead.Bhk)
	require.NotNil(t, lead.BudgetMin)
	assert.Equal(t, int64(5000000), *lead.BudgetMin)
	require.NotNil(t, lead.BudgetMax)
	assert.Equal(t, int64(7500000), *lead.BudgetMax)
	assert.Equal(t, []string{"urgent", "follow-up"}, lead.Tags)
	assert.Equal(t, "New", lead.Status)
}

func TestValidateCandidateCollectsAllErrors(t *testing.T) {
	c := Candidate{
		FullName:     "A",             // too short
		Email:        "not-an-email",  // bad format
		Phone:        "12",            // bad format
		City:         "Paris",         // not in enum
		PropertyType: "Castle",        // not in enum
		Purpose:      "Hold",          // not in enum
		Timeline:     "someday",       // not in enum
		Source:       "Telepathy",     // not in enum
		Status:       "Commissioning", // not in enum
	}

	_, errs := ValidateCandidate(c)
	require.NotEmpty(t, errs)

	for _, field := range []string{
		"full_name", "email", "phone", "city", "property_type",
		"purpose", "timeline", "source", "status",
	} {
		assert.True(t, errs.Has(field), "expected an error on %s", field)
	}
	assert.Len(t, errs, 9)
}

func TestValidateCandidateBhkRequired(t *testing.T) {
	for _, pt := range []string{"Apartment", "Villa"} {
		c := validCandidate()
		c.PropertyType = pt
		c.Bhk = ""

		_, errs := ValidateCandidate(c)
		require.Len(t, errs, 1)
		assert.Equal(t, "bhk", errs[0].Field)
		assert.Equal(t, "BHK is required for Apartment and Villa properties", errs[0].Message)
	}
}

func TestValidateCandidateBhkDroppedForOtherTypes(t *testing.T) {
	c := validCandidate()
	c.PropertyType = "Plot"
	c.Bhk = "3"

	lead, errs := ValidateCandidate(c)
	require.Empty(t, errs)
	assert.Nil(t, lead.Bhk)
}

func TestValidateCandidateInvalidBhkNotDoubleReported(t *testing.T) {
	c := validCandidate()
	c.Bhk = "7" // invalid enum value on a property type that requires BHK

	_, errs := ValidateCandidate(c)
	require.Len(t, errs, 1)
	assert.Equal(t, "bhk", errs[0].Field)
	assert.Contains(t, errs[0].Message, "must be one of")
}

func TestValidateCandidateBudgetOrdering(t *testing.T) {
	c := validCandidate()
	c.BudgetMin = "900000"
	c.BudgetMax = "300000"

	_, errs := ValidateCandidate(c)
	require.Len(t, errs, 1)
	assert.Equal(t, "budget_max", errs[0].Field)
	assert.Equal(t, "Budget max must be greater than or equal to budget min", errs[0].Message)
}

func TestValidateCandidateBudgetEqualBoundsOK(t *testing.T) {
	c := validCandidate()
	c.BudgetMin = "500000"
	c.BudgetMax = "500000"

	_, errs := ValidateCandidate(c)
	assert.Empty(t, errs)
}

func TestValidateCandidateBudgetParsing(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantNil bool
		wantErr string
		wantVal int64
	}{
		{name: "empty is absent", raw: "", wantNil: true},
		{name: "zero is absent", raw: "0", wantNil: true},
		{name: "non-numeric", raw: "cheap", wantErr: "Budget min must be a number"},
		{name: "negative", raw: "-5", wantErr: "Budget min must be positive"},
		{name: "positive", raw: "250000", wantVal: 250000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			c.BudgetMin = tt.raw
			c.BudgetMax = ""

			lead, errs := ValidateCandidate(c)
			if tt.wantErr != "" {
				require.Len(t, errs, 1)
				assert.Equal(t, "budget_min", errs[0].Field)
				assert.Equal(t, tt.wantErr, errs[0].Message)
				return
			}
			require.Empty(t, errs)
			if tt.wantNil {
				assert.Nil(t, lead.BudgetMin)
			} else {
				require.NotNil(t, lead.BudgetMin)
				assert.Equal(t, tt.wantVal, *lead.BudgetMin)
			}
		})
	}
}

func TestValidateCandidateStatusDefault(t *testing.T) {
	c := validCandidate()
	c.Status = "  "

	lead, errs := ValidateCandidate(c)
	require.Empty(t, errs)
	assert.Equal(t, "New", lead.Status)
}

func TestValidateCandidateZeroLeadOnError(t *testing.T) {
	c := validCandidate()
	c.Phone = "bad"

	lead, errs := ValidateCandidate(c)
	require.NotEmpty(t, errs)
	assert.Equal(t, Lead{}, lead)
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, NormalizeTags(nil))
	assert.Nil(t, NormalizeTags([]string{" ", ""}))
	assert.Equal(t, []string{"a", "b"}, NormalizeTags([]string{" a ", "b", "a"}))
	// Matching is case-sensitive: differently cased tags both survive.
	assert.Equal(t, []string{"VIP", "vip"}, NormalizeTags([]string{"VIP", "vip", "VIP"}))
}

func TestValidateCandidateIdempotent(t *testing.T) {
	lead, errs := ValidateCandidate(validCandidate())
	require.Empty(t, errs)

	again, errs := ValidateCandidate(CandidateOf(lead))
	require.Empty(t, errs)
	assert.Equal(t, lead, again)
}
