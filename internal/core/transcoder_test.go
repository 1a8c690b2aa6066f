package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status"

func TestParseLeads(t *testing.T) {
	raw := csvHeader + "\n" +
		`Jane Doe,,9999999999,Mohali,Apartment,,Buy,500000,800000,0-3m,Website,,urgent,New` + "\n"

	rows, err := ParseLeads([]byte(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, 2, row.RowNumber)
	require.NoError(t, row.Err)
	assert.Equal(t, "Jane Doe", row.Candidate.FullName)
	assert.Equal(t, "", row.Candidate.Email)
	assert.Equal(t, "9999999999", row.Candidate.Phone)
	assert.Equal(t, []string{"urgent"}, row.Candidate.Tags)
}

func TestParseLeadsHeaderMismatch(t *testing.T) {
	raw := "name,phone\nJane,9999999999\n"

	_, err := ParseLeads([]byte(raw))
	require.ErrorIs(t, err, ErrBadCSV)
	assert.Contains(t, err.Error(), "header mismatch")
}

func TestRoundTripPreservesQuotedValues(t *testing.T) {
	c := validCandidate()
	c.FullName = `Asha "Ash" Verma`
	c.Notes = `'call after 6pm'`
	c.Tags = []string{`"vip"`, "urgent"}

	lead, errs := ValidateCandidate(c)
	require.Empty(t, errs)

	out, err := WriteLeads([]Lead{lead})
	require.NoError(t, err)

	rows, err := ParseLeads(out)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, rows[0].Err)

	got, errs := ValidateCandidate(rows[0].Candidate)
	require.Empty(t, errs)
	assert.Equal(t, lead, got)
}

func TestParseLeadsHeaderOnly(t *testing.T) {
	rows, err := ParseLeads([]byte(csvHeader + "\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseLeadsStripsBOM(t *testing.T) {
	raw := "\xef\xbb\xbf" + csvHeader + "\n" +
		`Jane Doe,,9999999999,Mohali,Plot,,Buy,,,Exploring,Website,,,New` + "\n"

	rows, err := ParseLeads([]byte(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestParseLeadsColumnCountMismatch(t *testing.T) {
	raw := csvHeader + "\n" +
		"Jane Doe,9999999999\n"

	rows, err := ParseLeads([]byte(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Error(t, rows[0].Err)
	assert.Equal(t, "expected 14 columns, got 2", rows[0].Err.Error())
}

func TestParseLeadsSkipsEmptyRowsKeepsNumbering(t *testing.T) {
	raw := csvHeader + "\n" +
		",,,,,,,,,,,,,\n" +
		`Jane Doe,,9999999999,Mohali,Plot,,Buy,,,Exploring,Website,,,New` + "\n"

	rows, err := ParseLeads([]byte(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// The blank row 2 is skipped; the data row keeps its physical position.
	assert.Equal(t, 3, rows[0].RowNumber)
}

func TestParseLeadsExcelFormulaPrefix(t *testing.T) {
	raw := csvHeader + "\n" +
		`Jane Doe,,="9999999999",Mohali,Plot,,Buy,,,Exploring,Website,,,New` + "\n"

	rows, err := ParseLeads([]byte(raw))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "9999999999", rows[0].Candidate.Phone)
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags("  , ,"))
	assert.Equal(t, []string{"a", "b"}, SplitTags(" a , b "))
	// Duplicates survive here; the validator de-duplicates.
	assert.Equal(t, []string{"a", "a"}, SplitTags("a,a"))
}

func TestWriteLeadsRoundTrip(t *testing.T) {
	leads := make([]Lead, 0, 2)

	first, errs := ValidateCandidate(validCandidate())
	require.Empty(t, errs)
	leads = append(leads, first)

	minimal := Candidate{
		FullName:     "John Smith",
		Phone:        "9876543210",
		City:         "Panchkula",
		PropertyType: "Retail",
		Purpose:      "Rent",
		Timeline:     ">6m",
		Source:       "Walk-in",
	}
	second, errs := ValidateCandidate(minimal)
	require.Empty(t, errs)
	leads = append(leads, second)

	out, err := WriteLeads(leads)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), csvHeader+"\n"))

	rows, err := ParseLeads(out)
	require.NoError(t, err)
	require.Len(t, rows, len(leads))

	for i, row := range rows {
		require.NoError(t, row.Err)
		got, errs := ValidateCandidate(row.Candidate)
		require.Empty(t, errs)
		assert.Equal(t, leads[i], got, "row %d should survive the round trip", i)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	valid := []byte("plain ascii and accénts")
	assert.Equal(t, valid, SanitizeUTF8(valid))

	broken := []byte{'a', 0xff, 'b'}
	got := SanitizeUTF8(broken)
	assert.True(t, strings.Contains(string(got), "a"))
	assert.True(t, strings.Contains(string(got), "b"))
	assert.True(t, strings.ContainsRune(string(got), '�'))
}
