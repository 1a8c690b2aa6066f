package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileMixedBatch(t *testing.T) {
	raw := csvHeader + "\n" +
		// valid
		`Asha Verma,asha@example.com,9876543210,Chandigarh,Apartment,2,Buy,5000000,7500000,0-3m,Website,,urgent,New` + "\n" +
		// missing BHK on an Apartment
		`Jane Doe,,9999999999,Mohali,Apartment,,Buy,500000,800000,0-3m,Website,,urgent,New` + "\n" +
		// budget max below min
		`John Smith,j@x.com,9876543210,Chandigarh,Plot,,Rent,900000,300000,Exploring,Referral,,,"New"` + "\n" +
		// structurally broken row
		"Short Row,123\n"

	report, err := Reconcile([]byte(raw))
	require.NoError(t, err)
	require.Len(t, report.Rows, 4)

	assert.Equal(t, 4, report.Summary.TotalRows)
	assert.Equal(t, 1, report.Summary.ValidCount)
	assert.Equal(t, 3, report.Summary.InvalidCount)

	valid := report.Rows[0]
	assert.True(t, valid.Valid)
	assert.Equal(t, 2, valid.RowNumber)
	require.NotNil(t, valid.Lead)
	assert.Empty(t, valid.Errors)

	bhkRow := report.Rows[1]
	assert.False(t, bhkRow.Valid)
	assert.Equal(t, 3, bhkRow.RowNumber)
	assert.Nil(t, bhkRow.Lead)
	require.Len(t, bhkRow.Errors, 1)
	assert.Equal(t, "bhk", bhkRow.Errors[0].Field)
	assert.Equal(t, "BHK is required for Apartment and Villa properties", bhkRow.Errors[0].Message)

	budgetRow := report.Rows[2]
	assert.False(t, budgetRow.Valid)
	require.Len(t, budgetRow.Errors, 1)
	assert.Equal(t, "budget_max", budgetRow.Errors[0].Field)

	structural := report.Rows[3]
	assert.False(t, structural.Valid)
	require.Len(t, structural.Errors, 1)
	assert.Equal(t, "general", structural.Errors[0].Field)
	assert.Equal(t, "expected 14 columns, got 2", structural.Errors[0].Message)
}

func TestReconcileRowCeiling(t *testing.T) {
	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for i := 0; i < MaxImportRows+1; i++ {
		fmt.Fprintf(&b, "Lead %d,,9876543210,Mohali,Plot,,Buy,,,Exploring,Website,,,New\n", i)
	}

	report, err := Reconcile([]byte(b.String()))
	require.ErrorIs(t, err, ErrTooManyRows)
	assert.Nil(t, report)
}

func TestReconcileExactlyAtCeiling(t *testing.T) {
	var b strings.Builder
	b.WriteString(csvHeader + "\n")
	for i := 0; i < MaxImportRows; i++ {
		fmt.Fprintf(&b, "Lead %d,,9876543210,Mohali,Plot,,Buy,,,Exploring,Website,,,New\n", i)
	}

	report, err := Reconcile([]byte(b.String()))
	require.NoError(t, err)
	assert.Equal(t, MaxImportRows, report.Summary.TotalRows)
	assert.Equal(t, MaxImportRows, report.Summary.ValidCount)
}

func TestReconcileEmptyFile(t *testing.T) {
	report, err := Reconcile([]byte(csvHeader + "\n"))
	require.ErrorIs(t, err, ErrEmptyFile)
	assert.Nil(t, report)
}

func TestReconcileBadHeaderIsFatal(t *testing.T) {
	report, err := Reconcile([]byte("name,phone\nJane,9999999999\n"))
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestValidLeadsPreservesRowOrder(t *testing.T) {
	raw := csvHeader + "\n" +
		`First Lead,,9876543210,Mohali,Plot,,Buy,,,Exploring,Website,,,New` + "\n" +
		`Broken,,12,Mohali,Plot,,Buy,,,Exploring,Website,,,New` + "\n" +
		`Second Lead,,9876543211,Zirakpur,Office,,Rent,,,3-6m,Call,,,New` + "\n"

	report, err := Reconcile([]byte(raw))
	require.NoError(t, err)

	leads := report.ValidLeads()
	require.Len(t, leads, 2)
	assert.Equal(t, "First Lead", leads[0].FullName)
	assert.Equal(t, "Second Lead", leads[1].FullName)
}
