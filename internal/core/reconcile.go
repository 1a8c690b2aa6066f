package core

// reconcile.go drives the transcoder and validator over a whole CSV batch
// and produces the import plan. Reconciliation is pure: the full report is
// computed before any persistence is attempted, so a failed or cancelled
// store call can never leave a partially classified batch behind.

// MaxImportRows is the hard ceiling on data rows per import. Batches above
// the ceiling are rejected upfront with ErrTooManyRows; no rows are
// processed.
const MaxImportRows = 200

// RowResult classifies exactly one CSV data row. Valid rows carry the
// normalized lead; invalid rows carry the raw candidate and every error
// found. A row that failed structural mapping reports a single error on
// the synthetic field "general".
type RowResult struct {
	RowNumber int         `json:"rowNumber"`
	Valid     bool        `json:"valid"`
	Lead      *Lead       `json:"lead,omitempty"`
	Input     Candidate   `json:"input"`
	Errors    FieldErrors `json:"errors,omitempty"`
}

// ImportSummary totals must always equal the partition sizes of Rows.
type ImportSummary struct {
	TotalRows    int `json:"totalRows"`
	ValidCount   int `json:"validCount"`
	InvalidCount int `json:"invalidCount"`
}

// ImportReport is the complete result of reconciling one CSV batch.
// Row order matches input order.
type ImportReport struct {
	Rows    []RowResult   `json:"rows"`
	Summary ImportSummary `json:"summary"`
}

// ValidLeads returns the leads eligible for persistence, in row order.
func (r *ImportReport) ValidLeads() []Lead {
	out := make([]Lead, 0, r.Summary.ValidCount)
	for _, row := range r.Rows {
		if row.Valid {
			out = append(out, *row.Lead)
		}
	}
	return out
}

// Reconcile parses and validates a raw CSV batch. Batch preconditions
// (unparseable structure, missing header, empty file, row ceiling) are
// fatal and return a nil report; everything else is reported per row.
func Reconcile(raw []byte) (*ImportReport, error) {
	rows, err := ParseLeads(SanitizeUTF8(raw))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	if len(rows) > MaxImportRows {
		return nil, ErrTooManyRows
	}

	report := &ImportReport{
		Rows:    make([]RowResult, 0, len(rows)),
		Summary: ImportSummary{TotalRows: len(rows)},
	}

	for _, row := range rows {
		result := RowResult{RowNumber: row.RowNumber, Input: row.Candidate}

		switch {
		case row.Err != nil:
			result.Errors = FieldErrors{{Field: "general", Message: row.Err.Error()}}

		default:
			lead, errs := ValidateCandidate(row.Candidate)
			if len(errs) > 0 {
				result.Errors = errs
			} else {
				result.Valid = true
				result.Lead = &lead
			}
		}

		if result.Valid {
			report.Summary.ValidCount++
		} else {
			report.Summary.InvalidCount++
		}
		report.Rows = append(report.Rows, result)
	}

	return report, nil
}
