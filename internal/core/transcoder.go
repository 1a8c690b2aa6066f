package core

// transcoder.go maps between the external CSV representation of leads and
// candidate records. The import direction is structural only: cells pass
// through as raw text and every value judgement is left to the validator.
// The export direction writes the exact same header so that exported files
// re-import without loss (identity, ownership and timestamps are excluded
// from both directions).

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rsharma-dev/leadbook/internal/schema"
)

// CandidateRow is one parsed CSV data row. RowNumber is 1-based and counts
// the header, so the first data row is row 2. Err is set when the row could
// not be mapped structurally; Candidate is only meaningful when Err is nil.
type CandidateRow struct {
	RowNumber int
	Input     []string
	Candidate Candidate
	Err       error
}

// ParseLeads parses CSV text into candidate rows, preserving input order.
// The exact header line is mandatory as the first non-empty record; a
// malformed CSV structure or a missing header is a single fatal error,
// never a per-row one.
func ParseLeads(raw []byte) ([]CandidateRow, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")) // strip UTF-8 BOM

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCSV, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	columns := schema.CSVColumns()
	if !headerMatches(records[0], columns) {
		return nil, fmt.Errorf("%w: header mismatch (expected: %s)", ErrBadCSV, strings.Join(columns, ","))
	}

	rows := make([]CandidateRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		rowNum := i + 2 // 1-based, after the header

		if isEmptyRow(rec) {
			continue
		}

		row := CandidateRow{RowNumber: rowNum, Input: rec}
		if len(rec) != len(columns) {
			row.Err = fmt.Errorf("expected %d columns, got %d", len(columns), len(rec))
		} else {
			row.Candidate = candidateFromRecord(rec)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteLeads serializes leads to CSV using the canonical header order.
// Absent optionals render as empty cells; tags as one comma-joined cell.
func WriteLeads(leads []Lead) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(schema.CSVColumns()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, l := range leads {
		c := CandidateOf(l)
		rec := []string{
			c.FullName,
			c.Email,
			c.Phone,
			c.City,
			c.PropertyType,
			c.Bhk,
			c.Purpose,
			c.BudgetMin,
			c.BudgetMax,
			c.Timeline,
			c.Source,
			c.Notes,
			strings.Join(c.Tags, ","),
			c.Status,
		}
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// candidateFromRecord maps one CSV record onto a candidate by column
// position. The tags cell splits on commas into trimmed non-empty strings,
// order preserved; duplicates survive here and are dropped by the validator.
func candidateFromRecord(rec []string) Candidate {
	cleaned := make([]string, len(rec))
	for i, cell := range rec {
		cleaned[i] = cleanCell(cell)
	}

	return Candidate{
		FullName:     cleaned[0],
		Email:        cleaned[1],
		Phone:        cleaned[2],
		City:         cleaned[3],
		PropertyType: cleaned[4],
		Bhk:          cleaned[5],
		Purpose:      cleaned[6],
		BudgetMin:    cleaned[7],
		BudgetMax:    cleaned[8],
		Timeline:     cleaned[9],
		Source:       cleaned[10],
		Notes:        cleaned[11],
		Tags:         SplitTags(cleaned[12]),
		Status:       cleaned[13],
	}
}

// SplitTags splits a comma-separated tags cell into trimmed, non-empty
// strings in input order. No de-duplication and no case folding happen here.
func SplitTags(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// headerMatches compares a parsed header row against the expected columns.
// Spelling is exact; surrounding whitespace and stray quotes are tolerated.
func headerMatches(header []string, columns []string) bool {
	if len(header) != len(columns) {
		return false
	}
	for i := range columns {
		if strings.Trim(cleanCell(header[i]), `"'`) != columns[i] {
			return false
		}
	}
	return true
}

// cleanCell strips whitespace and the Excel formula prefix (="value") that
// spreadsheets leave behind. Quoting inside data cells is the CSV reader's
// business; trimming quotes here would corrupt values that legitimately
// contain them.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return s
}

func isEmptyRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// the CSV reader never chokes on mis-encoded exports.
func SanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}
