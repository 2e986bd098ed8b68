package stream

import (
	"strings"

	h "github.com/relloyd/psvexport/helper"
)

// Row is an ordered slice of scalar field values as scanned from a database.
// Values are strings, numbers, bools, times, raw bytes or nil for NULL.
type Row []interface{}

// RowSet is an ordered sequence of rows plus the column names of the result set that produced them.
type RowSet struct {
	Columns []string
	Rows    []Row
}

// NewRowSet returns an empty RowSet for the given columns.
func NewRowSet(columns []string) RowSet {
	return RowSet{Columns: columns, Rows: make([]Row, 0)}
}

// Len returns the number of rows.
func (rs RowSet) Len() int {
	return len(rs.Rows)
}

// IsEmpty returns true if the RowSet contains fewer than minRows rows.
func (rs RowSet) IsEmpty(minRows int) bool {
	if minRows < 1 {
		minRows = 1
	}
	return len(rs.Rows) < minRows
}

// Append adds a copy of row to the RowSet.
func (rs *RowSet) Append(row Row) {
	r := make(Row, len(row))
	copy(r, row)
	rs.Rows = append(rs.Rows, r)
}

// Sanitize replaces every occurrence of delimiter in every field with a single space so that downstream
// consumers never see a false field boundary. Values are rendered as strings in place; NULLs stay nil.
// Row count and field count per row are unchanged.
func (rs RowSet) Sanitize(delimiter rune) RowSet {
	d := string(delimiter)
	for _, row := range rs.Rows { // for each row...
		for idx, v := range row { // for each field...
			s, isNull := h.GetStringFromInterface(v, false)
			if isNull {
				continue
			}
			row[idx] = strings.Replace(s, d, " ", -1)
		}
	}
	return rs
}

// SanitizeColumns applies the same delimiter policy to the column names.
func (rs RowSet) SanitizeColumns(delimiter rune) RowSet {
	d := string(delimiter)
	for idx, c := range rs.Columns {
		rs.Columns[idx] = strings.Replace(c, d, " ", -1)
	}
	return rs
}

// Strings returns the string form of row where nil values are empty strings.
func (r Row) Strings() []string {
	return h.InterfaceToString(r)
}
