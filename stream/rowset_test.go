package stream

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	// Test 1 - delimiter is replaced and positions are preserved.
	rs := NewRowSet([]string{"id", "val"})
	rs.Append(Row{"1", "a|b"})
	rs.Append(Row{"2", "c"})
	rs.Append(Row{int64(3), nil})
	rs.Sanitize('|')
	expected := []Row{{"1", "a b"}, {"2", "c"}, {"3", nil}}
	if !reflect.DeepEqual(rs.Rows, expected) {
		t.Fatalf("expected %v; got %v", expected, rs.Rows)
	}
	// Test 2 - empty input is a no-op.
	empty := NewRowSet(nil)
	empty.Sanitize('|')
	if empty.Len() != 0 {
		t.Fatal("expected empty RowSet to remain empty")
	}
}

func TestSanitizePreservesShape(t *testing.T) {
	rs := NewRowSet([]string{"a", "b", "c"})
	rs.Append(Row{"||", "|x|y|", "plain"})
	rs.Append(Row{nil, 1.5, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)})
	rs.Append(Row{[]byte("b|y|t|e|s"), true, ""})
	counts := make([]int, 0)
	for _, r := range rs.Rows {
		counts = append(counts, len(r))
	}
	rs.Sanitize('|')
	if rs.Len() != 3 {
		t.Fatalf("expected 3 rows; got %v", rs.Len())
	}
	for idx, r := range rs.Rows {
		if len(r) != counts[idx] {
			t.Fatalf("row %v: expected %v fields; got %v", idx, counts[idx], len(r))
		}
		for _, v := range r {
			if s, ok := v.(string); ok && strings.ContainsRune(s, '|') {
				t.Fatalf("row %v: field %q still contains the delimiter", idx, s)
			}
		}
	}
	if rs.Rows[2][0] != "b y t e s" {
		t.Fatalf("expected bytes to be sanitized as text; got %v", rs.Rows[2][0])
	}
}

func TestIsEmpty(t *testing.T) {
	rs := NewRowSet([]string{"a"})
	if !rs.IsEmpty(2) {
		t.Fatal("expected zero rows to be empty")
	}
	rs.Append(Row{"1"})
	if !rs.IsEmpty(2) {
		t.Fatal("expected a single row to be empty when two rows are required")
	}
	if rs.IsEmpty(1) {
		t.Fatal("expected a single row to be non-empty when one row is required")
	}
	rs.Append(Row{"2"})
	if rs.IsEmpty(2) {
		t.Fatal("expected two rows to be non-empty")
	}
}

func TestAppendCopiesRow(t *testing.T) {
	rs := NewRowSet([]string{"a"})
	r := Row{"x"}
	rs.Append(r)
	r[0] = "changed"
	if rs.Rows[0][0] != "x" {
		t.Fatal("expected Append to copy the row")
	}
}
