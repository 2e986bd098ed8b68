package helper

import (
	"reflect"
	"testing"
	"time"
)

func TestCsvToStringSliceTrimSpaces(t *testing.T) {
	// Test 1
	got := CsvToStringSliceTrimSpaces(" a@example.com, b@example.com ,,")
	expected := []string{"a@example.com", "b@example.com"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v; got %v", expected, got)
	}
	// Test 2 - confirm empty input gives an empty slice.
	if got := CsvToStringSliceTrimSpaces(""); len(got) != 0 {
		t.Fatalf("expected empty slice; got %v", got)
	}
}

func TestSplitRight(t *testing.T) {
	l, r := SplitRight("user/pass@host", "@")
	if l != "user/pass" || r != "host" {
		t.Fatalf("unexpected split: %q %q", l, r)
	}
	l, r = SplitRight("nothing", "@")
	if l != "nothing" || r != "" {
		t.Fatalf("unexpected split: %q %q", l, r)
	}
}

func TestGetStringFromInterface(t *testing.T) {
	ts := time.Date(2020, 2, 20, 10, 11, 12, 0, time.UTC)
	cases := []struct {
		in       interface{}
		expected string
		isNull   bool
	}{
		{nil, "", true},
		{"text", "text", false},
		{[]byte("12.50"), "12.50", false},
		{int64(42), "42", false},
		{7, "7", false},
		{float64(1.5), "1.5", false},
		{float64(100), "100", false},
		{true, "true", false},
		{ts, "2020-02-20 10:11:12", false},
	}
	for idx, c := range cases {
		got, isNull := GetStringFromInterface(c.in, true)
		if got != c.expected || isNull != c.isNull {
			t.Fatalf("case %v: expected %q (null=%v); got %q (null=%v)", idx, c.expected, c.isNull, got, isNull)
		}
	}
}

func TestInterfaceToString(t *testing.T) {
	got := InterfaceToString([]interface{}{"a", nil, int64(1)})
	expected := []string{"a", "", "1"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %v; got %v", expected, got)
	}
}

type validationTest struct {
	Name    string `errorTxt:"name" mandatory:"yes"`
	Folder  string `errorTxt:"folder" mandatory:"yes"`
	Comment string `errorTxt:"comment"`
}

func TestValidateStructIsPopulated(t *testing.T) {
	// Test 1 - missing mandatory fields are listed.
	err := ValidateStructIsPopulated(&validationTest{Name: "x"})
	if err == nil || err.Error() != "please supply values for folder" {
		t.Fatalf("unexpected validation result: %v", err)
	}
	// Test 2 - populated struct is valid.
	if err := ValidateStructIsPopulated(validationTest{Name: "x", Folder: "y"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsValidTableIdentifier(t *testing.T) {
	for _, s := range []string{"OrdersTbl", "dbo.Orders", "db.dbo.Orders", "_x$1#"} {
		if !IsValidTableIdentifier(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "1abc", "a b", "a;b", "[a]", `"a"`, "a.", ".a", "a--", "a.b.c.d"} {
		if IsValidTableIdentifier(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
