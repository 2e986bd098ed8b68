package constants

import (
	"regexp"
	"testing"
	"time"
)

func TestTimeFormat(t *testing.T) {
	// Check that a time zone component exists in the global time format.
	re := regexp.MustCompile("^.*0700$")
	if !re.MatchString(TimeFormatYearSecondsTZ) {
		t.Fatal("Unexpected time format - missing time zone component.")
	}
	// Check that file dates render as YYYYMMDD.
	d := time.Date(2020, 2, 28, 23, 59, 0, 0, time.UTC)
	if got := d.Format(TimeFormatFileDate); got != "20200228" {
		t.Fatalf("unexpected file date format: expected %q; got %q", "20200228", got)
	}
}

func TestDelimiters(t *testing.T) {
	if FieldTerminator == FieldQuote {
		t.Fatal("field terminator and quote character must differ")
	}
}
