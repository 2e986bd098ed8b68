package helper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relloyd/psvexport/constants"
)

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1, f2, f3...' into a slice of string values.
// Empty tokens are dropped.
func CsvToStringSliceTrimSpaces(s string) []string {
	retval := make([]string, 0)
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// SplitRight splits s on the last occurrence of c.
// If c is not found, return s, "".
func SplitRight(s string, c string) (string, string) {
	i := strings.LastIndex(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// GetStringFromInterface will convert a scanned database value to a string.
// Times are rendered using constants.TimeFormatFieldValue, optionally in UTC.
// Nil values are returned as "" with isNull set.
func GetStringFromInterface(input interface{}, useUTC bool) (retval string, isNull bool) {
	switch v := input.(type) {
	case nil:
		return "", true
	case string:
		retval = v
	case []uint8: // drivers return some types as raw bytes e.g. decimals.
		retval = string(v)
	case int:
		retval = strconv.Itoa(v)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		retval = fmt.Sprintf("%d", v)
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to preserve all decimal places without an exponent.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		retval = strconv.FormatBool(v)
	case time.Time:
		if useUTC {
			v = v.UTC()
		}
		retval = v.Format(constants.TimeFormatFieldValue)
	case fmt.Stringer:
		retval = v.String()
	default:
		retval = fmt.Sprint(v)
	}
	return retval, false
}

// InterfaceToString converts all values in src to strings where nil is an empty string.
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src))
	for i, v := range src {
		retval[i], _ = GetStringFromInterface(v, false)
	}
	return retval
}
