package helpers

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout used for createdAt and updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// isoLayouts are tried in order when parsing event dates. They cover the
// extended and basic calendar date forms, a T or space separator, hour,
// minute or second precision and an optional offset written as Z, +hh,
// +hhmm or +hh:mm. Fractional seconds are accepted after any layout that
// carries seconds.
var isoLayouts = buildISOLayouts()

func buildISOLayouts() []string {
	dates := []string{"2006-01-02", "20060102"}
	times := []string{"15", "1504", "15:04", "150405", "15:04:05"}
	zones := []string{"", "Z07:00", "Z0700", "Z07"}

	layouts := append([]string(nil), dates...)
	for _, d := range dates {
		for _, sep := range []string{"T", " "} {
			for _, tm := range times {
				for _, z := range zones {
					layouts = append(layouts, d+sep+tm+z)
				}
			}
		}
	}
	return layouts
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// TrimPtr trims the string a pointer refers to, leaving nil untouched.
func TrimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// ParseISODate parses an ISO-8601 date or date-time. A trailing "Z" is
// treated as "+00:00"; values without an offset are read as UTC.
func ParseISODate(value string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date: %q", value)
}

// Timestamp formats t in UTC with microsecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
