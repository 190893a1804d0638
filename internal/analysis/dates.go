package analysis

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"02/01/2006 15:04",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// ParseDate parses the common date layouts seen in tabular exports.
// Day-first is preferred over month-first for ambiguous slash dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
