package discovery

import (
	"regexp"
	"time"
)

var eightDigits = regexp.MustCompile(`\d{8}`)

// Date layouts tried in priority order. The first layout that yields a
// calendar-valid date wins, so 20250101 parses as YYYYMMDD only after
// 2025-01-01 fails day-first and month-first interpretation.
var dateLayouts = []string{"02012006", "01022006", "20060102"}

// ExtractDate finds the first 8-digit token in a name and parses it trying
// DDMMYYYY, then MMDDYYYY, then YYYYMMDD. Returns false when the name
// carries no token or no layout validates.
func ExtractDate(name string) (time.Time, bool) {
	token := eightDigits.FindString(name)
	if token == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, token); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
