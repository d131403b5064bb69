package staging

import "strings"

// Missing-data markers seen in the source exports. Matched case-insensitively
// after trimming. These must never reach numeric or date coercion.
var sentinels = map[string]struct{}{
	"no data":        {},
	"not applicable": {},
	"n/a":            {},
	"":               {},
}

// IsSentinel reports whether a raw value stands in for a missing measurement.
func IsSentinel(v string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Clean trims the value and converts sentinels to absence.
// The second return is false when the value should be treated as NULL.
func Clean(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if IsSentinel(v) {
		return "", false
	}
	return v, true
}

// CleanSentinels rewrites every row of the table, dropping sentinel values
// so downstream coercion only ever sees real measurements.
func CleanSentinels(t *Table) {
	for i, row := range t.Rows {
		cleaned := make(Row, len(row))
		for col, v := range row {
			if cv, ok := Clean(v); ok {
				cleaned[col] = cv
			}
		}
		t.Rows[i] = cleaned
	}
}
