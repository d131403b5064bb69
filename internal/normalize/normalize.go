// Package normalize reshapes raw source frames into staging tables matching
// the target schema. The source exports are wide (one column per year or per
// question); the target is long. All values stay strings here; typed
// coercion happens at load time.
//
// A malformed cell logs a warning and drops the affected long row. Dangling
// foreign keys are deliberately NOT filtered here; the validator reports
// them so bad references are visible instead of silently vanishing.
package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verdant-labs/climload/internal/extract"
	"github.com/verdant-labs/climload/internal/staging"
)

// snake lowercases a header and replaces spaces with underscores, the way
// the publisher's machine-readable exports are usually addressed.
func snake(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

// frameIndex maps snake-cased headers to their column positions.
func frameIndex(f *extract.Frame) map[string]int {
	idx := make(map[string]int, len(f.Headers))
	for i, h := range f.Headers {
		key := snake(h)
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the cleaned value at (row, position); ok is false for
// sentinels and absent columns.
func cell(f *extract.Frame, row, pos int) (string, bool) {
	if pos < 0 || pos >= len(f.Headers) {
		return "", false
	}
	return staging.Clean(f.Records[row][pos])
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

func isYearHeader(h string) bool {
	return digitsOnly.MatchString(strings.TrimSpace(h))
}

// numeric validates that a cleaned value parses as a float, returning it
// unchanged for staging.
func numeric(v string) (string, bool) {
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return "", false
	}
	return v, true
}

// levelPrefix extracts the numeric prefix of an MQ level, tolerating values
// like "4STAR" alongside plain "3" or "2.5".
var levelPrefix = regexp.MustCompile(`^\d+(\.\d+)?`)

func parseLevel(v string) (string, bool) {
	m := levelPrefix.FindString(strings.TrimSpace(v))
	if m == "" {
		return "", false
	}
	return m, true
}

// Date layouts the source exports have been seen using. Day-first exports
// and month-first exports coexist, so the caller picks the priority.
var (
	dayFirstLayouts = []string{
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006",
		"2006-01-02", "2 January 2006", "2006-01-02 15:04:05",
	}
	monthFirstLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006",
		"2006-01-02", "January 2, 2006", "2006-01-02 15:04:05",
	}
)

// parseDate parses a source date into canonical ISO form. A bare 4-digit
// year resolves to January 1st of that year (projection cutoffs arrive as
// plain years).
func parseDate(v string, dayFirst bool) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if isYearHeader(v) && len(v) == 4 {
		if y, err := strconv.Atoi(v); err == nil {
			return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), true
		}
	}
	layouts := dayFirstLayouts
	if !dayFirst {
		layouts = monthFirstLayouts
	}
	for _, layout := range layouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

// yearString canonicalizes a numeric year cell ("2023.0" → "2023").
func yearString(v string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return "", false
	}
	y := int(f)
	if float64(y) != f {
		return "", false
	}
	return strconv.Itoa(y), true
}

// dedupKeepFirst removes later rows sharing a composite key.
func dedupKeepFirst(t *staging.Table, keyCols ...string) {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0:0]
	for _, row := range t.Rows {
		k := row.Key(keyCols...)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	t.Rows = kept
}

// dedupKeepLast removes earlier rows sharing a composite key, preserving
// the relative order of the surviving rows.
func dedupKeepLast(t *staging.Table, keyCols ...string) {
	last := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		last[row.Key(keyCols...)] = i
	}
	kept := t.Rows[:0:0]
	for i, row := range t.Rows {
		if last[row.Key(keyCols...)] == i {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}

// missingColumn standardizes the error for a structurally absent column.
func missingColumn(f *extract.Frame, name string) error {
	return fmt.Errorf("source %s: required column %q not found", f.Path, name)
}

// warnSkip logs one dropped long row.
func warnSkip(logger *slog.Logger, table, reason string, row int) {
	logger.Warn("skipping row during normalization", "table", table, "reason", reason, "source_row", row)
}
