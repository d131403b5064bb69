package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verdant-labs/climload/internal/schema"
)

// DefaultRules returns the full rule set in evaluation order: structural,
// then format, then relational.
func DefaultRules() []Rule {
	return []Rule{
		missingKeyRule{},
		duplicateKeyRule{},
		requiredColumnRule{},
		versionFormatRule{},
		isoFormatRule{},
		dateFormatRule{},
		yearRangeRule{},
		cycleRangeRule{},
		foreignKeyRule{},
	}
}

// ST01: every primary-key column must be present in every row.
type missingKeyRule struct{}

func (missingKeyRule) ID() string          { return "ST01" }
func (missingKeyRule) Name() string        { return "structural.missing-key" }
func (missingKeyRule) Description() string { return "primary key columns must not be null" }
func (missingKeyRule) Severity() Severity  { return SeverityBlocking }

func (r missingKeyRule) Check(ctx *Context) []Violation {
	if len(ctx.Schema.PrimaryKey) == 0 {
		return nil
	}
	var rows []int
	for i, row := range ctx.Table.Rows {
		for _, col := range ctx.Schema.PrimaryKey {
			if row.IsNull(col) {
				rows = append(rows, i)
				break
			}
		}
	}
	if rows == nil {
		return nil
	}
	return []Violation{{
		RuleID:   r.ID(),
		Severity: r.Severity(),
		Message: fmt.Sprintf("%d row(s) missing a value for primary key (%s)",
			len(rows), joinCols(ctx.Schema.PrimaryKey)),
		Rows: capRows(rows),
	}}
}

// ST02: the primary-key tuple must be unique.
type duplicateKeyRule struct{}

func (duplicateKeyRule) ID() string          { return "ST02" }
func (duplicateKeyRule) Name() string        { return "structural.duplicate-key" }
func (duplicateKeyRule) Description() string { return "primary key tuples must be unique" }
func (duplicateKeyRule) Severity() Severity  { return SeverityBlocking }

func (r duplicateKeyRule) Check(ctx *Context) []Violation {
	if len(ctx.Schema.PrimaryKey) == 0 {
		return nil
	}
	seen := make(map[string]int, len(ctx.Table.Rows))
	var rows []int
	for i, row := range ctx.Table.Rows {
		complete := true
		for _, col := range ctx.Schema.PrimaryKey {
			if row.IsNull(col) {
				complete = false // ST01's finding, not a duplicate
				break
			}
		}
		if !complete {
			continue
		}
		k := row.Key(ctx.Schema.PrimaryKey...)
		if _, dup := seen[k]; dup {
			rows = append(rows, i)
			continue
		}
		seen[k] = i
	}
	if rows == nil {
		return nil
	}
	return []Violation{{
		RuleID:   r.ID(),
		Severity: r.Severity(),
		Message: fmt.Sprintf("%d row(s) duplicate the primary key (%s)",
			len(rows), joinCols(ctx.Schema.PrimaryKey)),
		Rows: capRows(rows),
	}}
}

// ST03: structurally required non-key columns must be present.
type requiredColumnRule struct{}

func (requiredColumnRule) ID() string          { return "ST03" }
func (requiredColumnRule) Name() string        { return "structural.required-column" }
func (requiredColumnRule) Description() string { return "required columns must not be null" }
func (requiredColumnRule) Severity() Severity  { return SeverityBlocking }

func (r requiredColumnRule) Check(ctx *Context) []Violation {
	var out []Violation
	for _, col := range ctx.Schema.Required {
		var rows []int
		for i, row := range ctx.Table.Rows {
			if row.IsNull(col) {
				rows = append(rows, i)
			}
		}
		if rows == nil {
			continue
		}
		out = append(out, Violation{
			RuleID:   r.ID(),
			Severity: r.Severity(),
			Message:  fmt.Sprintf("%d row(s) missing required column %s", len(rows), col),
			Rows:     capRows(rows),
		})
	}
	return out
}

// FM01: methodology versions look like "4.0".
type versionFormatRule struct{}

var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

func (versionFormatRule) ID() string          { return "FM01" }
func (versionFormatRule) Name() string        { return "format.version" }
func (versionFormatRule) Description() string { return "version values follow major.minor form" }
func (versionFormatRule) Severity() Severity  { return SeverityWarning }

func (r versionFormatRule) Check(ctx *Context) []Violation {
	return checkColumnFormat(ctx, r, "version", func(v string) bool {
		return versionPattern.MatchString(v)
	}, "is not a major.minor version")
}

// FM02: ISO country codes are 2 or 3 letters.
type isoFormatRule struct{}

var isoPattern = regexp.MustCompile(`^[A-Za-z]{2,3}$`)

func (isoFormatRule) ID() string          { return "FM02" }
func (isoFormatRule) Name() string        { return "format.iso-code" }
func (isoFormatRule) Description() string { return "ISO codes are 2-3 letters" }
func (isoFormatRule) Severity() Severity  { return SeverityWarning }

func (r isoFormatRule) Check(ctx *Context) []Violation {
	return checkColumnFormat(ctx, r, "iso", func(v string) bool {
		return isoPattern.MatchString(v)
	}, "is not a 2-3 letter ISO code")
}

// FM03: date-typed columns hold canonical ISO dates.
type dateFormatRule struct{}

func (dateFormatRule) ID() string          { return "FM03" }
func (dateFormatRule) Name() string        { return "format.date" }
func (dateFormatRule) Description() string { return "date columns parse as YYYY-MM-DD" }
func (dateFormatRule) Severity() Severity  { return SeverityWarning }

func (r dateFormatRule) Check(ctx *Context) []Violation {
	var out []Violation
	for _, col := range ctx.Schema.Columns {
		if col.Type != schema.TypeDate {
			continue
		}
		out = append(out, checkColumnFormat(ctx, r, col.Name, func(v string) bool {
			_, err := time.Parse("2006-01-02", v)
			return err == nil
		}, "does not parse as a date")...)
	}
	return out
}

// FM04: year values stay within a plausible range.
type yearRangeRule struct{}

func (yearRangeRule) ID() string          { return "FM04" }
func (yearRangeRule) Name() string        { return "format.year-range" }
func (yearRangeRule) Description() string { return "year values fall in 2000-2100" }
func (yearRangeRule) Severity() Severity  { return SeverityBlocking }

func (r yearRangeRule) Check(ctx *Context) []Violation {
	var out []Violation
	for _, col := range ctx.Schema.Columns {
		if !isYearColumn(col.Name) {
			continue
		}
		out = append(out, checkColumnFormat(ctx, r, col.Name, func(v string) bool {
			y, err := strconv.Atoi(v)
			return err == nil && y >= 2000 && y <= 2100
		}, "is outside 2000-2100")...)
	}
	return out
}

func isYearColumn(name string) bool {
	return name == "year" || strings.HasSuffix(name, "_year")
}

// FM05: methodology cycles stay within the published range.
type cycleRangeRule struct{}

func (cycleRangeRule) ID() string          { return "FM05" }
func (cycleRangeRule) Name() string        { return "format.cycle-range" }
func (cycleRangeRule) Description() string { return "methodology cycles fall in 1-5" }
func (cycleRangeRule) Severity() Severity  { return SeverityBlocking }

func (r cycleRangeRule) Check(ctx *Context) []Violation {
	return checkColumnFormat(ctx, r, "tpi_cycle", func(v string) bool {
		c, err := strconv.Atoi(v)
		return err == nil && c >= 1 && c <= 5
	}, "is outside cycle range 1-5")
}

// RL01: foreign-key tuples must exist in the parent staging table. Rows
// with any null component are skipped here; ST03 owns missing values.
type foreignKeyRule struct{}

func (foreignKeyRule) ID() string          { return "RL01" }
func (foreignKeyRule) Name() string        { return "relational.foreign-key" }
func (foreignKeyRule) Description() string { return "foreign keys resolve against parent tables" }
func (foreignKeyRule) Severity() Severity  { return SeverityBlocking }

func (r foreignKeyRule) Check(ctx *Context) []Violation {
	var out []Violation
	for _, fk := range ctx.Schema.ForeignKeys {
		parent, ok := ctx.Parents[fk.Parent]
		if !ok {
			out = append(out, Violation{
				RuleID:   r.ID(),
				Severity: r.Severity(),
				Message:  fmt.Sprintf("parent table %s was not staged", fk.Parent),
			})
			continue
		}
		parentKeys := parent.KeySet(fk.ParentColumns...)
		var rows []int
		for i, row := range ctx.Table.Rows {
			complete := true
			for _, col := range fk.Columns {
				if row.IsNull(col) {
					complete = false
					break
				}
			}
			if !complete {
				continue
			}
			if _, ok := parentKeys[row.Key(fk.Columns...)]; !ok {
				rows = append(rows, i)
			}
		}
		if rows == nil {
			continue
		}
		out = append(out, Violation{
			RuleID:   r.ID(),
			Severity: r.Severity(),
			Message: fmt.Sprintf("%d row(s) reference (%s) values absent from %s",
				len(rows), joinCols(fk.Columns), fk.Parent),
			Rows: capRows(rows),
		})
	}
	return out
}

// checkColumnFormat applies a predicate to every present value of one
// column, producing at most one violation.
func checkColumnFormat(ctx *Context, rule Rule, col string, valid func(string) bool, reason string) []Violation {
	if !ctx.Table.HasColumn(col) {
		return nil
	}
	var rows []int
	for i, row := range ctx.Table.Rows {
		v, ok := row.Get(col)
		if !ok {
			continue
		}
		if !valid(v) {
			rows = append(rows, i)
		}
	}
	if rows == nil {
		return nil
	}
	return []Violation{{
		RuleID:   rule.ID(),
		Severity: rule.Severity(),
		Message:  fmt.Sprintf("%d value(s) in column %s %s", len(rows), col, reason),
		Rows:     capRows(rows),
	}}
}
