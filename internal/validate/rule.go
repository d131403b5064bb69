// Package validate checks staging tables against the target schema before
// anything is written. Rules run in three layers (structural, format,
// relational); every rule is always evaluated so a report lists everything
// wrong at once instead of failing on the first finding.
package validate

import (
	"strings"

	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
)

// Severity indicates whether a violation blocks loading.
type Severity int

const (
	// SeverityBlocking marks violations that must fail the table.
	SeverityBlocking Severity = iota
	// SeverityWarning marks violations that are reported but loadable.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityBlocking:
		return "blocking"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Status is the outcome of validating one table.
type Status string

const (
	StatusPassed   Status = "PASSED"
	StatusWarnings Status = "WARNINGS"
	StatusFailed   Status = "FAILED"
)

// Violation is one finding against a staging table.
type Violation struct {
	RuleID   string
	Severity Severity
	Message  string

	// Rows are the offending staging row indexes, capped by the rule.
	Rows []int
}

// Report is the outcome for one table: its violations and the resulting
// status. Reports are deterministic for identical input.
type Report struct {
	Table      string
	Status     Status
	Violations []Violation
}

// Blocking reports whether the table must not be loaded.
func (r *Report) Blocking() bool {
	return r.Status == StatusFailed
}

func statusOf(violations []Violation) Status {
	status := StatusPassed
	for _, v := range violations {
		if v.Severity == SeverityBlocking {
			return StatusFailed
		}
		status = StatusWarnings
	}
	return status
}

// Context carries everything a rule may inspect: the staging table, its
// schema definition, and the staging tables of its foreign-key parents.
type Context struct {
	Table   *staging.Table
	Schema  *schema.Table
	Parents map[string]*staging.Table
}

// Rule is one validation check. Rules are read-only and must not mutate
// the context.
type Rule interface {
	// ID returns the unique identifier, e.g. "ST01" or "RL01".
	ID() string

	// Name returns the human-readable name, e.g. "structural.missing-key".
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Severity returns the severity of this rule's violations.
	Severity() Severity

	// Check evaluates the rule and returns its violations.
	Check(ctx *Context) []Violation
}

// maxReportedRows caps the row list per violation so a systematically
// broken file does not produce an unreadable report.
const maxReportedRows = 20

func capRows(rows []int) []int {
	if len(rows) > maxReportedRows {
		return rows[:maxReportedRows]
	}
	return rows
}

func joinCols(cols []string) string {
	return strings.Join(cols, ", ")
}
