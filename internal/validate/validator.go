package validate

import (
	"fmt"
	"log/slog"

	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
)

// Validator evaluates the rule set over a family's staging tables.
type Validator struct {
	logger *slog.Logger
	rules  []Rule
}

// New creates a validator with the default rule set. A nil logger discards
// output.
func New(logger *slog.Logger) *Validator {
	return NewWithRules(logger, DefaultRules())
}

// NewWithRules creates a validator with an explicit rule set.
func NewWithRules(logger *slog.Logger, rules []Rule) *Validator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{logger: logger, rules: rules}
}

// ValidateFamily runs every rule over every staged table, in dependency
// order so relational checks always see their parents. It never mutates the
// staging data and returns one report per table. The observer, when not
// nil, is called before and after each table so callers can audit the
// transition.
func (v *Validator) ValidateFamily(fam *schema.Family, tables map[string]*staging.Table, observer TableObserver) ([]Report, error) {
	ordered, err := fam.LoadOrder()
	if err != nil {
		return nil, fmt.Errorf("resolving validation order for %s: %w", fam.Name, err)
	}

	reports := make([]Report, 0, len(ordered))
	for _, def := range ordered {
		staged, ok := tables[def.Name]
		if !ok {
			return nil, fmt.Errorf("family %s: table %s was not staged", fam.Name, def.Name)
		}
		if observer != nil {
			observer.TableStarted(def.Name)
		}

		report := v.ValidateTable(def, staged, tables)
		v.logger.Info("validated table",
			"family", fam.Name,
			"table", def.Name,
			"status", string(report.Status),
			"violations", len(report.Violations))
		if observer != nil {
			observer.TableFinished(report)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ValidateTable runs the rule set over one staging table. The tables map
// supplies foreign-key parents; a parent absent from it is itself a
// relational violation.
func (v *Validator) ValidateTable(def *schema.Table, staged *staging.Table, tables map[string]*staging.Table) Report {
	ctx := &Context{
		Table:   staged,
		Schema:  def,
		Parents: make(map[string]*staging.Table, len(def.ForeignKeys)),
	}
	for _, fk := range def.ForeignKeys {
		if parent, ok := tables[fk.Parent]; ok {
			ctx.Parents[fk.Parent] = parent
		}
	}

	var violations []Violation
	for _, rule := range v.rules {
		violations = append(violations, rule.Check(ctx)...)
	}
	return Report{
		Table:      def.Name,
		Status:     statusOf(violations),
		Violations: violations,
	}
}

// TableObserver is notified as each table moves through validation.
type TableObserver interface {
	TableStarted(table string)
	TableFinished(report Report)
}

// AnyBlocking reports whether any table in the set failed.
func AnyBlocking(reports []Report) bool {
	for i := range reports {
		if reports[i].Blocking() {
			return true
		}
	}
	return false
}

// Summary folds per-table statuses into a family status.
func Summary(reports []Report) Status {
	status := StatusPassed
	for i := range reports {
		switch reports[i].Status {
		case StatusFailed:
			return StatusFailed
		case StatusWarnings:
			status = StatusWarnings
		}
	}
	return status
}
