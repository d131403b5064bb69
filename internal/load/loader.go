// Package load writes validated staging tables into the target store as a
// transactional full refresh: drop the family's managed tables, recreate
// them from the declared schema, insert everything, commit. The audit log
// is never touched.
package load

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/verdant-labs/climload/internal/adapter"
	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
	"github.com/verdant-labs/climload/internal/validate"
)

// Error reports a failed load. The transaction has been rolled back; the
// target still holds the previous release.
type Error struct {
	Family string
	Table  string
	Err    error
}

func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("load %s: table %s: %v", e.Family, e.Table, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Family, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BlockedError reports a load refused up front because validation failed.
type BlockedError struct {
	Family string
	Failed []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("load %s refused: validation failed for %s",
		e.Family, strings.Join(e.Failed, ", "))
}

// Loader performs the full refresh for one family.
type Loader struct {
	ad     adapter.Adapter
	logger *slog.Logger
}

// New creates a loader over a connected adapter. A nil logger discards
// output.
func New(ad adapter.Adapter, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{ad: ad, logger: logger}
}

// Load refreshes the family's tables from staging data. Reports are the
// family's validation outcome and gate the whole operation: one FAILED
// table means zero writes. On success the returned map holds inserted row
// counts per table.
func (l *Loader) Load(ctx context.Context, fam *schema.Family, tables map[string]*staging.Table, reports []validate.Report) (map[string]int64, error) {
	var failed []string
	for _, r := range reports {
		if r.Blocking() {
			failed = append(failed, r.Table)
		}
	}
	if len(failed) > 0 {
		return nil, &BlockedError{Family: fam.Name, Failed: failed}
	}

	loadOrder, err := fam.LoadOrder()
	if err != nil {
		return nil, &Error{Family: fam.Name, Err: err}
	}
	dropOrder, err := fam.DropOrder()
	if err != nil {
		return nil, &Error{Family: fam.Name, Err: err}
	}

	tx, err := l.ad.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, &Error{Family: fam.Name, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	for _, def := range dropOrder {
		if _, err := tx.ExecContext(ctx, def.DropDDL()); err != nil {
			return nil, &Error{Family: fam.Name, Table: def.Name, Err: fmt.Errorf("drop: %w", err)}
		}
	}
	for _, def := range loadOrder {
		if _, err := tx.ExecContext(ctx, def.CreateDDL()); err != nil {
			return nil, &Error{Family: fam.Name, Table: def.Name, Err: fmt.Errorf("create: %w", err)}
		}
	}

	counts := make(map[string]int64, len(loadOrder))
	for _, def := range loadOrder {
		staged, ok := tables[def.Name]
		if !ok {
			return nil, &Error{Family: fam.Name, Table: def.Name, Err: fmt.Errorf("table was not staged")}
		}
		n, err := l.insertTable(ctx, tx, def, staged)
		if err != nil {
			return nil, &Error{Family: fam.Name, Table: def.Name, Err: err}
		}
		counts[def.Name] = n
		l.logger.Info("loaded table", "family", fam.Name, "table", def.Name, "rows", n)
	}

	if err := tx.Commit(); err != nil {
		return nil, &Error{Family: fam.Name, Err: fmt.Errorf("commit: %w", err)}
	}
	return counts, nil
}

func (l *Loader) insertTable(ctx context.Context, tx *sql.Tx, def *schema.Table, staged *staging.Table) (int64, error) {
	if staged.Len() == 0 {
		return 0, nil
	}

	query := def.InsertSQL(l.ad.Placeholder)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var inserted int64
	for i, row := range staged.Rows {
		args := make([]any, len(def.Columns))
		for c, col := range def.Columns {
			v, ok := row.Get(col.Name)
			if !ok {
				args[c] = nil
				continue
			}
			coerced, err := coerce(v, col.Type)
			if err != nil {
				return inserted, fmt.Errorf("row %d column %s: %w", i, col.Name, err)
			}
			args[c] = coerced
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return inserted, fmt.Errorf("row %d: %w", i, err)
		}
		inserted++
	}
	return inserted, nil
}

// coerce converts a staged string into the driver value for the column
// type. Values reaching here already passed validation, so a coercion
// failure is a programming error surfaced as a rolled-back load.
func coerce(v string, t schema.ColumnType) (any, error) {
	switch t {
	case schema.TypeInt:
		// year-style cells occasionally arrive as "2023.0"
		if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int64(f)) {
			return int64(f), nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	case schema.TypeReal:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		return f, nil
	case schema.TypeDate:
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a date", v)
		}
		return d, nil
	case schema.TypeBool:
		switch strings.ToLower(v) {
		case "true", "yes", "1", "t", "y":
			return true, nil
		case "false", "no", "0", "f", "n":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", v)
	default:
		return v, nil
	}
}
