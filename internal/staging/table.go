// Package staging provides the in-memory row-oriented staging structures
// that sit between extraction and loading. A staging table holds raw string
// values; type coercion happens at load time against the target schema.
package staging

import (
	"fmt"
	"sort"
	"strings"
)

// Row maps column names to raw string values. A column absent from the map
// is a NULL; an empty string is a present-but-empty value until sentinel
// cleansing runs.
type Row map[string]string

// Table is an ordered sequence of rows destined for one target table.
// The column set is fixed for the lifetime of the table.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewTable creates an empty staging table with a fixed column set.
func NewTable(name string, columns ...string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
}

// Append adds a row, rejecting values for columns outside the declared set.
func (t *Table) Append(row Row) error {
	for col := range row {
		if !t.HasColumn(col) {
			return fmt.Errorf("table %s: unknown column %q", t.Name, col)
		}
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// MustAppend is Append for rows built from declared columns only.
// It panics on a column mismatch, which indicates a programming error
// in a normalizer rather than bad input data.
func (t *Table) MustAppend(row Row) {
	if err := t.Append(row); err != nil {
		panic(err)
	}
}

// HasColumn reports whether the column belongs to the table's declared set.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Get returns the value of a column in a row, with ok reporting presence.
func (r Row) Get(col string) (string, bool) {
	v, ok := r[col]
	return v, ok
}

// IsNull reports whether the column is absent from the row.
func (r Row) IsNull(col string) bool {
	_, ok := r[col]
	return !ok
}

// Key builds a composite key string from the named columns, used for
// duplicate detection and foreign-key lookups. Null components are encoded
// distinctly from empty strings so (null) and ("") never collide.
func (r Row) Key(cols ...string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if v, ok := r[c]; ok {
			parts[i] = "v:" + v
		} else {
			parts[i] = "null"
		}
	}
	return strings.Join(parts, "\x1f")
}

// DistinctKeys returns the sorted set of composite keys over the named
// columns, skipping rows where any component is null.
func (t *Table) DistinctKeys(cols ...string) []string {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		complete := true
		for _, c := range cols {
			if row.IsNull(c) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		seen[row.Key(cols...)] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeySet returns the composite keys over the named columns as a set,
// for membership tests by the relational validator.
func (t *Table) KeySet(cols ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		complete := true
		for _, c := range cols {
			if row.IsNull(c) {
				complete = false
				break
			}
		}
		if complete {
			set[row.Key(cols...)] = struct{}{}
		}
	}
	return set
}
