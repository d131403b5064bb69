// Package schema declares the target relational tables for each dataset
// family: columns, key structure, and inter-table dependencies. The
// declarations drive validation order, load order, and DDL generation, so
// the relational shape lives in exactly one place.
package schema

import (
	"fmt"
	"strings"
)

// ColumnType is the coercion target for a staged string value.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	TypeReal
	TypeDate
	TypeBool
)

// sqlType returns the portable SQL type name used in generated DDL.
// The names are accepted by both postgres and sqlite.
func (ct ColumnType) sqlType() string {
	switch ct {
	case TypeInt:
		return "INTEGER"
	case TypeReal:
		return "DOUBLE PRECISION"
	case TypeDate:
		return "DATE"
	case TypeBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// Column is one target-table column.
type Column struct {
	Name string
	Type ColumnType
}

// ForeignKey declares that Columns reference ParentColumns on Parent.
// The validator checks these against staging data before the store ever
// sees them; the store constraint remains as a backstop.
type ForeignKey struct {
	Columns       []string
	Parent        string
	ParentColumns []string
}

// Table is the declarative definition of one managed target table.
// Only key columns and structurally required value columns are NOT NULL;
// every other attribute is nullable because incomplete disclosure data
// must never block row creation.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	Required    []string
	ForeignKeys []ForeignKey
}

// Column returns the definition of the named column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// notNull reports whether the column participates in the primary key or is
// declared structurally required.
func (t *Table) notNull(name string) bool {
	for _, k := range t.PrimaryKey {
		if k == name {
			return true
		}
	}
	for _, k := range t.Required {
		if k == name {
			return true
		}
	}
	return false
}

// CreateDDL renders the CREATE TABLE statement.
func (t *Table) CreateDDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	for i, c := range t.Columns {
		fmt.Fprintf(&b, "  %s %s", c.Name, c.Type.sqlType())
		if t.notNull(c.Name) {
			b.WriteString(" NOT NULL")
		}
		if i < len(t.Columns)-1 || len(t.PrimaryKey) > 0 || len(t.ForeignKeys) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	if len(t.PrimaryKey) > 0 {
		fmt.Fprintf(&b, "  PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", "))
		if len(t.ForeignKeys) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	for i, fk := range t.ForeignKeys {
		fmt.Fprintf(&b, "  FOREIGN KEY (%s) REFERENCES %s(%s)",
			strings.Join(fk.Columns, ", "), fk.Parent, strings.Join(fk.ParentColumns, ", "))
		if i < len(t.ForeignKeys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// DropDDL renders the DROP TABLE statement.
func (t *Table) DropDDL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)
}

// InsertSQL renders a parameterized INSERT over the declared columns.
// The placeholder style is chosen by the target adapter.
func (t *Table) InsertSQL(placeholder func(i int) string) string {
	names := t.ColumnNames()
	ph := make([]string, len(names))
	for i := range names {
		ph[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(ph, ", "))
}

// Family bundles a dataset family's tables with its name.
type Family struct {
	Name   string
	Tables []*Table
}

// Table returns the named table definition.
func (f *Family) Table(name string) (*Table, bool) {
	for _, t := range f.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TableNames returns the declared table names in declaration order.
func (f *Family) TableNames() []string {
	names := make([]string, len(f.Tables))
	for i, t := range f.Tables {
		names[i] = t.Name
	}
	return names
}
