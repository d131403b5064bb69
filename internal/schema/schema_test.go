package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamiliesAreAcyclic(t *testing.T) {
	for _, f := range []*Family{ASCOR(), TPI()} {
		t.Run(f.Name, func(t *testing.T) {
			g, err := f.Graph()
			require.NoError(t, err)
			assert.Equal(t, len(f.Tables), g.NodeCount())
		})
	}
}

func TestLoadOrderRespectsForeignKeys(t *testing.T) {
	for _, f := range []*Family{ASCOR(), TPI()} {
		t.Run(f.Name, func(t *testing.T) {
			ordered, err := f.LoadOrder()
			require.NoError(t, err)
			require.Len(t, ordered, len(f.Tables))

			pos := map[string]int{}
			for i, tbl := range ordered {
				pos[tbl.Name] = i
			}
			for _, tbl := range f.Tables {
				for _, fk := range tbl.ForeignKeys {
					assert.Less(t, pos[fk.Parent], pos[tbl.Name],
						"%s must load after %s", tbl.Name, fk.Parent)
				}
			}
		})
	}
}

func TestDropOrderIsReverseOfLoadOrder(t *testing.T) {
	f := ASCOR()
	load, err := f.LoadOrder()
	require.NoError(t, err)
	drop, err := f.DropOrder()
	require.NoError(t, err)

	require.Len(t, drop, len(load))
	for i := range load {
		assert.Equal(t, load[i].Name, drop[len(drop)-1-i].Name)
	}
}

func TestForeignKeysReferenceDeclaredColumns(t *testing.T) {
	for _, f := range []*Family{ASCOR(), TPI()} {
		for _, tbl := range f.Tables {
			for _, fk := range tbl.ForeignKeys {
				parent, ok := f.Table(fk.Parent)
				require.True(t, ok, "%s.%s references unknown table %s", f.Name, tbl.Name, fk.Parent)
				require.Len(t, fk.ParentColumns, len(fk.Columns))
				for _, c := range fk.Columns {
					_, ok := tbl.Column(c)
					assert.True(t, ok, "%s: fk column %s not declared", tbl.Name, c)
				}
				for _, c := range fk.ParentColumns {
					_, ok := parent.Column(c)
					assert.True(t, ok, "%s: parent column %s.%s not declared", tbl.Name, fk.Parent, c)
				}
			}
		}
	}
}

func TestCreateDDL(t *testing.T) {
	f := ASCOR()
	tbl, ok := f.Table("benchmarks")
	require.True(t, ok)

	ddl := tbl.CreateDDL()
	assert.Contains(t, ddl, "CREATE TABLE benchmarks")
	assert.Contains(t, ddl, "benchmark_id INTEGER NOT NULL")
	assert.Contains(t, ddl, "country_name TEXT NOT NULL")
	assert.Contains(t, ddl, "publication_date DATE,")
	assert.Contains(t, ddl, "PRIMARY KEY (benchmark_id)")
	assert.Contains(t, ddl, "FOREIGN KEY (country_name) REFERENCES country(country_name)")
}

func TestCreateDDLCompositeKeys(t *testing.T) {
	f := TPI()
	tbl, ok := f.Table("company_answer")
	require.True(t, ok)

	ddl := tbl.CreateDDL()
	assert.Contains(t, ddl, "PRIMARY KEY (question_code, company_name, version)")
	assert.Contains(t, ddl, "FOREIGN KEY (company_name, version) REFERENCES company(company_name, version)")
	assert.Contains(t, ddl, "response TEXT NOT NULL")
}

func TestDropDDL(t *testing.T) {
	tbl := &Table{Name: "country"}
	assert.Equal(t, "DROP TABLE IF EXISTS country", tbl.DropDDL())
}

func TestInsertSQLPlaceholderStyles(t *testing.T) {
	tbl := &Table{
		Name: "benchmark_values",
		Columns: []Column{
			{Name: "benchmark_id", Type: TypeInt},
			{Name: "year", Type: TypeInt},
			{Name: "value", Type: TypeReal},
		},
	}

	pg := tbl.InsertSQL(func(i int) string { return "$" + string(rune('0'+i)) })
	assert.Equal(t, "INSERT INTO benchmark_values (benchmark_id, year, value) VALUES ($1, $2, $3)", pg)

	lite := tbl.InsertSQL(func(int) string { return "?" })
	assert.True(t, strings.HasSuffix(lite, "VALUES (?, ?, ?)"))
}
