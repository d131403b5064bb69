package load

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/climload/internal/adapter"
	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
	"github.com/verdant-labs/climload/internal/validate"
)

// mockAdapter satisfies adapter.Adapter over a sqlmock connection.
type mockAdapter struct {
	db *sql.DB
}

func (m *mockAdapter) Connect(context.Context, adapter.Config) error { return nil }
func (m *mockAdapter) Close() error                                  { return m.db.Close() }
func (m *mockAdapter) DB() *sql.DB                                   { return m.db }
func (m *mockAdapter) Placeholder(int) string                        { return "?" }
func (m *mockAdapter) DialectName() string                           { return "sqlite" }
func (m *mockAdapter) MigrationDialect() string                      { return "sqlite3" }

func sqliteAdapter(t *testing.T) adapter.Adapter {
	t.Helper()
	ad := adapter.NewSQLiteAdapter(nil)
	path := filepath.Join(t.TempDir(), "target.db")
	require.NoError(t, ad.Connect(context.Background(), adapter.Config{Type: "sqlite", Path: path}))
	t.Cleanup(func() { _ = ad.Close() })
	return ad
}

func minimalASCORStaging() map[string]*staging.Table {
	fam := schema.ASCOR()
	tables := make(map[string]*staging.Table, len(fam.Tables))
	for _, def := range fam.Tables {
		tables[def.Name] = staging.NewTable(def.Name, def.ColumnNames()...)
	}
	tables["country"].MustAppend(staging.Row{"country_name": "France", "iso": "FRA"})
	tables["country"].MustAppend(staging.Row{"country_name": "Kenya", "iso": "KEN"})
	tables["benchmarks"].MustAppend(staging.Row{
		"benchmark_id": "1", "country_name": "France", "publication_date": "2024-12-01",
	})
	tables["benchmark_values"].MustAppend(staging.Row{
		"benchmark_id": "1", "year": "2025", "value": "10.5",
	})
	return tables
}

func passedReports(fam *schema.Family) []validate.Report {
	reports := make([]validate.Report, 0, len(fam.Tables))
	for _, def := range fam.Tables {
		reports = append(reports, validate.Report{Table: def.Name, Status: validate.StatusPassed})
	}
	return reports
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n))
	return n
}

func TestLoadRefusedWhenValidationFailed(t *testing.T) {
	fam := schema.ASCOR()
	reports := passedReports(fam)
	reports[0].Status = validate.StatusFailed

	_, err := New(nil, nil).Load(context.Background(), fam, nil, reports)
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "ascor", blocked.Family)
	assert.Equal(t, []string{"country"}, blocked.Failed)
}

func TestLoadWarningsStillLoad(t *testing.T) {
	fam := schema.ASCOR()
	ad := sqliteAdapter(t)
	tables := minimalASCORStaging()
	reports := passedReports(fam)
	reports[0].Status = validate.StatusWarnings

	counts, err := New(ad, nil).Load(context.Background(), fam, tables, reports)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts["country"])
	assert.Equal(t, int64(1), counts["benchmarks"])
	assert.Equal(t, int64(1), counts["benchmark_values"])
	assert.Equal(t, int64(0), counts["trend_values"])
}

func TestLoadIsFullRefresh(t *testing.T) {
	fam := schema.ASCOR()
	ad := sqliteAdapter(t)
	tables := minimalASCORStaging()
	loader := New(ad, nil)

	_, err := loader.Load(context.Background(), fam, tables, passedReports(fam))
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), fam, tables, passedReports(fam))
	require.NoError(t, err)

	assert.Equal(t, 2, countRows(t, ad.DB(), "country"), "second run replaces, never appends")
}

func TestLoadPreservesAuditLog(t *testing.T) {
	fam := schema.ASCOR()
	ad := sqliteAdapter(t)
	_, err := ad.DB().Exec("CREATE TABLE audit_log (execution_id BIGINT PRIMARY KEY, note TEXT)")
	require.NoError(t, err)
	_, err = ad.DB().Exec("INSERT INTO audit_log VALUES (1, 'keep me')")
	require.NoError(t, err)

	_, err = New(ad, nil).Load(context.Background(), fam, minimalASCORStaging(), passedReports(fam))
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, ad.DB(), "audit_log"))
}

func TestLoadTypedCoercion(t *testing.T) {
	fam := schema.TPI()
	ad := sqliteAdapter(t)

	tables := make(map[string]*staging.Table, len(fam.Tables))
	for _, def := range fam.Tables {
		tables[def.Name] = staging.NewTable(def.Name, def.ColumnNames()...)
	}
	tables["company"].MustAppend(staging.Row{
		"company_name": "Acme", "version": "5.0", "ca100_focus": "true",
	})
	tables["mq_assessment"].MustAppend(staging.Row{
		"company_name": "Acme", "version": "5.0",
		"assessment_date": "2024-11-05", "level": "4", "tpi_cycle": "5",
	})

	_, err := New(ad, nil).Load(context.Background(), fam, tables, passedReports(fam))
	require.NoError(t, err)

	var cycle int
	var level float64
	require.NoError(t, ad.DB().QueryRow("SELECT tpi_cycle, level FROM mq_assessment").Scan(&cycle, &level))
	assert.Equal(t, 5, cycle)
	assert.InDelta(t, 4.0, level, 0.001)
}

func TestLoadRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	ad := &mockAdapter{db: db}
	t.Cleanup(func() { _ = db.Close() })

	fam := &schema.Family{
		Name: "mini",
		Tables: []*schema.Table{{
			Name:       "only",
			Columns:    []schema.Column{{Name: "id", Type: schema.TypeInt}},
			PrimaryKey: []string{"id"},
		}},
	}
	tables := map[string]*staging.Table{"only": staging.NewTable("only", "id")}
	tables["only"].MustAppend(staging.Row{"id": "1"})

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS only").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE only").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare("INSERT INTO only").
		ExpectExec().WithArgs(int64(1)).WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = New(ad, nil).Load(context.Background(), fam, tables, passedReports(fam))
	var loadErr *Error
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "only", loadErr.Table)
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDropsInReverseDependencyOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	ad := &mockAdapter{db: db}
	t.Cleanup(func() { _ = db.Close() })

	fam := &schema.Family{
		Name: "mini",
		Tables: []*schema.Table{
			{
				Name:       "parent",
				Columns:    []schema.Column{{Name: "id", Type: schema.TypeInt}},
				PrimaryKey: []string{"id"},
			},
			{
				Name:    "child",
				Columns: []schema.Column{{Name: "parent_id", Type: schema.TypeInt}},
				ForeignKeys: []schema.ForeignKey{{
					Columns: []string{"parent_id"}, Parent: "parent", ParentColumns: []string{"id"},
				}},
			},
		},
	}
	tables := map[string]*staging.Table{
		"parent": staging.NewTable("parent", "id"),
		"child":  staging.NewTable("child", "parent_id"),
	}

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS child").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DROP TABLE IF EXISTS parent").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE parent").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE child").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	counts, err := New(ad, nil).Load(context.Background(), fam, tables, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts["parent"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
