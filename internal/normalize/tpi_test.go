package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/climload/internal/extract"
)

var companyMetaHeaders = []string{
	"Company Name", "Geography", "Geography Code", "Sector",
	"CA100 Focus Company", "Large/Medium Classification", "ISINs", "SEDOL",
}

func companyFrame(rows ...[]string) *extract.Frame {
	return frame(companyMetaHeaders, rows...)
}

func TestTPICompaniesUnionAndDedup(t *testing.T) {
	src := &TPISources{
		CompanyV5: companyFrame(
			[]string{"Acme", "France", "FR", "Electricity", "true", "Large", "FR0001", "B000001"},
		),
		CompanyV4: companyFrame(
			[]string{"Acme", "France", "FR", "Electricity", "true", "Large", "FR0001", "B000001"},
			[]string{"Globex", "Germany", "DE", "Steel", "false", "Medium", "DE0002", "B000002"},
		),
		MQ: []MQFrame{
			{Cycle: 4, Frame: frame(
				[]string{"Company Name", "Assessment Date", "Level"},
				[]string{"Acme", "05/11/2024", "3"},
				[]string{"Initech", "05/11/2024", "2"},
			)},
		},
	}

	tbl, err := NewTPI(nil).companies(src)
	require.NoError(t, err)

	// Acme 5.0, Acme 4.0 (metadata, wins over MQ stub), Globex 4.0,
	// Initech 4.0 (stub)
	require.Equal(t, 4, tbl.Len())

	byKey := map[string]int{}
	for i, row := range tbl.Rows {
		byKey[row["company_name"]+"|"+row["version"]] = i
	}
	assert.Contains(t, byKey, "Acme|5.0")
	assert.Contains(t, byKey, "Acme|4.0")

	acme4 := tbl.Rows[byKey["Acme|4.0"]]
	assert.Equal(t, "France", acme4["geography"], "metadata row wins over MQ stub")

	initech := tbl.Rows[byKey["Initech|4.0"]]
	assert.True(t, initech.IsNull("geography"), "MQ-derived stub has null attributes")
}

func TestTPICompanyAnswers(t *testing.T) {
	mq := []MQFrame{
		{Cycle: 4, Frame: frame(
			[]string{"Company Name", "Q1|Does the company acknowledge climate change?", "Q2|Has it set targets?"},
			[]string{"Acme", "Yes", ""},
			[]string{"Globex", "No", "Yes"},
		)},
		{Cycle: 5, Frame: frame(
			[]string{"Company Name", "Q1|Does the company acknowledge climate change?"},
			[]string{"Acme", "Updated"},
		)},
	}

	tbl, err := NewTPI(nil).companyAnswers(mq)
	require.NoError(t, err)

	// Acme Q2 dropped (empty response). Acme Q1 exists per version.
	require.Equal(t, 4, tbl.Len())

	type key struct{ q, c, v string }
	rows := map[key]string{}
	for _, row := range tbl.Rows {
		rows[key{row["question_code"], row["company_name"], row["version"]}] = row["response"]
	}
	assert.Equal(t, "Yes", rows[key{"Q1", "Acme", "4.0"}])
	assert.Equal(t, "Updated", rows[key{"Q1", "Acme", "5.0"}])
	assert.Equal(t, "Yes", rows[key{"Q2", "Globex", "4.0"}])
	_, exists := rows[key{"Q2", "Acme", "4.0"}]
	assert.False(t, exists, "empty responses are dropped")

	for _, row := range tbl.Rows {
		if row["question_code"] == "Q1" {
			assert.Equal(t, "Does the company acknowledge climate change?", row["question_text"])
		}
	}
}

func TestTPICompanyAnswersKeepLast(t *testing.T) {
	mq := []MQFrame{
		{Cycle: 4, Frame: frame(
			[]string{"Company Name", "Q1|text"},
			[]string{"Acme", "first"},
			[]string{"Acme", "second"},
		)},
	}

	tbl, err := NewTPI(nil).companyAnswers(mq)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "second", tbl.Rows[0]["response"])
}

func TestTPIMQAssessments(t *testing.T) {
	mq := []MQFrame{
		{Cycle: 3, Frame: frame(
			[]string{"Company Name", "Assessment Date", "Publication Date", "Level", "Performance compared to previous year"},
			[]string{"Acme", "05/11/2024", "12/01/2024", "4STAR", "improved"},
			[]string{"Globex", "", "12/01/2024", "2", "no change"},
			[]string{"Initech", "06/11/2024", "12/01/2024", "unscored", "new"},
		)},
	}

	tbl, err := NewTPI(nil).mqAssessments(mq)
	require.NoError(t, err)

	// Globex dropped: no assessment date
	require.Equal(t, 2, tbl.Len())

	acme := tbl.Rows[0]
	assert.Equal(t, "3.0", acme["version"])
	assert.Equal(t, "3", acme["tpi_cycle"])
	assert.Equal(t, "2024-11-05", acme["assessment_date"], "day-first")
	assert.Equal(t, "2024-12-01", acme["publication_date"], "month-first")
	assert.Equal(t, "4", acme["level"], "numeric prefix of 4STAR")
	assert.Equal(t, "improved", acme["performance_change"])

	initech := tbl.Rows[1]
	assert.True(t, initech.IsNull("level"), "unparseable level becomes null")
}

func TestTPICarbonPerformance(t *testing.T) {
	cp := frame(
		[]string{
			"Company Name", "Assessment Date", "Publication Date",
			"History to Projection cutoff year", "Assumptions", "CP Unit", "Benchmark ID",
			"Carbon Performance Alignment 2035", "Carbon Performance Alignment 2050",
			"2025", "2026",
		},
		[]string{"Acme", "05/11/2024", "12/01/2024", "2023", "none", "tCO2e", "CP1", "Aligned", "", "12.5", "No data"},
		[]string{"Globex", "", "", "", "", "", "", "Not aligned", "Not aligned", "1", "2"},
	)

	src := &TPISources{
		CPStandard: cp,
		CPRegional: frame(
			[]string{"Company Name", "Assessment Date", "2025"},
			[]string{"Acme", "05/11/2024", "33.3"},
		),
		SectorBenchmarks: frame(
			[]string{"Benchmark ID", "Sector Name", "Scenario Name", "Region", "Release Date", "Unit", "2025"},
			[]string{"CP1", "Electricity", "1.5 Degrees", "Global", "01/09/2024", "tCO2e/MWh", "0.12"},
		),
	}

	tables, err := NewTPI(nil).Normalize(&TPISources{
		CompanyV5:        companyFrame(),
		CompanyV4:        companyFrame(),
		MQ:               nil,
		CPStandard:       src.CPStandard,
		CPRegional:       src.CPRegional,
		SectorBenchmarks: src.SectorBenchmarks,
	})
	require.NoError(t, err)

	assessments := tables["cp_assessment"]
	// Globex dropped (no assessment date); Acme standard + Acme regional
	require.Equal(t, 2, assessments.Len())
	standard := assessments.Rows[0]
	assert.Equal(t, "false", standard["is_regional"])
	assert.Equal(t, "5.0", standard["version"])
	assert.Equal(t, "2023-01-01", standard["projection_cutoff"], "bare year resolves to Jan 1")
	assert.Equal(t, "CP1", standard["benchmark_id"])
	regional := assessments.Rows[1]
	assert.Equal(t, "true", regional["is_regional"])

	alignments := tables["cp_alignment"]
	require.Equal(t, 1, alignments.Len(), "empty alignment cells dropped")
	assert.Equal(t, "2035", alignments.Rows[0]["cp_alignment_year"])
	assert.Equal(t, "Aligned", alignments.Rows[0]["cp_alignment_value"])

	projections := tables["cp_projection"]
	// Acme standard 2025 only (2026 sentinel), Acme regional 2025
	require.Equal(t, 2, projections.Len())
	assert.Equal(t, "12.5", projections.Rows[0]["cp_projection_value"])
	assert.Equal(t, "false", projections.Rows[0]["is_regional"])
	assert.Equal(t, "33.3", projections.Rows[1]["cp_projection_value"])
	assert.Equal(t, "true", projections.Rows[1]["is_regional"])

	sector := tables["sector_benchmark"]
	require.Equal(t, 1, sector.Len())
	assert.Equal(t, "2024-09-01", sector.Rows[0]["release_date"])

	projection := tables["benchmark_projection"]
	require.Equal(t, 1, projection.Len())
	assert.Equal(t, "2025", projection.Rows[0]["benchmark_projection_year"])
	assert.Equal(t, "0.12", projection.Rows[0]["benchmark_projection_attribute"])
}
