package schema

// ASCOR returns the sovereign assessment family: country reference data,
// emissions benchmarks, questionnaire elements and results, and emissions
// trend series. Declaration order is informational; load order is computed
// from the foreign keys.
func ASCOR() *Family {
	return &Family{
		Name: "ascor",
		Tables: []*Table{
			{
				Name: "country",
				Columns: []Column{
					{Name: "country_name", Type: TypeText},
					{Name: "iso", Type: TypeText},
					{Name: "region", Type: TypeText},
					{Name: "bank_lending_group", Type: TypeText},
					{Name: "imf_category", Type: TypeText},
					{Name: "un_party_type", Type: TypeText},
				},
				PrimaryKey: []string{"country_name"},
			},
			{
				Name: "benchmarks",
				Columns: []Column{
					{Name: "benchmark_id", Type: TypeInt},
					{Name: "country_name", Type: TypeText},
					{Name: "publication_date", Type: TypeDate},
					{Name: "emissions_metric", Type: TypeText},
					{Name: "emissions_boundary", Type: TypeText},
					{Name: "units", Type: TypeText},
					{Name: "benchmark_type", Type: TypeText},
				},
				PrimaryKey: []string{"benchmark_id"},
				Required:   []string{"country_name"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"country_name"}, Parent: "country", ParentColumns: []string{"country_name"}},
				},
			},
			{
				Name: "benchmark_values",
				Columns: []Column{
					{Name: "benchmark_id", Type: TypeInt},
					{Name: "year", Type: TypeInt},
					{Name: "value", Type: TypeReal},
				},
				Required: []string{"benchmark_id", "year", "value"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"benchmark_id"}, Parent: "benchmarks", ParentColumns: []string{"benchmark_id"}},
				},
			},
			{
				Name: "assessment_elements",
				Columns: []Column{
					{Name: "code", Type: TypeText},
					{Name: "text", Type: TypeText},
					{Name: "response_type", Type: TypeText},
					{Name: "type", Type: TypeText},
				},
				PrimaryKey: []string{"code"},
				Required:   []string{"response_type"},
			},
			{
				Name: "assessment_results",
				Columns: []Column{
					{Name: "assessment_id", Type: TypeInt},
					{Name: "code", Type: TypeText},
					{Name: "country_name", Type: TypeText},
					{Name: "response", Type: TypeText},
					{Name: "source", Type: TypeText},
					{Name: "year", Type: TypeText},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "publication_date", Type: TypeDate},
				},
				Required: []string{"assessment_id", "code", "country_name"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"code"}, Parent: "assessment_elements", ParentColumns: []string{"code"}},
					{Columns: []string{"country_name"}, Parent: "country", ParentColumns: []string{"country_name"}},
				},
			},
			{
				Name: "assessment_trends",
				Columns: []Column{
					{Name: "trend_id", Type: TypeInt},
					{Name: "country_name", Type: TypeText},
					{Name: "emissions_metric", Type: TypeText},
					{Name: "emissions_boundary", Type: TypeText},
					{Name: "units", Type: TypeText},
					{Name: "last_historical_year", Type: TypeInt},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "publication_date", Type: TypeDate},
				},
				PrimaryKey: []string{"trend_id", "country_name"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"country_name"}, Parent: "country", ParentColumns: []string{"country_name"}},
				},
			},
			{
				Name: "value_per_year",
				Columns: []Column{
					{Name: "trend_id", Type: TypeInt},
					{Name: "country_name", Type: TypeText},
					{Name: "year", Type: TypeInt},
					{Name: "value", Type: TypeReal},
				},
				Required: []string{"trend_id", "country_name", "year", "value"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"trend_id", "country_name"}, Parent: "assessment_trends", ParentColumns: []string{"trend_id", "country_name"}},
				},
			},
			{
				Name: "trend_values",
				Columns: []Column{
					{Name: "trend_id", Type: TypeInt},
					{Name: "country_name", Type: TypeText},
					{Name: "year", Type: TypeInt},
					{Name: "value", Type: TypeReal},
				},
				Required: []string{"trend_id", "country_name", "year", "value"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"trend_id", "country_name"}, Parent: "assessment_trends", ParentColumns: []string{"trend_id", "country_name"}},
				},
			},
		},
	}
}
