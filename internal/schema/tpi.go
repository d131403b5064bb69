package schema

// TPI returns the corporate assessment family: company reference data keyed
// by (name, methodology version), questionnaire answers, management-quality
// and carbon-performance assessments, and sector benchmark projections.
func TPI() *Family {
	return &Family{
		Name: "tpi",
		Tables: []*Table{
			{
				Name: "company",
				Columns: []Column{
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "geography", Type: TypeText},
					{Name: "geography_code", Type: TypeText},
					{Name: "sector_name", Type: TypeText},
					{Name: "ca100_focus", Type: TypeBool},
					{Name: "size_classification", Type: TypeText},
					{Name: "isin", Type: TypeText},
					{Name: "sedol", Type: TypeText},
				},
				PrimaryKey: []string{"company_name", "version"},
			},
			{
				Name: "company_answer",
				Columns: []Column{
					{Name: "question_code", Type: TypeText},
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "question_text", Type: TypeText},
					{Name: "response", Type: TypeText},
				},
				PrimaryKey: []string{"question_code", "company_name", "version"},
				Required:   []string{"response"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"company_name", "version"}, Parent: "company", ParentColumns: []string{"company_name", "version"}},
				},
			},
			{
				Name: "mq_assessment",
				Columns: []Column{
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "publication_date", Type: TypeDate},
					{Name: "level", Type: TypeReal},
					{Name: "tpi_cycle", Type: TypeInt},
					{Name: "performance_change", Type: TypeText},
				},
				Required: []string{"company_name", "version", "assessment_date", "tpi_cycle"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"company_name", "version"}, Parent: "company", ParentColumns: []string{"company_name", "version"}},
				},
			},
			{
				Name: "cp_assessment",
				Columns: []Column{
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "publication_date", Type: TypeDate},
					{Name: "assumptions", Type: TypeText},
					{Name: "cp_unit", Type: TypeText},
					{Name: "projection_cutoff", Type: TypeDate},
					{Name: "benchmark_id", Type: TypeText},
					{Name: "is_regional", Type: TypeBool},
				},
				Required: []string{"company_name", "version", "assessment_date", "is_regional"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"company_name", "version"}, Parent: "company", ParentColumns: []string{"company_name", "version"}},
				},
			},
			{
				Name: "cp_alignment",
				Columns: []Column{
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "cp_alignment_year", Type: TypeInt},
					{Name: "cp_alignment_value", Type: TypeText},
					{Name: "is_regional", Type: TypeBool},
				},
				Required: []string{"company_name", "version", "cp_alignment_year", "cp_alignment_value", "is_regional"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"company_name", "version"}, Parent: "company", ParentColumns: []string{"company_name", "version"}},
				},
			},
			{
				Name: "cp_projection",
				Columns: []Column{
					{Name: "company_name", Type: TypeText},
					{Name: "version", Type: TypeText},
					{Name: "assessment_date", Type: TypeDate},
					{Name: "cp_projection_year", Type: TypeInt},
					{Name: "cp_projection_value", Type: TypeReal},
					{Name: "is_regional", Type: TypeBool},
				},
				Required: []string{"company_name", "version", "cp_projection_year", "cp_projection_value", "is_regional"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"company_name", "version"}, Parent: "company", ParentColumns: []string{"company_name", "version"}},
				},
			},
			{
				Name: "sector_benchmark",
				Columns: []Column{
					{Name: "benchmark_id", Type: TypeText},
					{Name: "sector_name", Type: TypeText},
					{Name: "scenario_name", Type: TypeText},
					{Name: "region", Type: TypeText},
					{Name: "release_date", Type: TypeDate},
					{Name: "unit", Type: TypeText},
				},
				PrimaryKey: []string{"benchmark_id"},
			},
			{
				Name: "benchmark_projection",
				Columns: []Column{
					{Name: "benchmark_id", Type: TypeText},
					{Name: "benchmark_projection_year", Type: TypeInt},
					{Name: "benchmark_projection_attribute", Type: TypeReal},
				},
				Required: []string{"benchmark_id", "benchmark_projection_year", "benchmark_projection_attribute"},
				ForeignKeys: []ForeignKey{
					{Columns: []string{"benchmark_id"}, Parent: "sector_benchmark", ParentColumns: []string{"benchmark_id"}},
				},
			},
		},
	}
}
