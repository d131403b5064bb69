package normalize

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/verdant-labs/climload/internal/extract"
	"github.com/verdant-labs/climload/internal/staging"
)

// MQFrame pairs a management-quality export with the methodology cycle its
// filename carries.
type MQFrame struct {
	Cycle int
	Frame *extract.Frame
}

// TPISources holds the extracted frames for the corporate family.
type TPISources struct {
	CompanyV5        *extract.Frame
	CompanyV4        *extract.Frame
	MQ               []MQFrame
	CPStandard       *extract.Frame
	CPRegional       *extract.Frame
	SectorBenchmarks *extract.Frame
}

// TPINormalizer reshapes corporate source frames into staging tables.
type TPINormalizer struct {
	logger *slog.Logger
}

// NewTPI creates a normalizer. A nil logger discards output.
func NewTPI(logger *slog.Logger) *TPINormalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TPINormalizer{logger: logger}
}

// Normalize produces the family's staging tables keyed by target table name.
func (n *TPINormalizer) Normalize(src *TPISources) (map[string]*staging.Table, error) {
	out := make(map[string]*staging.Table)

	company, err := n.companies(src)
	if err != nil {
		return nil, err
	}
	out["company"] = company

	answers, err := n.companyAnswers(src.MQ)
	if err != nil {
		return nil, err
	}
	out["company_answer"] = answers

	mq, err := n.mqAssessments(src.MQ)
	if err != nil {
		return nil, err
	}
	out["mq_assessment"] = mq

	assessments := staging.NewTable("cp_assessment",
		"company_name", "version", "assessment_date", "publication_date",
		"assumptions", "cp_unit", "projection_cutoff", "benchmark_id", "is_regional")
	alignments := staging.NewTable("cp_alignment",
		"company_name", "version", "assessment_date",
		"cp_alignment_year", "cp_alignment_value", "is_regional")
	projections := staging.NewTable("cp_projection",
		"company_name", "version", "assessment_date",
		"cp_projection_year", "cp_projection_value", "is_regional")

	for _, cp := range []struct {
		frame    *extract.Frame
		regional bool
	}{
		{src.CPStandard, false},
		{src.CPRegional, true},
	} {
		if cp.frame == nil {
			continue
		}
		if err := n.carbonPerformance(cp.frame, cp.regional, assessments, alignments, projections); err != nil {
			return nil, err
		}
	}
	out["cp_assessment"] = assessments
	out["cp_alignment"] = alignments
	out["cp_projection"] = projections

	sector, projection, err := n.sectorBenchmarks(src.SectorBenchmarks)
	if err != nil {
		return nil, err
	}
	out["sector_benchmark"] = sector
	out["benchmark_projection"] = projection

	return out, nil
}

// Company metadata headers shared by both latest-assessments exports.
var companyHeaders = []struct{ source, target string }{
	{"Company Name", "company_name"},
	{"Geography", "geography"},
	{"Geography Code", "geography_code"},
	{"Sector", "sector_name"},
	{"CA100 Focus Company", "ca100_focus"},
	{"Large/Medium Classification", "size_classification"},
	{"ISINs", "isin"},
	{"SEDOL", "sedol"},
}

var companyColumns = []string{
	"company_name", "version", "geography", "geography_code", "sector_name",
	"ca100_focus", "size_classification", "isin", "sedol",
}

// companies builds the company registry: metadata rows from both
// latest-assessments exports plus name-only stubs from every MQ file, so MQ
// assessments always have a parent. First occurrence of a (name, version)
// pair wins, which keeps the richer metadata rows.
func (n *TPINormalizer) companies(src *TPISources) (*staging.Table, error) {
	t := staging.NewTable("company", companyColumns...)

	for _, meta := range []struct {
		frame   *extract.Frame
		version string
	}{
		{src.CompanyV5, "5.0"},
		{src.CompanyV4, "4.0"},
	} {
		if meta.frame == nil {
			continue
		}
		if err := appendCompanyMeta(t, meta.frame, meta.version); err != nil {
			return nil, err
		}
	}

	for _, mq := range src.MQ {
		idx := frameIndex(mq.Frame)
		namePos, ok := idx["company_name"]
		if !ok {
			return nil, missingColumn(mq.Frame, "company_name")
		}
		version := fmt.Sprintf("%d.0", mq.Cycle)
		for r := 0; r < mq.Frame.Len(); r++ {
			name, ok := cell(mq.Frame, r, namePos)
			if !ok {
				continue
			}
			t.MustAppend(staging.Row{"company_name": name, "version": version})
		}
	}

	dedupKeepFirst(t, "company_name", "version")
	return t, nil
}

func appendCompanyMeta(t *staging.Table, f *extract.Frame, version string) error {
	pos := make([]int, len(companyHeaders))
	for i, m := range companyHeaders {
		p, ok := f.Index(m.source)
		if !ok {
			return missingColumn(f, m.source)
		}
		pos[i] = p
	}
	for r := 0; r < f.Len(); r++ {
		row := staging.Row{"version": version}
		for i, m := range companyHeaders {
			if v, ok := cell(f, r, pos[i]); ok {
				row[m.target] = v
			}
		}
		t.MustAppend(row)
	}
	return nil
}

// companyAnswers explodes the "code|question text" encoded columns of each
// MQ export. Empty responses are dropped; when a question repeats across
// cycles for the same (question, company, version) the last occurrence wins.
func (n *TPINormalizer) companyAnswers(mq []MQFrame) (*staging.Table, error) {
	t := staging.NewTable("company_answer",
		"question_code", "company_name", "version", "question_text", "response")

	for _, m := range mq {
		idx := frameIndex(m.Frame)
		namePos, ok := idx["company_name"]
		if !ok {
			return nil, missingColumn(m.Frame, "company_name")
		}
		version := fmt.Sprintf("%d.0", m.Cycle)

		type question struct {
			code, text string
			pos        int
		}
		var questions []question
		for i, h := range m.Frame.Headers {
			key := snake(h)
			if !strings.HasPrefix(key, "q") || !strings.Contains(key, "|") {
				continue
			}
			code, text, _ := strings.Cut(h, "|")
			questions = append(questions, question{
				code: strings.TrimSpace(code),
				text: strings.TrimSpace(text),
				pos:  i,
			})
		}

		for _, q := range questions {
			for r := 0; r < m.Frame.Len(); r++ {
				name, ok := cell(m.Frame, r, namePos)
				if !ok {
					continue
				}
				response, ok := cell(m.Frame, r, q.pos)
				if !ok {
					continue
				}
				t.MustAppend(staging.Row{
					"question_code": q.code,
					"company_name":  name,
					"version":       version,
					"question_text": q.text,
					"response":      response,
				})
			}
		}
	}

	dedupKeepLast(t, "question_code", "company_name", "version")
	return t, nil
}

func (n *TPINormalizer) mqAssessments(mq []MQFrame) (*staging.Table, error) {
	t := staging.NewTable("mq_assessment",
		"company_name", "version", "assessment_date", "publication_date",
		"level", "tpi_cycle", "performance_change")

	for _, m := range mq {
		idx := frameIndex(m.Frame)
		namePos, ok := idx["company_name"]
		if !ok {
			return nil, missingColumn(m.Frame, "company_name")
		}
		version := fmt.Sprintf("%d.0", m.Cycle)
		cycle := strconv.Itoa(m.Cycle)

		for r := 0; r < m.Frame.Len(); r++ {
			name, ok := cell(m.Frame, r, namePos)
			if !ok {
				warnSkip(n.logger, "mq_assessment", "missing company name", r)
				continue
			}
			row := staging.Row{"company_name": name, "version": version, "tpi_cycle": cycle}

			if p, ok := idx["assessment_date"]; ok {
				if v, ok := cell(m.Frame, r, p); ok {
					if d, ok := parseDate(v, true); ok {
						row["assessment_date"] = d
					}
				}
			}
			// Assessments without a date carry no usable vintage.
			if _, ok := row["assessment_date"]; !ok {
				warnSkip(n.logger, "mq_assessment", "missing assessment date", r)
				continue
			}
			if p, ok := idx["publication_date"]; ok {
				if v, ok := cell(m.Frame, r, p); ok {
					if d, ok := parseDate(v, false); ok {
						row["publication_date"] = d
					} else {
						warnSkip(n.logger, "mq_assessment", "unparseable publication date", r)
					}
				}
			}
			if p, ok := idx["level"]; ok {
				if v, ok := cell(m.Frame, r, p); ok {
					if lvl, ok := parseLevel(v); ok {
						row["level"] = lvl
					} else {
						warnSkip(n.logger, "mq_assessment", "unparseable level "+v, r)
					}
				}
			}
			if p, ok := idx["performance_compared_to_previous_year"]; ok {
				if v, ok := cell(m.Frame, r, p); ok {
					row["performance_change"] = v
				}
			}
			t.MustAppend(row)
		}
	}
	return t, nil
}

// carbonPerformance appends one export's rows into the three CP tables.
// Alignment columns are "Carbon Performance Alignment <year>"; projections
// are bare 4-digit year columns. Carbon performance only exists for the 5.0
// methodology.
func (n *TPINormalizer) carbonPerformance(f *extract.Frame, regional bool, assessments, alignments, projections *staging.Table) error {
	namePos, ok := f.Index("Company Name")
	if !ok {
		return missingColumn(f, "Company Name")
	}
	isRegional := strconv.FormatBool(regional)

	const alignPrefix = "Carbon Performance Alignment "
	type yearCol struct {
		year string
		pos  int
	}
	var alignCols, projCols []yearCol
	for i, h := range f.Headers {
		h = strings.TrimSpace(h)
		if strings.HasPrefix(h, alignPrefix) {
			fields := strings.Fields(h)
			alignCols = append(alignCols, yearCol{year: fields[len(fields)-1], pos: i})
			continue
		}
		if len(h) == 4 && isYearHeader(h) {
			projCols = append(projCols, yearCol{year: h, pos: i})
		}
	}

	for r := 0; r < f.Len(); r++ {
		name, ok := cell(f, r, namePos)
		if !ok {
			warnSkip(n.logger, "cp_assessment", "missing company name", r)
			continue
		}

		var assessmentDate string
		if p, ok := f.Index("Assessment Date"); ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, true); ok {
					assessmentDate = d
				}
			}
		}
		if assessmentDate == "" {
			warnSkip(n.logger, "cp_assessment", "missing assessment date", r)
			continue
		}

		row := staging.Row{
			"company_name":    name,
			"version":         "5.0",
			"assessment_date": assessmentDate,
			"is_regional":     isRegional,
		}
		if p, ok := f.Index("Publication Date"); ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, false); ok {
					row["publication_date"] = d
				} else {
					warnSkip(n.logger, "cp_assessment", "unparseable publication date", r)
				}
			}
		}
		if p, ok := f.Index("History to Projection cutoff year"); ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, false); ok {
					row["projection_cutoff"] = d
				} else {
					warnSkip(n.logger, "cp_assessment", "unparseable projection cutoff", r)
				}
			}
		}
		for _, pair := range []struct{ src, dst string }{
			{"Assumptions", "assumptions"},
			{"CP Unit", "cp_unit"},
			{"Benchmark ID", "benchmark_id"},
		} {
			if p, ok := f.Index(pair.src); ok {
				if v, ok := cell(f, r, p); ok {
					row[pair.dst] = v
				}
			}
		}
		assessments.MustAppend(row)

		for _, c := range alignCols {
			v, ok := cell(f, r, c.pos)
			if !ok {
				continue
			}
			alignments.MustAppend(staging.Row{
				"company_name":       name,
				"version":            "5.0",
				"assessment_date":    assessmentDate,
				"cp_alignment_year":  c.year,
				"cp_alignment_value": v,
				"is_regional":        isRegional,
			})
		}
		for _, c := range projCols {
			v, ok := cell(f, r, c.pos)
			if !ok {
				continue
			}
			num, ok := numeric(v)
			if !ok {
				warnSkip(n.logger, "cp_projection", "non-numeric value for year "+c.year, r)
				continue
			}
			projections.MustAppend(staging.Row{
				"company_name":        name,
				"version":             "5.0",
				"assessment_date":     assessmentDate,
				"cp_projection_year":  c.year,
				"cp_projection_value": num,
				"is_regional":         isRegional,
			})
		}
	}
	return nil
}

func (n *TPINormalizer) sectorBenchmarks(f *extract.Frame) (*staging.Table, *staging.Table, error) {
	idx := frameIndex(f)
	if _, ok := idx["benchmark_id"]; !ok {
		return nil, nil, missingColumn(f, "benchmark_id")
	}

	sector := staging.NewTable("sector_benchmark",
		"benchmark_id", "sector_name", "scenario_name", "region", "release_date", "unit")
	projection := staging.NewTable("benchmark_projection",
		"benchmark_id", "benchmark_projection_year", "benchmark_projection_attribute")

	yearCols := map[string]int{}
	for i, h := range f.Headers {
		if isYearHeader(h) {
			yearCols[strings.TrimSpace(h)] = i
		}
	}
	years := sortedKeys(yearCols)

	for r := 0; r < f.Len(); r++ {
		id, ok := cell(f, r, idx["benchmark_id"])
		if !ok {
			warnSkip(n.logger, "sector_benchmark", "missing benchmark id", r)
			continue
		}
		row := staging.Row{"benchmark_id": id}
		for _, pair := range []struct{ src, dst string }{
			{"sector_name", "sector_name"},
			{"scenario_name", "scenario_name"},
			{"region", "region"},
			{"unit", "unit"},
		} {
			if p, ok := idx[pair.src]; ok {
				if v, ok := cell(f, r, p); ok {
					row[pair.dst] = v
				}
			}
		}
		if p, ok := idx["release_date"]; ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, true); ok {
					row["release_date"] = d
				} else {
					warnSkip(n.logger, "sector_benchmark", "unparseable release date", r)
				}
			}
		}
		sector.MustAppend(row)

		for _, year := range years {
			v, ok := cell(f, r, yearCols[year])
			if !ok {
				continue
			}
			num, ok := numeric(v)
			if !ok {
				warnSkip(n.logger, "benchmark_projection", "non-numeric value for year "+year, r)
				continue
			}
			projection.MustAppend(staging.Row{
				"benchmark_id":                   id,
				"benchmark_projection_year":      year,
				"benchmark_projection_attribute": num,
			})
		}
	}
	return sector, projection, nil
}
