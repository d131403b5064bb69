package normalize

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/verdant-labs/climload/internal/extract"
	"github.com/verdant-labs/climload/internal/staging"
)

// ASCORSources holds the extracted frames for the sovereign family, one per
// discovery role.
type ASCORSources struct {
	Countries         *extract.Frame
	Benchmarks        *extract.Frame
	Indicators        *extract.Frame
	AssessmentResults *extract.Frame
	AssessmentTrends  *extract.Frame
}

// ASCORNormalizer reshapes sovereign source frames into staging tables.
type ASCORNormalizer struct {
	logger *slog.Logger
}

// NewASCOR creates a normalizer. A nil logger discards output.
func NewASCOR(logger *slog.Logger) *ASCORNormalizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ASCORNormalizer{logger: logger}
}

// Normalize produces the family's staging tables keyed by target table name.
func (n *ASCORNormalizer) Normalize(src *ASCORSources) (map[string]*staging.Table, error) {
	out := make(map[string]*staging.Table)

	country, err := n.countries(src.Countries)
	if err != nil {
		return nil, err
	}
	out["country"] = country

	benchmarks, values, err := n.benchmarks(src.Benchmarks)
	if err != nil {
		return nil, err
	}
	out["benchmarks"] = benchmarks
	out["benchmark_values"] = values

	elements, err := n.elements(src.Indicators)
	if err != nil {
		return nil, err
	}
	out["assessment_elements"] = elements

	results, err := n.results(src.AssessmentResults)
	if err != nil {
		return nil, err
	}
	out["assessment_results"] = results

	trends, perYear, trendValues, err := n.trends(src.AssessmentTrends)
	if err != nil {
		return nil, err
	}
	out["assessment_trends"] = trends
	out["value_per_year"] = perYear
	out["trend_values"] = trendValues

	return out, nil
}

// Verbose country headers as published, mapped to target columns.
var countryHeaders = []struct{ source, target string }{
	{"Name", "country_name"},
	{"Country ISO code", "iso"},
	{"Region", "region"},
	{"World Bank lending group", "bank_lending_group"},
	{"International Monetary Fund fiscal monitor category", "imf_category"},
	{"Type of Party to the United Nations Framework Convention on Climate Change", "un_party_type"},
}

func (n *ASCORNormalizer) countries(f *extract.Frame) (*staging.Table, error) {
	cols := make([]string, len(countryHeaders))
	pos := make([]int, len(countryHeaders))
	for i, m := range countryHeaders {
		p, ok := f.Index(m.source)
		if !ok {
			return nil, missingColumn(f, m.source)
		}
		cols[i] = m.target
		pos[i] = p
	}

	t := staging.NewTable("country", cols...)
	for r := 0; r < f.Len(); r++ {
		row := staging.Row{}
		for i := range cols {
			if v, ok := cell(f, r, pos[i]); ok {
				row[cols[i]] = v
			}
		}
		t.MustAppend(row)
	}
	return t, nil
}

func (n *ASCORNormalizer) benchmarks(f *extract.Frame) (*staging.Table, *staging.Table, error) {
	idx := frameIndex(f)
	for _, required := range []string{"id", "country"} {
		if _, ok := idx[required]; !ok {
			return nil, nil, missingColumn(f, required)
		}
	}

	benchmarks := staging.NewTable("benchmarks",
		"benchmark_id", "country_name", "publication_date",
		"emissions_metric", "emissions_boundary", "units", "benchmark_type")
	values := staging.NewTable("benchmark_values", "benchmark_id", "year", "value")

	yearCols := map[string]int{}
	for i, h := range f.Headers {
		if isYearHeader(h) {
			yearCols[strings.TrimSpace(h)] = i
		}
	}
	years := sortedKeys(yearCols)

	for r := 0; r < f.Len(); r++ {
		row := staging.Row{}
		id, ok := cell(f, r, idx["id"])
		if !ok {
			warnSkip(n.logger, "benchmarks", "missing benchmark id", r)
			continue
		}
		row["benchmark_id"] = id
		if v, ok := cell(f, r, idx["country"]); ok {
			row["country_name"] = v
		}
		if p, ok := idx["publication_date"]; ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, true); ok {
					row["publication_date"] = d
				} else {
					warnSkip(n.logger, "benchmarks", "unparseable publication date", r)
				}
			}
		}
		for _, pair := range []struct{ src, dst string }{
			{"emissions_metric", "emissions_metric"},
			{"emissions_boundary", "emissions_boundary"},
			{"units", "units"},
			{"benchmark_type", "benchmark_type"},
		} {
			if p, ok := idx[pair.src]; ok {
				if v, ok := cell(f, r, p); ok {
					row[pair.dst] = v
				}
			}
		}
		benchmarks.MustAppend(row)

		for _, year := range years {
			v, ok := cell(f, r, yearCols[year])
			if !ok {
				continue
			}
			num, ok := numeric(v)
			if !ok {
				warnSkip(n.logger, "benchmark_values", "non-numeric value for year "+year, r)
				continue
			}
			values.MustAppend(staging.Row{"benchmark_id": id, "year": year, "value": num})
		}
	}
	return benchmarks, values, nil
}

func (n *ASCORNormalizer) elements(f *extract.Frame) (*staging.Table, error) {
	idx := frameIndex(f)
	if _, ok := idx["code"]; !ok {
		return nil, missingColumn(f, "code")
	}

	t := staging.NewTable("assessment_elements", "code", "text", "response_type", "type")
	for r := 0; r < f.Len(); r++ {
		row := staging.Row{}
		if v, ok := cell(f, r, idx["code"]); ok {
			row["code"] = v
		}
		if p, ok := idx["text"]; ok {
			if v, ok := cell(f, r, p); ok {
				row["text"] = v
			}
		}
		if p, ok := idx["type"]; ok {
			if v, ok := cell(f, r, p); ok {
				row["type"] = v
			}
		}
		// Elements without a stated response type are explicitly marked
		// rather than left null.
		row["response_type"] = "Not specified"
		if p, ok := idx["units_or_response_type"]; ok {
			if v, ok := cell(f, r, p); ok {
				row["response_type"] = v
			}
		}
		t.MustAppend(row)
	}
	return t, nil
}

// Response column prefixes in the assessment results export. Each prefixed
// column holds one coded response; optional "year <col>" and "source <col>"
// columns carry companions.
var responsePrefixes = []string{"indicator ", "metric ", "area "}

func (n *ASCORNormalizer) results(f *extract.Frame) (*staging.Table, error) {
	idPos, ok := f.Index("Id")
	if !ok {
		return nil, missingColumn(f, "Id")
	}
	countryPos, ok := f.Index("Country")
	if !ok {
		return nil, missingColumn(f, "Country")
	}

	type responseCol struct {
		code      string
		pos       int
		yearPos   int // -1 when absent
		sourcePos int // -1 when absent
	}
	var respCols []responseCol
	for i, h := range f.Headers {
		for _, prefix := range responsePrefixes {
			if strings.HasPrefix(h, prefix) {
				rc := responseCol{code: h[strings.Index(h, " ")+1:], pos: i, yearPos: -1, sourcePos: -1}
				if p, ok := f.Index("year " + h); ok {
					rc.yearPos = p
				}
				if p, ok := f.Index("source " + h); ok {
					rc.sourcePos = p
				}
				respCols = append(respCols, rc)
				break
			}
		}
	}

	t := staging.NewTable("assessment_results",
		"assessment_id", "code", "country_name", "response",
		"source", "year", "assessment_date", "publication_date")

	for r := 0; r < f.Len(); r++ {
		id, ok := cell(f, r, idPos)
		if !ok {
			warnSkip(n.logger, "assessment_results", "missing assessment id", r)
			continue
		}
		countryName, _ := cell(f, r, countryPos)

		var assessmentDate, publicationDate string
		if p, ok := f.Index("Assessment date"); ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, true); ok {
					assessmentDate = d
				} else {
					warnSkip(n.logger, "assessment_results", "unparseable assessment date", r)
				}
			}
		}
		if p, ok := f.Index("Publication date"); ok {
			if v, ok := cell(f, r, p); ok {
				if d, ok := parseDate(v, true); ok {
					publicationDate = d
				} else {
					warnSkip(n.logger, "assessment_results", "unparseable publication date", r)
				}
			}
		}

		for _, rc := range respCols {
			row := staging.Row{"assessment_id": id, "code": rc.code}
			if countryName != "" {
				row["country_name"] = countryName
			}
			if v, ok := cell(f, r, rc.pos); ok {
				row["response"] = v
			}
			if assessmentDate != "" {
				row["assessment_date"] = assessmentDate
			}
			if publicationDate != "" {
				row["publication_date"] = publicationDate
			}
			if rc.yearPos >= 0 {
				if v, ok := cell(f, r, rc.yearPos); ok {
					if y, ok := yearString(v); ok {
						row["year"] = y
					} else {
						warnSkip(n.logger, "assessment_results", "non-numeric year for "+rc.code, r)
					}
				}
			}
			if rc.sourcePos >= 0 {
				if v, ok := cell(f, r, rc.sourcePos); ok {
					row["source"] = v
				}
			}
			t.MustAppend(row)
		}
	}
	return t, nil
}

func (n *ASCORNormalizer) trends(f *extract.Frame) (*staging.Table, *staging.Table, *staging.Table, error) {
	idx := frameIndex(f)
	for _, required := range []string{"id", "country"} {
		if _, ok := idx[required]; !ok {
			return nil, nil, nil, missingColumn(f, required)
		}
	}

	trends := staging.NewTable("assessment_trends",
		"trend_id", "country_name", "emissions_metric", "emissions_boundary",
		"units", "last_historical_year", "assessment_date", "publication_date")
	perYear := staging.NewTable("value_per_year", "trend_id", "country_name", "year", "value")
	trendValues := staging.NewTable("trend_values", "trend_id", "country_name", "year", "value")

	yearCols := map[string]int{}
	for i, h := range f.Headers {
		h = strings.TrimSpace(h)
		if isYearHeader(h) {
			if y, err := strconv.Atoi(h); err == nil && y >= 2021 && y <= 2030 {
				yearCols[h] = i
			}
		}
	}
	years := sortedKeys(yearCols)

	for r := 0; r < f.Len(); r++ {
		id, ok := cell(f, r, idx["id"])
		if !ok {
			warnSkip(n.logger, "assessment_trends", "missing trend id", r)
			continue
		}
		countryName, hasCountry := cell(f, r, idx["country"])

		row := staging.Row{"trend_id": id}
		if hasCountry {
			row["country_name"] = countryName
		}
		for _, pair := range []struct{ src, dst string }{
			{"emissions_metric", "emissions_metric"},
			{"emissions_boundary", "emissions_boundary"},
			{"units", "units"},
		} {
			if p, ok := idx[pair.src]; ok {
				if v, ok := cell(f, r, p); ok {
					row[pair.dst] = v
				}
			}
		}
		if p, ok := idx["last_historical_year"]; ok {
			if v, ok := cell(f, r, p); ok {
				if y, ok := yearString(v); ok {
					row["last_historical_year"] = y
				} else {
					warnSkip(n.logger, "assessment_trends", "non-numeric last historical year", r)
				}
			}
		}
		for _, pair := range []struct{ src, dst string }{
			{"assessment_date", "assessment_date"},
			{"publication_date", "publication_date"},
		} {
			if p, ok := idx[pair.src]; ok {
				if v, ok := cell(f, r, p); ok {
					if d, ok := parseDate(v, true); ok {
						row[pair.dst] = d
					} else {
						warnSkip(n.logger, "assessment_trends", "unparseable "+pair.src, r)
					}
				}
			}
		}
		trends.MustAppend(row)

		for _, year := range years {
			v, ok := cell(f, r, yearCols[year])
			if !ok {
				continue
			}
			num, ok := numeric(v)
			if !ok {
				warnSkip(n.logger, "value_per_year", "non-numeric value for year "+year, r)
				continue
			}
			vrow := staging.Row{"trend_id": id, "year": year, "value": num}
			if hasCountry {
				vrow["country_name"] = countryName
			}
			perYear.MustAppend(vrow)
		}

		// The historical reference point travels as a dedicated
		// year/value column pair rather than a melted year column.
		yp, hasYearCol := idx["year_metric_ep1.a.i"]
		vp, hasValueCol := idx["metric_ep1.a.i"]
		if hasYearCol && hasValueCol {
			yv, okYear := cell(f, r, yp)
			vv, okValue := cell(f, r, vp)
			if okYear && okValue {
				year, okY := yearString(yv)
				num, okN := numeric(vv)
				if okY && okN {
					vrow := staging.Row{"trend_id": id, "year": year, "value": num}
					if hasCountry {
						vrow["country_name"] = countryName
					}
					trendValues.MustAppend(vrow)
				} else {
					warnSkip(n.logger, "trend_values", "non-numeric historical reference", r)
				}
			}
		}
	}
	return trends, perYear, trendValues, nil
}

// sortedKeys returns the map keys sorted; year keys are fixed-width digits
// so lexicographic order is numeric order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
