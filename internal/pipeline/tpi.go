package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/verdant-labs/climload/internal/discovery"
	"github.com/verdant-labs/climload/internal/extract"
	"github.com/verdant-labs/climload/internal/normalize"
	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
)

// Discovery roles for the corporate family. The latest-assessments and CP
// globs each match two exports, partitioned by keyword; the MQ descriptor
// expands into one artifact per methodology cycle.
var tpiDescriptors = []discovery.Descriptor{
	{Role: "company_v5", DirToken: "tpi", FileGlob: "Company_Latest_Assessments*", Keywords: []string{"5.0"}},
	{Role: "company_v4", DirToken: "tpi", FileGlob: "Company_Latest_Assessments*", Exclude: []string{"5.0"}},
	{Role: "mq", DirToken: "tpi", FileGlob: "MQ_Assessments*", CyclePattern: `Methodology_(\d+)`},
	{Role: "cp_standard", DirToken: "tpi", FileGlob: "CP_Assessments*", Exclude: []string{"regional"}},
	{Role: "cp_regional", DirToken: "tpi", FileGlob: "CP_Assessments*", Keywords: []string{"regional"}},
	{Role: "sector_benchmarks", DirToken: "tpi", FileGlob: "Sector_Benchmarks*"},
}

// TPI is the corporate family pipeline.
type TPI struct {
	dataDir string
	locator *discovery.Locator
	logger  *slog.Logger
}

// NewTPI creates the pipeline rooted at dataDir.
func NewTPI(dataDir string, logger *slog.Logger) *TPI {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TPI{
		dataDir: dataDir,
		locator: discovery.NewLocator(logger),
		logger:  logger,
	}
}

func (p *TPI) Name() string           { return "tpi" }
func (p *TPI) Family() *schema.Family { return schema.TPI() }

// Discover resolves the latest tpi release directory, then the artifact
// set within it.
func (p *TPI) Discover(ctx context.Context) ([]discovery.Artifact, error) {
	dir, fallback, err := p.locator.FindLatestDir(p.dataDir, "tpi")
	if err != nil {
		return nil, err
	}
	arts, err := p.locator.Discover(dir, tpiDescriptors)
	if err != nil {
		return nil, err
	}
	if fallback {
		for i := range arts {
			arts[i].Fallback = true
		}
	}
	return arts, nil
}

// Extract reads every artifact into a source frame; MQ artifacts keep
// their methodology cycle and arrive sorted by it.
func (p *TPI) Extract(ctx context.Context, arts []discovery.Artifact) (Sources, error) {
	src := &normalize.TPISources{}
	for _, art := range arts {
		frame, err := extract.ReadFile(art.Path)
		if err != nil {
			return nil, err
		}
		switch art.Role {
		case "company_v5":
			src.CompanyV5 = frame
		case "company_v4":
			src.CompanyV4 = frame
		case "mq":
			src.MQ = append(src.MQ, normalize.MQFrame{Cycle: art.Cycle, Frame: frame})
		case "cp_standard":
			src.CPStandard = frame
		case "cp_regional":
			src.CPRegional = frame
		case "sector_benchmarks":
			src.SectorBenchmarks = frame
		default:
			return nil, fmt.Errorf("tpi: unexpected artifact role %s", art.Role)
		}
	}
	for _, required := range []struct {
		name string
		ok   bool
	}{
		{"company_v5", src.CompanyV5 != nil},
		{"company_v4", src.CompanyV4 != nil},
		{"mq", len(src.MQ) > 0},
		{"cp_standard", src.CPStandard != nil},
		{"cp_regional", src.CPRegional != nil},
		{"sector_benchmarks", src.SectorBenchmarks != nil},
	} {
		if !required.ok {
			return nil, fmt.Errorf("tpi: no artifact for role %s", required.name)
		}
	}
	sort.Slice(src.MQ, func(i, j int) bool { return src.MQ[i].Cycle < src.MQ[j].Cycle })
	return src, nil
}

// Normalize reshapes the frames into the family's staging tables.
func (p *TPI) Normalize(src Sources) (map[string]*staging.Table, error) {
	tpiSrc, ok := src.(*normalize.TPISources)
	if !ok {
		return nil, fmt.Errorf("tpi: unexpected source type %T", src)
	}
	return normalize.NewTPI(p.logger).Normalize(tpiSrc)
}

// SourceFiles maps each target table to the export it came from. Tables
// fed by several files point at the first contributing artifact.
func (p *TPI) SourceFiles(arts []discovery.Artifact) map[string]string {
	byRole := artifactByRole(arts)
	paths := map[string]string{}
	for table, role := range map[string]string{
		"company":              "company_v5",
		"company_answer":       "mq",
		"mq_assessment":        "mq",
		"cp_assessment":        "cp_standard",
		"cp_alignment":         "cp_standard",
		"cp_projection":        "cp_standard",
		"sector_benchmark":     "sector_benchmarks",
		"benchmark_projection": "sector_benchmarks",
	} {
		if art, ok := byRole[role]; ok {
			paths[table] = art.Path
		}
	}
	return paths
}

var _ Pipeline = (*TPI)(nil)
