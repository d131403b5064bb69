package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verdant-labs/climload/internal/discovery"
	"github.com/verdant-labs/climload/internal/extract"
	"github.com/verdant-labs/climload/internal/normalize"
	"github.com/verdant-labs/climload/internal/schema"
	"github.com/verdant-labs/climload/internal/staging"
)

// Discovery roles for the sovereign family. The assessments-results glob
// also matches the trends export, so keyword exclusion partitions them.
var ascorDescriptors = []discovery.Descriptor{
	{Role: "countries", DirToken: "ascor", FileGlob: "ASCOR_countries*"},
	{Role: "benchmarks", DirToken: "ascor", FileGlob: "ASCOR_benchmarks*"},
	{Role: "indicators", DirToken: "ascor", FileGlob: "ASCOR_indicators*"},
	{Role: "assessment_results", DirToken: "ascor", FileGlob: "ASCOR_assessments_results*", Exclude: []string{"trends"}},
	{Role: "assessment_trends", DirToken: "ascor", FileGlob: "ASCOR_assessments_results_trends_pathways*"},
}

// ASCOR is the sovereign family pipeline.
type ASCOR struct {
	dataDir string
	locator *discovery.Locator
	logger  *slog.Logger
}

// NewASCOR creates the pipeline rooted at dataDir.
func NewASCOR(dataDir string, logger *slog.Logger) *ASCOR {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ASCOR{
		dataDir: dataDir,
		locator: discovery.NewLocator(logger),
		logger:  logger,
	}
}

func (p *ASCOR) Name() string           { return "ascor" }
func (p *ASCOR) Family() *schema.Family { return schema.ASCOR() }

// Discover resolves the latest ascor release directory, then one artifact
// per role within it.
func (p *ASCOR) Discover(ctx context.Context) ([]discovery.Artifact, error) {
	dir, fallback, err := p.locator.FindLatestDir(p.dataDir, "ascor")
	if err != nil {
		return nil, err
	}
	arts, err := p.locator.Discover(dir, ascorDescriptors)
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

// Extract reads every artifact into a source frame.
func (p *ASCOR) Extract(ctx context.Context, arts []discovery.Artifact) (Sources, error) {
	byRole := artifactByRole(arts)
	src := &normalize.ASCORSources{}
	for _, bind := range []struct {
		role  string
		frame **extract.Frame
	}{
		{"countries", &src.Countries},
		{"benchmarks", &src.Benchmarks},
		{"indicators", &src.Indicators},
		{"assessment_results", &src.AssessmentResults},
		{"assessment_trends", &src.AssessmentTrends},
	} {
		art, ok := byRole[bind.role]
		if !ok {
			return nil, fmt.Errorf("ascor: no artifact for role %s", bind.role)
		}
		frame, err := extract.ReadFile(art.Path)
		if err != nil {
			return nil, err
		}
		*bind.frame = frame
	}
	return src, nil
}

// Normalize reshapes the frames into the family's staging tables.
func (p *ASCOR) Normalize(src Sources) (map[string]*staging.Table, error) {
	ascorSrc, ok := src.(*normalize.ASCORSources)
	if !ok {
		return nil, fmt.Errorf("ascor: unexpected source type %T", src)
	}
	return normalize.NewASCOR(p.logger).Normalize(ascorSrc)
}

// SourceFiles maps each target table to the export it came from.
func (p *ASCOR) SourceFiles(arts []discovery.Artifact) map[string]string {
	byRole := artifactByRole(arts)
	paths := map[string]string{}
	for table, role := range map[string]string{
		"country":             "countries",
		"benchmarks":          "benchmarks",
		"benchmark_values":    "benchmarks",
		"assessment_elements": "indicators",
		"assessment_results":  "assessment_results",
		"assessment_trends":   "assessment_trends",
		"value_per_year":      "assessment_trends",
		"trend_values":        "assessment_trends",
	} {
		if art, ok := byRole[role]; ok {
			paths[table] = art.Path
		}
	}
	return paths
}

var _ Pipeline = (*ASCOR)(nil)
