// Package commands implements the climload subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/verdant-labs/climload/internal/adapter"
	"github.com/verdant-labs/climload/internal/audit"
	"github.com/verdant-labs/climload/internal/cli/config"
	"github.com/verdant-labs/climload/internal/pipeline"
)

// getConfig returns the loaded configuration, falling back to defaults so
// commands stay usable in tests that bypass the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		DataDir:  config.DefaultDataDir,
		Families: config.DefaultFamilies,
		Target:   &config.TargetConfig{Type: config.DefaultTargetType, Path: config.DefaultTargetPath},
	}
}

// newPipelines builds one pipeline per configured family, preserving the
// configured order.
func newPipelines(cfg *config.Config, logger *slog.Logger) ([]pipeline.Pipeline, error) {
	pipelines := make([]pipeline.Pipeline, 0, len(cfg.Families))
	for _, fam := range cfg.Families {
		switch strings.ToLower(fam) {
		case "ascor":
			pipelines = append(pipelines, pipeline.NewASCOR(cfg.DataDir, logger))
		case "tpi":
			pipelines = append(pipelines, pipeline.NewTPI(cfg.DataDir, logger))
		default:
			return nil, fmt.Errorf("unknown family %q", fam)
		}
	}
	return pipelines, nil
}

// connectTarget opens the configured target store.
func connectTarget(ctx context.Context, cfg *config.Config, logger *slog.Logger) (adapter.Adapter, error) {
	ad, err := adapter.NewAdapter(cfg.Target.AdapterConfig(), logger)
	if err != nil {
		return nil, err
	}
	if err := ad.Connect(ctx, cfg.Target.AdapterConfig()); err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	return ad, nil
}

// openRecorder connects the audit recorder against the target store. An
// unreachable audit store is fatal: a run that cannot be audited must not
// start.
func openRecorder(ctx context.Context, ad adapter.Adapter, logger *slog.Logger) (*audit.Recorder, error) {
	rec := audit.NewRecorder(ad, logger)
	if err := rec.Open(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}
