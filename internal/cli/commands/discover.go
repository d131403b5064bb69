package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verdant-labs/climload/internal/cli/config"
	"github.com/verdant-labs/climload/internal/discovery"
)

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Show which export files would be ingested",
		Long: `Resolve the latest export file for every dataset role without reading
or loading anything. Selections that fell back to lexicographic ordering
(no parseable date in the file name) are flagged.`,
		RunE: runDiscover,
	}
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if err := config.ValidateDataDir(cfg); err != nil {
		return err
	}
	pipelines, err := newPipelines(cfg, logger)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Role", "File", "Date", "Selection"})

	var firstErr error
	for _, p := range pipelines {
		arts, err := p.Discover(cmd.Context())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			t.AppendRow(table.Row{p.Name(), "", "", "", "ERROR: " + err.Error()})
			continue
		}
		for _, art := range arts {
			t.AppendRow(table.Row{p.Name(), art.Role, art.Path, artifactDate(art), artifactSelection(art)})
		}
	}
	t.Render()
	return firstErr
}

func artifactDate(art discovery.Artifact) string {
	if art.Date.IsZero() {
		return ""
	}
	return art.Date.Format("2006-01-02")
}

func artifactSelection(art discovery.Artifact) string {
	if art.Fallback {
		return "lexicographic fallback"
	}
	return "by date"
}
