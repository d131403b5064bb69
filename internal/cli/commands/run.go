package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verdant-labs/climload/internal/cli/config"
	"github.com/verdant-labs/climload/internal/pipeline"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var showTables bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover, validate and load the configured families",
		Long: `Run the full ingestion for every configured family.

Each family discovers its latest export files, reshapes them into the
target schema, validates the staging data, and performs an all-or-nothing
full refresh of the target store. A family whose validation fails writes
nothing; other families still run.`,
		Example: `  # Load both families into the configured target
  climload run

  # Load only the sovereign family from a specific export root
  climload run --families ascor --data-dir ./exports

  # Show per-table row counts
  climload run --tables`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, showTables)
		},
	}

	cmd.Flags().BoolVar(&showTables, "tables", false, "Show per-table row counts after loading")
	return cmd
}

func runRun(cmd *cobra.Command, showTables bool) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()

	if err := config.ValidateDataDir(cfg); err != nil {
		return err
	}

	ad, err := connectTarget(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	rec, err := openRecorder(ctx, ad, logger)
	if err != nil {
		return err
	}

	pipelines, err := newPipelines(cfg, logger)
	if err != nil {
		return err
	}
	runs := make([]pipeline.FamilyRun, 0, len(pipelines))
	for _, p := range pipelines {
		runs = append(runs, pipeline.FamilyRun{Pipeline: p, Adapter: ad, Recorder: rec})
	}

	results := pipeline.NewRunner(logger).Run(ctx, runs)
	renderRunResults(cmd.OutOrStdout(), results)
	if showTables {
		renderTableCounts(cmd.OutOrStdout(), results)
	}

	if pipeline.AnyFailed(results) {
		return fmt.Errorf("one or more families failed")
	}
	return nil
}

func renderRunResults(w io.Writer, results []pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Status", "Sources", "Rows", "Error"})

	for _, res := range results {
		status := string(res.Status)
		errMsg := ""
		if res.Err != nil {
			if status == "" {
				status = "FAILED"
			}
			errMsg = res.Err.Error()
		}
		var rows int64
		for _, n := range res.Counts {
			rows += n
		}
		t.AppendRow(table.Row{res.Family, status, len(res.Artifacts), rows, errMsg})
	}
	t.Render()
}

func renderTableCounts(w io.Writer, results []pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Table", "Rows"})

	for _, res := range results {
		names := make([]string, 0, len(res.Counts))
		for name := range res.Counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t.AppendRow(table.Row{res.Family, name, res.Counts[name]})
		}
	}
	t.Render()
}
