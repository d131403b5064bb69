package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verdant-labs/climload/internal/cli/config"
	"github.com/verdant-labs/climload/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the latest exports without loading",
		Long: `Discover, extract and normalize the latest exports, then run the full
validation suite against the staging data. Nothing is written to the
target. Exits non-zero when any table has blocking violations.`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()

	if err := config.ValidateDataDir(cfg); err != nil {
		return err
	}
	pipelines, err := newPipelines(cfg, logger)
	if err != nil {
		return err
	}

	validator := validate.New(logger)
	blocked := false
	for _, p := range pipelines {
		arts, err := p.Discover(ctx)
		if err != nil {
			return err
		}
		src, err := p.Extract(ctx, arts)
		if err != nil {
			return err
		}
		tables, err := p.Normalize(src)
		if err != nil {
			return err
		}
		reports, err := validator.ValidateFamily(p.Family(), tables, nil)
		if err != nil {
			return err
		}
		renderReports(cmd.OutOrStdout(), p.Name(), reports)
		if validate.AnyBlocking(reports) {
			blocked = true
		}
	}

	if blocked {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func renderReports(w io.Writer, family string, reports []validate.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Family", "Table", "Status", "Rule", "Severity", "Message"})

	for _, rep := range reports {
		if len(rep.Violations) == 0 {
			t.AppendRow(table.Row{family, rep.Table, string(rep.Status), "", "", ""})
			continue
		}
		for _, v := range rep.Violations {
			t.AppendRow(table.Row{family, rep.Table, string(rep.Status), v.RuleID, v.Severity.String(), v.Message})
		}
	}
	t.Render()
}
