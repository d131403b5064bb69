package commands

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/verdant-labs/climload/internal/audit"
	"github.com/verdant-labs/climload/internal/cli/config"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the ingestion audit trail",
		Long: `List the most recent audit_log records from the target store, newest
first. The audit trail is append-only and survives every load.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of records to show")
	return cmd
}

func runAudit(cmd *cobra.Command, limit int) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()

	ad, err := connectTarget(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = ad.Close() }()

	rec, err := openRecorder(ctx, ad, logger)
	if err != nil {
		return err
	}
	records, err := rec.List(ctx, limit)
	if err != nil {
		return err
	}
	renderAuditRecords(cmd.OutOrStdout(), records)
	return nil
}

func renderAuditRecords(w io.Writer, records []audit.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Timestamp", "Process", "Status", "Table", "Rows", "Notes"})

	for _, r := range records {
		tableName := r.TableName
		rows := ""
		if r.TableName != "" {
			rows = strconv.FormatInt(r.RowsInserted, 10)
		}
		t.AppendRow(table.Row{
			r.ExecutionID,
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Process,
			string(r.Status),
			tableName,
			rows,
			r.Notes,
		})
	}
	t.Render()
}
