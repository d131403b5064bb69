package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"sync"
	"time"

	"github.com/verdant-labs/climload/internal/adapter"
)

// Recorder appends audit records to the audit_log table of one target.
// Execution ids are assigned here, strictly increasing across runs: the
// recorder seeds from MAX(execution_id) at open and counts up. Each record
// is written in its own statement so a later failure never takes earlier
// records with it.
type Recorder struct {
	ad     adapter.Adapter
	logger *slog.Logger

	mu     sync.Mutex
	nextID int64
}

// NewRecorder creates a recorder over a connected adapter. A nil logger
// discards output.
func NewRecorder(ad adapter.Adapter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recorder{ad: ad, logger: logger}
}

// Open migrates the audit schema and seeds the execution id sequence.
// An unreachable audit store is fatal; a run that cannot be audited must
// not proceed.
func (r *Recorder) Open(ctx context.Context) error {
	if err := Migrate(r.ad.DB(), r.ad.MigrationDialect()); err != nil {
		return fmt.Errorf("audit store unavailable: %w", err)
	}

	var maxID sql.NullInt64
	row := r.ad.DB().QueryRowContext(ctx, "SELECT MAX(execution_id) FROM audit_log")
	if err := row.Scan(&maxID); err != nil {
		return fmt.Errorf("audit store unavailable: %w", err)
	}

	r.mu.Lock()
	r.nextID = maxID.Int64 + 1
	r.mu.Unlock()
	return nil
}

// Write appends one record, filling in the execution id, timestamp and
// user. Callers log and continue on error; a failed audit write must not
// abort a run that already passed its gates.
func (r *Recorder) Write(ctx context.Context, rec Record) (int64, error) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.mu.Unlock()

	rec.ExecutionID = id
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.User == "" {
		rec.User = currentUser()
	}

	query := fmt.Sprintf(`INSERT INTO audit_log
		(execution_id, execution_timestamp, execution_user, process,
		 execution_status, execution_notes, table_name, source_file, rows_inserted)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		r.ad.Placeholder(1), r.ad.Placeholder(2), r.ad.Placeholder(3),
		r.ad.Placeholder(4), r.ad.Placeholder(5), r.ad.Placeholder(6),
		r.ad.Placeholder(7), r.ad.Placeholder(8), r.ad.Placeholder(9))

	_, err := r.ad.DB().ExecContext(ctx, query,
		rec.ExecutionID, rec.Timestamp, nullable(rec.User), rec.Process,
		string(rec.Status), nullable(rec.Notes), nullable(rec.TableName),
		nullable(rec.SourceFile), rec.RowsInserted)
	if err != nil {
		return 0, fmt.Errorf("audit write failed: %w", err)
	}

	r.logger.Debug("audit record written",
		"execution_id", rec.ExecutionID,
		"process", rec.Process,
		"status", string(rec.Status))
	return rec.ExecutionID, nil
}

// List returns the most recent records, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]Record, error) {
	query := fmt.Sprintf(`SELECT execution_id, execution_timestamp, execution_user,
		process, execution_status, execution_notes, table_name, source_file, rows_inserted
		FROM audit_log ORDER BY execution_id DESC LIMIT %s`, r.ad.Placeholder(1))

	rows, err := r.ad.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var rec Record
		var execUser, notes, tableName, sourceFile sql.NullString
		var rowsInserted sql.NullInt64
		var status string
		if err := rows.Scan(&rec.ExecutionID, &rec.Timestamp, &execUser, &rec.Process,
			&status, &notes, &tableName, &sourceFile, &rowsInserted); err != nil {
			return nil, fmt.Errorf("scanning audit record: %w", err)
		}
		rec.Status = Status(status)
		rec.User = execUser.String
		rec.Notes = notes.String
		rec.TableName = tableName.String
		rec.SourceFile = sourceFile.String
		rec.RowsInserted = rowsInserted.Int64
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit records: %w", err)
	}
	return records, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
