// Package audit maintains the append-only ingestion trail. The audit_log
// table is the one managed table a load never drops; its history is the
// only durable record of what each run saw, decided, and wrote.
package audit

import "time"

// Status classifies one audit record.
type Status string

const (
	StatusRunStart           Status = "RUN_START"
	StatusSourceDiscovered   Status = "SOURCE_DISCOVERED"
	StatusValidationStart    Status = "VALIDATION_START"
	StatusValidationPassed   Status = "VALIDATION_PASSED"
	StatusValidationWarnings Status = "VALIDATION_WARNINGS"
	StatusValidationFailed   Status = "VALIDATION_FAILED"
	StatusTableLoaded        Status = "TABLE_LOADED"
	StatusRunCompleted       Status = "RUN_COMPLETED"
	StatusRunFailed          Status = "RUN_FAILED"
)

// Record is one audit_log row. ExecutionID and Timestamp are assigned by
// the recorder; everything else is caller-supplied. TableName, SourceFile
// and RowsInserted are optional and empty/zero for run-level records.
type Record struct {
	ExecutionID  int64
	Timestamp    time.Time
	User         string
	Process      string
	Status       Status
	Notes        string
	TableName    string
	SourceFile   string
	RowsInserted int64
}
