package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verdant-labs/climload/internal/adapter"
	"github.com/verdant-labs/climload/internal/audit"
	"github.com/verdant-labs/climload/internal/discovery"
	"github.com/verdant-labs/climload/internal/load"
	"github.com/verdant-labs/climload/internal/staging"
	"github.com/verdant-labs/climload/internal/validate"
)

// FamilyRun binds a pipeline to the target it loads and the recorder that
// audits it. Families may share a target or use separate ones.
type FamilyRun struct {
	Pipeline Pipeline
	Adapter  adapter.Adapter
	Recorder *audit.Recorder
}

// Result is the outcome of one family's run.
type Result struct {
	Family    string
	RunID     string
	Status    validate.Status
	Artifacts []discovery.Artifact
	Reports   []validate.Report
	Counts    map[string]int64
	Err       error
}

// Failed reports whether the family aborted without loading.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Runner executes family pipelines sequentially and independently: one
// family's failure is recorded and does not stop the next.
type Runner struct {
	logger    *slog.Logger
	validator *validate.Validator
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		logger:    logger,
		validator: validate.New(logger),
	}
}

// Run executes every family and returns one result each.
func (r *Runner) Run(ctx context.Context, runs []FamilyRun) []Result {
	results := make([]Result, 0, len(runs))
	for _, fr := range runs {
		res := r.runFamily(ctx, fr)
		if res.Err != nil {
			r.logger.Error("family run failed", "family", res.Family, "error", res.Err)
		} else {
			r.logger.Info("family run completed", "family", res.Family, "status", string(res.Status))
		}
		results = append(results, res)
	}
	return results
}

// AnyFailed reports whether any family aborted.
func AnyFailed(results []Result) bool {
	for i := range results {
		if results[i].Failed() {
			return true
		}
	}
	return false
}

func (r *Runner) runFamily(ctx context.Context, fr FamilyRun) Result {
	p := fr.Pipeline
	res := Result{Family: p.Name(), RunID: uuid.NewString()}
	runNotes := "run " + res.RunID

	r.record(ctx, fr, audit.Record{
		Process: p.Name(),
		Status:  audit.StatusRunStart,
		Notes:   runNotes,
	})

	fail := func(err error) Result {
		res.Err = err
		r.record(ctx, fr, audit.Record{
			Process: p.Name(),
			Status:  audit.StatusRunFailed,
			Notes:   fmt.Sprintf("%s: %v", runNotes, err),
		})
		return res
	}

	arts, err := p.Discover(ctx)
	if err != nil {
		return fail(err)
	}
	res.Artifacts = arts
	for _, art := range arts {
		notes := "role " + art.Role
		if art.Fallback {
			notes += " (lexicographic fallback)"
		}
		r.record(ctx, fr, audit.Record{
			Process:    p.Name(),
			Status:     audit.StatusSourceDiscovered,
			Notes:      notes,
			SourceFile: art.Path,
		})
	}

	src, err := p.Extract(ctx, arts)
	if err != nil {
		return fail(err)
	}
	tables, err := p.Normalize(src)
	if err != nil {
		return fail(err)
	}
	for _, t := range tables {
		staging.CleanSentinels(t)
	}

	sourceFiles := p.SourceFiles(arts)
	reports, err := r.validator.ValidateFamily(p.Family(), tables, &auditObserver{
		runner: r, ctx: ctx, fr: fr, notes: runNotes, sourceFiles: sourceFiles,
	})
	if err != nil {
		return fail(err)
	}
	res.Reports = reports
	res.Status = validate.Summary(reports)

	if res.Status == validate.StatusFailed {
		res.Err = &ValidationError{Family: p.Name(), Failed: failedTables(reports)}
		r.record(ctx, fr, audit.Record{
			Process: p.Name(),
			Status:  audit.StatusRunFailed,
			Notes:   fmt.Sprintf("%s: %v", runNotes, res.Err),
		})
		return res
	}

	counts, err := load.New(fr.Adapter, r.logger).Load(ctx, p.Family(), tables, reports)
	if err != nil {
		return fail(err)
	}
	res.Counts = counts

	ordered, err := p.Family().LoadOrder()
	if err == nil {
		for _, def := range ordered {
			r.record(ctx, fr, audit.Record{
				Process:      p.Name(),
				Status:       audit.StatusTableLoaded,
				Notes:        runNotes,
				TableName:    def.Name,
				SourceFile:   sourceFiles[def.Name],
				RowsInserted: counts[def.Name],
			})
		}
	}

	r.record(ctx, fr, audit.Record{
		Process: p.Name(),
		Status:  audit.StatusRunCompleted,
		Notes:   runNotes,
	})
	return res
}

// auditObserver turns each table's validation transition into audit
// records: VALIDATION_START when the table enters validation, then its
// final status.
type auditObserver struct {
	runner      *Runner
	ctx         context.Context
	fr          FamilyRun
	notes       string
	sourceFiles map[string]string
}

func (o *auditObserver) TableStarted(table string) {
	o.runner.record(o.ctx, o.fr, audit.Record{
		Process:    o.fr.Pipeline.Name(),
		Status:     audit.StatusValidationStart,
		Notes:      o.notes,
		TableName:  table,
		SourceFile: o.sourceFiles[table],
	})
}

func (o *auditObserver) TableFinished(rep validate.Report) {
	status := audit.StatusValidationPassed
	notes := o.notes
	switch rep.Status {
	case validate.StatusFailed:
		status = audit.StatusValidationFailed
		notes = fmt.Sprintf("%s: %d violation(s)", o.notes, len(rep.Violations))
	case validate.StatusWarnings:
		status = audit.StatusValidationWarnings
		notes = fmt.Sprintf("%s: %d violation(s)", o.notes, len(rep.Violations))
	}
	o.runner.record(o.ctx, o.fr, audit.Record{
		Process:    o.fr.Pipeline.Name(),
		Status:     status,
		Notes:      notes,
		TableName:  rep.Table,
		SourceFile: o.sourceFiles[rep.Table],
	})
}

// record writes one audit record, logging and continuing on failure. The
// audit trail must never turn a successful load into a failed run.
func (r *Runner) record(ctx context.Context, fr FamilyRun, rec audit.Record) {
	if fr.Recorder == nil {
		return
	}
	if _, err := fr.Recorder.Write(ctx, rec); err != nil {
		r.logger.Error("audit write failed", "family", rec.Process, "status", string(rec.Status), "error", err)
	}
}
