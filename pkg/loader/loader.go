// Package loader replaces the staging tables with the cleaned exports. Each
// table is loaded independently; a failure is recorded in the report and
// the remaining tables still load.
package loader

//go:generate mockgen -source=loader.go -destination=mocks/mocks.go -package=mocks Stager

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/export"
	"github.com/David-Botos/rewards-staging/pkg/model"
)

// Stager is the warehouse side of a load
type Stager interface {
	// ReplaceTable drops and recreates the table, then inserts every row
	ReplaceTable(ctx context.Context, table *model.Table, batchSize int) (int64, error)
	// CountRows returns the number of rows in a staging table
	CountRows(ctx context.Context, table string) (int64, error)
}

// Loader moves cleaned exports into staging tables
type Loader struct {
	stager    Stager
	verifier  *Verifier
	logger    *zap.Logger
	sourceDir string
	batchSize int
	verify    bool
}

// New creates a loader reading JSON exports from sourceDir
func New(stager Stager, sourceDir string, logger *zap.Logger) (*Loader, error) {
	if stager == nil {
		return nil, errors.New("stager cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Loader{
		stager:    stager,
		verifier:  NewVerifier(stager, logger),
		logger:    logger,
		sourceDir: sourceDir,
		batchSize: 1000,
		verify:    true,
	}, nil
}

// WithBatchSize sets the number of rows per insert statement
func (l *Loader) WithBatchSize(batchSize int) *Loader {
	if batchSize > 0 {
		l.batchSize = batchSize
	}
	return l
}

// WithVerification toggles the post-load row count check
func (l *Loader) WithVerification(verify bool) *Loader {
	l.verify = verify
	return l
}

// Jobs returns a job per entity, in load order
func (l *Loader) Jobs(entities ...model.Entity) []TableJob {
	if len(entities) == 0 {
		entities = model.Entities()
	}
	jobs := make([]TableJob, 0, len(entities))
	for _, e := range entities {
		jobs = append(jobs, NewTableJob(e, filepath.Join(l.sourceDir, e.JSONFile())))
	}
	return jobs
}

// Run loads every entity, or every known entity when none are given. It
// only returns an error when ctx is cancelled; table failures go in the
// report.
func (l *Loader) Run(ctx context.Context, entities ...model.Entity) (*Report, error) {
	report := NewReport(uuid.NewString())
	logger := l.logger.With(zap.String("run_id", report.RunID))

	for _, job := range l.Jobs(entities...) {
		if err := ctx.Err(); err != nil {
			report.Complete()
			return report, err
		}

		result := l.LoadTable(ctx, job)
		if result.Success {
			logger.Info("Loaded staging table",
				zap.String("table", result.Table),
				zap.Int64("rows", result.RowsLoaded),
				zap.Duration("duration", result.Duration))
		} else {
			for _, e := range result.Errors {
				logger.Error("Failed to load staging table",
					zap.String("table", result.Table),
					zap.String("category", e.Category.String()),
					zap.Error(e.Error))
			}
		}
		report.Add(*result)
	}

	report.Complete()
	logger.Info("Load finished",
		zap.Int("tables", len(report.Results)),
		zap.Int("failed", len(report.FailedTables())),
		zap.Int64("rows", report.TotalRows()),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// LoadTable reads one export and replaces its staging table
func (l *Loader) LoadTable(ctx context.Context, job TableJob) *TableResult {
	result := NewTableResult(job)

	table, err := export.ReadJSON(job.Source, job.Entity)
	if err != nil {
		result.AddError(NewErrorRecord(err, ErrorCategoryRead).WithTable(job.Table()))
		result.Complete(false)
		return result
	}
	result.RowsRead = int64(table.Len())

	loaded, err := l.stager.ReplaceTable(ctx, table, l.batchSize)
	result.RowsLoaded = loaded
	if err != nil {
		wrapped := fmt.Errorf("failed to replace %s: %w", job.Table(), err)
		result.AddError(NewErrorRecord(wrapped, CategorizeError(err)).WithTable(job.Table()))
		result.Complete(false)
		return result
	}

	if l.verify {
		count, err := l.verifier.VerifyRowCount(ctx, job.Table(), result.RowsRead)
		result.RowsInTable = count
		if err != nil {
			result.AddError(NewErrorRecord(err, ErrorCategoryVerification).WithTable(job.Table()))
			result.Complete(false)
			return result
		}
	}

	result.Complete(true)
	return result
}
