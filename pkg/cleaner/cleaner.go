// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

// Raw export file names
const (
	ReceiptsFile = "receipts.json"
	BrandsFile   = "brands.json"
	UsersFile    = "users.json"
)

// Sink receives every cleaned table
type Sink interface {
	Write(t *model.Table) error
}

// DataCleaner runs the receipts, brands and users stages in that order.
// The first failing stage stops the run; earlier outputs stay on disk.
type DataCleaner struct {
	inputDir string
	sink     Sink
	dedup    DedupPolicy
	logger   *zap.Logger
}

// Result summarizes a cleaning run
type Result struct {
	RunID      string
	Rows       map[string]int // Rows written per entity
	Operations []model.CleaningOperation
	Duration   time.Duration
}

// NewDataCleaner creates a DataCleaner reading raw exports from inputDir
func NewDataCleaner(inputDir string, sink Sink, logger *zap.Logger) (*DataCleaner, error) {
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &DataCleaner{
		inputDir: inputDir,
		sink:     sink,
		dedup:    DedupNone,
		logger:   logger,
	}, nil
}

// WithDedupPolicy sets how duplicate user ids are handled
func (c *DataCleaner) WithDedupPolicy(policy DedupPolicy) *DataCleaner {
	c.dedup = policy
	return c
}

// Run cleans every entity and writes the outputs
func (c *DataCleaner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Rows:  make(map[string]int),
	}
	logger := c.logger.With(zap.String("run_id", result.RunID))

	stages := []struct {
		name string
		run  func(*zap.Logger, *Result) error
	}{
		{"receipts", c.cleanReceipts},
		{"brands", c.cleanBrands},
		{"users", c.cleanUsers},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := stage.run(logger, result); err != nil {
			logger.Error("Cleaning stage failed", zap.String("stage", stage.name), zap.Error(err))
			return result, fmt.Errorf("%s stage: %w", stage.name, err)
		}
	}

	result.Duration = time.Since(start)
	logSummary(logger, result)
	logger.Info("--------------------DONE--------------------")
	return result, nil
}

func (c *DataCleaner) cleanReceipts(logger *zap.Logger, result *Result) error {
	logger.Info("Starting receipts cleaning")

	raw, err := readFile(filepath.Join(c.inputDir, ReceiptsFile), rawdoc.ReadReceipts)
	if err != nil {
		return err
	}

	receipts, items, ops := CleanReceipts(raw)
	result.Operations = append(result.Operations, ops...)

	if err := writeTable(c.sink, model.Receipts, receipts, result); err != nil {
		return err
	}
	if err := writeTable(c.sink, model.Items, items, result); err != nil {
		return err
	}

	logger.Info("Finished cleaning receipts and items",
		zap.Int("receipts", len(receipts)),
		zap.Int("items", len(items)))
	return nil
}

func (c *DataCleaner) cleanBrands(logger *zap.Logger, result *Result) error {
	logger.Info("Starting brands cleaning")

	raw, err := readFile(filepath.Join(c.inputDir, BrandsFile), rawdoc.ReadBrands)
	if err != nil {
		return err
	}

	brands, ops := CleanBrands(raw)
	result.Operations = append(result.Operations, ops...)

	if err := writeTable(c.sink, model.Brands, brands, result); err != nil {
		return err
	}

	logger.Info("Finished cleaning brands", zap.Int("brands", len(brands)))
	return nil
}

func (c *DataCleaner) cleanUsers(logger *zap.Logger, result *Result) error {
	logger.Info("Starting users cleaning")

	raw, err := readFile(filepath.Join(c.inputDir, UsersFile), rawdoc.ReadUsers)
	if err != nil {
		return err
	}

	users, ops, err := CleanUsers(raw, c.dedup)
	result.Operations = append(result.Operations, ops...)
	if err != nil {
		return err
	}

	if dups := countOps(ops, model.OpDuplicateID); dups > 0 {
		logger.Warn("Duplicate user ids found",
			zap.Int("duplicates", dups),
			zap.String("policy", string(c.dedup)))
	}

	if err := writeTable(c.sink, model.Users, users, result); err != nil {
		return err
	}

	logger.Info("Finished cleaning users", zap.Int("users", len(users)))
	return nil
}

func writeTable[R model.Row](sink Sink, e model.Entity, rows []R, result *Result) error {
	table, err := model.BuildTable(e, rows)
	if err != nil {
		return err
	}

	if err := sink.Write(table); err != nil {
		return fmt.Errorf("failed to write %s: %w", e.Name, err)
	}
	result.Rows[e.Name] = table.Len()
	return nil
}

func readFile[T any](path string, read func(io.Reader, string) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return read(f, path)
}

func countOps(ops []model.CleaningOperation, operation string) int {
	n := 0
	for _, op := range ops {
		if op.CleaningOperation == operation {
			n++
		}
	}
	return n
}

// logSummary logs per-entity row counts and cleaning operation counts
func logSummary(logger *zap.Logger, result *Result) {
	summary := model.SummarizeOperations(result.Operations)
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]zap.Field, 0, len(names)+len(result.Rows)+1)
	for _, e := range model.Entities() {
		fields = append(fields, zap.Int(e.Name+"_rows", result.Rows[e.Name]))
	}
	for _, name := range names {
		fields = append(fields, zap.Int(name, summary[name]))
	}
	fields = append(fields, zap.Duration("duration", result.Duration))
	logger.Info("Cleaning summary", fields...)
}
