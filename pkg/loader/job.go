package loader

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/David-Botos/rewards-staging/pkg/model"
)

// TableJob describes one staging table to load
type TableJob struct {
	Entity model.Entity
	Source string // Path of the cleaned JSON export
}

// NewTableJob creates a job loading an entity from its JSON export
func NewTableJob(entity model.Entity, source string) TableJob {
	return TableJob{Entity: entity, Source: source}
}

// Table returns the staging table name
func (j TableJob) Table() string {
	return j.Entity.Table
}

// TableResult represents the result of loading one staging table
type TableResult struct {
	Table       string
	Entity      string
	Success     bool
	RowsRead    int64
	RowsLoaded  int64
	RowsInTable int64
	Errors      []ErrorRecord
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// NewTableResult initializes a result for a job
func NewTableResult(job TableJob) *TableResult {
	return &TableResult{
		Table:     job.Table(),
		Entity:    job.Entity.Name,
		StartTime: time.Now(),
		Errors:    make([]ErrorRecord, 0),
	}
}

// Complete marks the load as complete and calculates duration
func (r *TableResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success && !r.HasErrors()
}

// AddError adds an error to the result
func (r *TableResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
	r.Success = false
}

// HasErrors checks if any errors occurred
func (r *TableResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Report aggregates the table results of one load run
type Report struct {
	RunID     string
	Results   []TableResult
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// NewReport initializes a report for a run
func NewReport(runID string) *Report {
	return &Report{
		RunID:     runID,
		StartTime: time.Now(),
		Results:   make([]TableResult, 0),
	}
}

// Add appends a table result
func (r *Report) Add(result TableResult) {
	r.Results = append(r.Results, result)
}

// Complete marks the run as complete and calculates duration
func (r *Report) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// SuccessfulTables lists tables that loaded and verified
func (r *Report) SuccessfulTables() []string {
	var tables []string
	for _, res := range r.Results {
		if res.Success {
			tables = append(tables, res.Table)
		}
	}
	return tables
}

// FailedTables maps each failed table to its first error
func (r *Report) FailedTables() map[string]ErrorRecord {
	failed := make(map[string]ErrorRecord)
	for _, res := range r.Results {
		if !res.Success && res.HasErrors() {
			failed[res.Table] = res.Errors[0]
		}
	}
	return failed
}

// TotalRows returns the number of rows loaded across tables
func (r *Report) TotalRows() int64 {
	var total int64
	for _, res := range r.Results {
		total += res.RowsLoaded
	}
	return total
}

// ErrorSummary counts errors by category
func (r *Report) ErrorSummary() map[ErrorCategory]int {
	summary := make(map[ErrorCategory]int)
	for _, res := range r.Results {
		for _, e := range res.Errors {
			summary[e.Category]++
		}
	}
	return summary
}

// String renders a short human readable report
func (r *Report) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Load run %s: %d tables, %d rows, %s\n",
		r.RunID, len(r.Results), r.TotalRows(), r.Duration.Round(time.Millisecond)))

	results := make([]TableResult, len(r.Results))
	copy(results, r.Results)
	sort.Slice(results, func(i, j int) bool { return results[i].Table < results[j].Table })

	for _, res := range results {
		status := "OK"
		if !res.Success {
			status = "FAILED"
		}
		sb.WriteString(fmt.Sprintf("  %-14s %-6s %d rows", res.Table, status, res.RowsLoaded))
		if res.HasErrors() {
			sb.WriteString(" " + res.Errors[0].String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
