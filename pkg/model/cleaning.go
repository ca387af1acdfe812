// pkg/model/cleaning.go
package model

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	Entity            string      // Entity being cleaned (receipts, items, brands, users)
	ColumnName        string      // Column that was cleaned
	OriginalValue     interface{} // Original value (may be nil)
	NewValue          string      // New value after cleaning
	RowIdentifier     string      // ID that identifies the row (usually _id)
	CleaningOperation string      // Type of cleaning performed (e.g., "not_a_time")
	CleaningReason    string      // Reason for cleaning (e.g., "missing_date")
}

// Cleaning operation names
const (
	OpNotATime          = "not_a_time"
	OpNumericMissing    = "numeric_missing"
	OpDefaultSentinel   = "default_sentinel"
	OpBrandCodeDerived  = "brand_code_derived"
	OpCategoryCodeBuilt = "category_code_derived"
	OpCPGRefRewrite     = "cpg_ref_rewrite"
	OpUnknownFill       = "unknown_fill"
	OpRoleForced        = "role_forced"
	OpDuplicateID       = "duplicate_id"
)

// SummarizeOperations counts operations by type
func SummarizeOperations(ops []CleaningOperation) map[string]int {
	summary := make(map[string]int)
	for _, op := range ops {
		summary[op.CleaningOperation]++
	}
	return summary
}
