package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/David-Botos/rewards-staging/pkg/connector"
)

// ErrRowCountMismatch is returned when a staging table does not hold the
// rows that were loaded into it
var ErrRowCountMismatch = errors.New("row count mismatch")

// ErrorCategory defines categories of errors during a load
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// The cleaned export could not be read
	ErrorCategoryRead
	// The warehouse could not be reached
	ErrorCategoryConnection
	// The staging table could not be dropped or created
	ErrorCategorySchema
	// Rows could not be written
	ErrorCategoryInsert
	// The table was written but its row count does not match
	ErrorCategoryVerification
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryRead:
		return "Read"
	case ErrorCategoryConnection:
		return "Connection"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryInsert:
		return "Insert"
	case ErrorCategoryVerification:
		return "Verification"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during a load
type ErrorRecord struct {
	Category  ErrorCategory
	TableName string
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithTable adds table information to the error record
func (r ErrorRecord) WithTable(table string) ErrorRecord {
	r.TableName = table
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.TableName != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", r.TableName))
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return sb.String()
}

// CategorizeError determines the category of a load error
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, ErrRowCountMismatch):
		return ErrorCategoryVerification
	case errors.Is(err, connector.ErrSchema):
		return ErrorCategorySchema
	case errors.Is(err, connector.ErrInsert):
		return ErrorCategoryInsert
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ErrorCategoryRead
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorCategoryConnection
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection") &&
		(strings.Contains(msg, "refused") ||
			strings.Contains(msg, "reset") ||
			strings.Contains(msg, "timeout") ||
			strings.Contains(msg, "eof")) {
		return ErrorCategoryConnection
	}
	return ErrorCategoryInsert
}
