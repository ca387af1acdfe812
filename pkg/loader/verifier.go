package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Verifier checks staging tables after a load
type Verifier struct {
	stager  Stager
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(stager Stager, logger *zap.Logger) *Verifier {
	return &Verifier{
		stager:  stager,
		logger:  logger,
		timeout: time.Minute * 5, // Default 5-minute timeout
	}
}

// WithTimeout sets a custom timeout for verification operations
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// VerifyRowCount compares the rows in a staging table with the rows that
// were loaded into it
func (v *Verifier) VerifyRowCount(ctx context.Context, table string, expected int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	count, err := v.stager.CountRows(ctx, table)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	if count != expected {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expected", expected),
			zap.Int64("actual", count),
			zap.Int64("difference", expected-count))
		return count, fmt.Errorf("%w: %s has %d rows, expected %d", ErrRowCountMismatch, table, count, expected)
	}

	v.logger.Info("Row count verification successful",
		zap.String("table", table),
		zap.Int64("count", count))
	return count, nil
}
