// pkg/cleaner/operations.go
package cleaner

import (
	"github.com/David-Botos/rewards-staging/pkg/model"
	"github.com/David-Botos/rewards-staging/pkg/rawdoc"
)

// audit collects the cleaning operations performed on one entity
type audit struct {
	entity string
	ops    []model.CleaningOperation
}

func newAudit(entity string) *audit {
	return &audit{entity: entity}
}

func (a *audit) record(rowID, column, operation, reason string, original interface{}, newValue string) {
	a.ops = append(a.ops, model.CleaningOperation{
		Entity:            a.entity,
		ColumnName:        column,
		OriginalValue:     original,
		NewValue:          newValue,
		RowIdentifier:     rowID,
		CleaningOperation: operation,
		CleaningReason:    reason,
	})
}

// rawText renders a raw value for the audit trail
func rawText(v rawdoc.Value) interface{} {
	if !v.Present {
		return nil
	}
	return string(v.Raw)
}

// toTimestamp converts a {"$date": epoch_ms} wrapper. Falsy fields and
// malformed payloads become NotATime; only the latter are audited.
func toTimestamp(a *audit, rowID, column string, v rawdoc.Value) model.Timestamp {
	t, ok := v.Date()
	if ok {
		return model.NewTimestamp(t)
	}
	if v.Truthy() {
		a.record(rowID, column, model.OpNotATime, "malformed_date", rawText(v), "NaT")
	}
	return model.NotATime
}

// toNumber coerces a numeric field. Null and "" map straight to Missing;
// anything that does not parse is audited and becomes Missing.
func toNumber(a *audit, rowID, column string, v rawdoc.Value) model.Number {
	if v.IsNull() || v.IsEmptyString() {
		return model.Missing
	}
	f, ok := v.Number()
	if !ok {
		a.record(rowID, column, model.OpNumericMissing, "cannot_convert_to_number", rawText(v), "")
		return model.Missing
	}
	n := model.NewNumber(f)
	if !n.Valid {
		a.record(rowID, column, model.OpNumericMissing, "non_finite_number", rawText(v), "")
	}
	return n
}

// withDefault returns sentinel when the key is absent. An explicit null
// stays null.
func withDefault(a *audit, rowID, column string, v rawdoc.Value, sentinel string) model.Text {
	if !v.Present {
		a.record(rowID, column, model.OpDefaultSentinel, "missing_field", nil, sentinel)
		return model.NewText(sentinel)
	}
	return model.TextFromPtr(v.TextPtr())
}

// fillUnknown replaces nil and "" with the UNKNOWN sentinel
func fillUnknown(a *audit, rowID, column string, v *string) string {
	if v == nil || *v == "" {
		var original interface{}
		if v != nil {
			original = *v
		}
		a.record(rowID, column, model.OpUnknownFill, "null_or_empty", original, model.Unknown)
		return model.Unknown
	}
	return *v
}
