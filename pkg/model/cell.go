// pkg/model/cell.go
package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Sentinel values substituted for missing data
const (
	Unknown      = "UNKNOWN"
	ItemNotFound = "ITEM NOT FOUND"
	Consumer     = "CONSUMER"
	CogsRef      = "Cogs"
)

const (
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
	csvLayout = "2006-01-02 15:04:05.000"
)

var jsonNull = []byte("null")

// Cell is a single nullable value in a cleaned table. Every cell knows how
// to render itself for the JSON export, the CSV export and the database.
type Cell interface {
	driver.Valuer
	json.Marshaler
	IsNull() bool
	CSV() string
}

// Timestamp is a nullable UTC instant. The zero value is NotATime, which is
// distinct from the Unix epoch.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// NotATime marks a missing or unparseable date
var NotATime = Timestamp{}

// NewTimestamp wraps t as a valid timestamp normalised to UTC
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC(), Valid: true}
}

func (t Timestamp) IsNull() bool { return !t.Valid }

func (t Timestamp) CSV() string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(csvLayout)
}

func (t Timestamp) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.Time.UTC(), nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.Quote(t.Time.UTC().Format(isoLayout))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*t = NotATime
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = NewTimestamp(parsed)
	return nil
}

func parseCSVTime(s string) (time.Time, error) {
	t, err := time.Parse(csvLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: %w", err)
	}
	return t, nil
}

// Number is a nullable float. Non-finite values are never valid.
type Number struct {
	Float64 float64
	Valid   bool
}

// Missing marks an absent or uncoercible numeric value
var Missing = Number{}

// NewNumber returns Missing for NaN and infinities
func NewNumber(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Number{Float64: f, Valid: true}
}

func (n Number) IsNull() bool { return !n.Valid }

func (n Number) CSV() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64)
}

func (n Number) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Float64, nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return strconv.AppendFloat(nil, n.Float64, 'f', -1, 64), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*n = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = NewNumber(f)
	return nil
}

// Text is a nullable string
type Text struct {
	String string
	Valid  bool
}

// NullText is the null string
var NullText = Text{}

func NewText(s string) Text { return Text{String: s, Valid: true} }

// TextFromPtr maps nil to NullText
func TextFromPtr(s *string) Text {
	if s == nil {
		return NullText
	}
	return NewText(*s)
}

func (t Text) IsNull() bool { return !t.Valid }

func (t Text) CSV() string { return t.String }

func (t Text) Value() (driver.Value, error) {
	if !t.Valid {
		return nil, nil
	}
	return t.String, nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return json.Marshal(t.String)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*t = NullText
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("text: %w", err)
	}
	*t = NewText(s)
	return nil
}

// Bool is a nullable boolean passed through untouched
type Bool struct {
	Bool  bool
	Valid bool
}

var NullBool = Bool{}

func NewBool(b bool) Bool { return Bool{Bool: b, Valid: true} }

func (b Bool) IsNull() bool { return !b.Valid }

func (b Bool) CSV() string {
	if !b.Valid {
		return ""
	}
	return strconv.FormatBool(b.Bool)
}

func (b Bool) Value() (driver.Value, error) {
	if !b.Valid {
		return nil, nil
	}
	return b.Bool, nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	if !b.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.FormatBool(b.Bool)), nil
}

func (b *Bool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		*b = NullBool
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bool: %w", err)
	}
	*b = NewBool(v)
	return nil
}

// Flag is a boolean that can never be null: an unknown flag renders as the
// UNKNOWN sentinel in every output.
type Flag struct {
	On    bool
	Known bool
}

// UnknownFlag is the sentinel flag
var UnknownFlag = Flag{}

func NewFlag(b bool) Flag { return Flag{On: b, Known: true} }

func (f Flag) IsNull() bool { return false }

func (f Flag) String() string {
	if !f.Known {
		return Unknown
	}
	return strconv.FormatBool(f.On)
}

func (f Flag) CSV() string { return f.String() }

func (f Flag) Value() (driver.Value, error) { return f.String(), nil }

func (f Flag) MarshalJSON() ([]byte, error) {
	if !f.Known {
		return json.Marshal(Unknown)
	}
	return []byte(strconv.FormatBool(f.On)), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("flag: %w", err)
	}
	parsed, err := parseFlag(v)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func parseFlag(v interface{}) (Flag, error) {
	switch val := v.(type) {
	case bool:
		return NewFlag(val), nil
	case string:
		if val == Unknown {
			return UnknownFlag, nil
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return UnknownFlag, fmt.Errorf("flag: cannot parse %q", val)
		}
		return NewFlag(b), nil
	default:
		return UnknownFlag, fmt.Errorf("flag: unexpected %T", v)
	}
}
