package rawdoc

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value is a raw field of a document. Present distinguishes an absent key
// from an explicit JSON null.
type Value struct {
	Present bool
	Raw     json.RawMessage
}

// Absent is the value of a missing key
var Absent = Value{}

// NewValue wraps raw JSON as a present field
func NewValue(raw json.RawMessage) Value {
	return Value{Present: true, Raw: raw}
}

// IsNull reports whether the field is absent or JSON null
func (v Value) IsNull() bool {
	return !v.Present || len(v.Raw) == 0 || bytes.Equal(bytes.TrimSpace(v.Raw), []byte("null"))
}

func (v Value) kind() byte {
	raw := bytes.TrimSpace(v.Raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// Str returns the value when it is a JSON string
func (v Value) Str() (string, bool) {
	if v.IsNull() || v.kind() != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v.Raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// IsString reports whether the value is a JSON string
func (v Value) IsString() bool {
	_, ok := v.Str()
	return ok
}

// Text renders any non-null scalar as text. Strings are returned as-is,
// numbers and booleans as their JSON literal, containers as compact JSON.
func (v Value) Text() (string, bool) {
	if v.IsNull() {
		return "", false
	}
	if s, ok := v.Str(); ok {
		return s, true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.Raw); err != nil {
		return string(bytes.TrimSpace(v.Raw)), true
	}
	return buf.String(), true
}

// TextPtr is Text with nil for null
func (v Value) TextPtr() *string {
	s, ok := v.Text()
	if !ok {
		return nil
	}
	return &s
}

// Truthy follows the usual dynamic-language truthiness: null, "", 0,
// false and empty containers are falsy.
func (v Value) Truthy() bool {
	if v.IsNull() {
		return false
	}
	raw := bytes.TrimSpace(v.Raw)
	switch v.kind() {
	case '"':
		s, _ := v.Str()
		return s != ""
	case 't':
		return true
	case 'f':
		return false
	case '[':
		var arr []json.RawMessage
		return json.Unmarshal(raw, &arr) == nil && len(arr) > 0
	case '{':
		var obj map[string]json.RawMessage
		return json.Unmarshal(raw, &obj) == nil && len(obj) > 0
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
}

// IsDigits reports whether the value is a non-empty string of decimal digits
func (v Value) IsDigits() bool {
	s, ok := v.Str()
	if !ok || s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Number coerces the value to a float. Strings are parsed after trimming;
// anything else that is not a JSON number is rejected.
func (v Value) Number() (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	var s string
	switch v.kind() {
	case '"':
		s, _ = v.Str()
		s = strings.TrimSpace(s)
	case 't', 'f', '[', '{':
		return 0, false
	default:
		s = string(bytes.TrimSpace(v.Raw))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsEmptyString reports whether the value is the empty JSON string
func (v Value) IsEmptyString() bool {
	s, ok := v.Str()
	return ok && s == ""
}

// Bool returns the value when it is a JSON boolean or a string spelling one
func (v Value) Bool() (bool, bool) {
	if v.IsNull() {
		return false, false
	}
	switch v.kind() {
	case 't':
		return true, true
	case 'f':
		return false, true
	case '"':
		s, _ := v.Str()
		b, err := strconv.ParseBool(s)
		return b, err == nil
	}
	return false, false
}

// Object decodes the value as a document
func (v Value) Object() (Document, bool) {
	if v.IsNull() || v.kind() != '{' {
		return nil, false
	}
	var doc Document
	if err := json.Unmarshal(v.Raw, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// Date unwraps a {"$date": ...} wrapper. The payload may be epoch
// milliseconds, an ISO-8601 string or a {"$numberLong": "..."} object.
// Anything else, including a falsy field or an instant outside years
// 0000-9999 UTC, yields ok=false.
func (v Value) Date() (time.Time, bool) {
	t, ok := v.date()
	if !ok || t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func (v Value) date() (time.Time, bool) {
	if !v.Truthy() {
		return time.Time{}, false
	}
	wrapper, ok := v.Object()
	if !ok {
		return time.Time{}, false
	}
	payload := wrapper.Field("$date")
	if payload.IsNull() {
		return time.Time{}, false
	}
	switch payload.kind() {
	case '"':
		s, _ := payload.Str()
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case '{':
		inner, ok := payload.Object()
		if !ok {
			return time.Time{}, false
		}
		s, ok := inner.Field("$numberLong").Str()
		if !ok {
			return time.Time{}, false
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return primitive.DateTime(ms).Time().UTC(), true
	default:
		ms, ok := payload.Number()
		// int64 conversion of an out of range float is undefined
		if !ok || math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
			return time.Time{}, false
		}
		return primitive.DateTime(int64(ms)).Time().UTC(), true
	}
}

// ObjectID unwraps a {"$oid": "..."} wrapper
func (v Value) ObjectID() (string, bool) {
	wrapper, ok := v.Object()
	if !ok {
		return "", false
	}
	oid, ok := wrapper.Field("$oid").Str()
	if !ok || oid == "" {
		return "", false
	}
	return oid, true
}
