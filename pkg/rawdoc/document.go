// Package rawdoc is the trust boundary for raw exports from the document
// store. It reads line-delimited JSON and decodes each line into a tagged
// per-entity schema; nothing outside this package touches untyped input.
package rawdoc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

var (
	// ErrMalformedLine is returned when a line is not a JSON object
	ErrMalformedLine = errors.New("malformed document line")
	// ErrMissingObjectID is returned when _id is not an {"$oid": ...} wrapper
	ErrMissingObjectID = errors.New("missing _id.$oid")
	// ErrMalformedItemList is returned when rewardsReceiptItemList is not a list of objects
	ErrMalformedItemList = errors.New("malformed rewardsReceiptItemList")
)

// maxLineSize bounds a single document line
const maxLineSize = 16 * 1024 * 1024

// Document is one decoded JSON object with its fields kept raw
type Document map[string]json.RawMessage

// Field returns the named field, tracking whether the key was present
func (d Document) Field(name string) Value {
	raw, ok := d[name]
	if !ok {
		return Absent
	}
	return NewValue(raw)
}

// Has reports whether the key is present, even if null
func (d Document) Has(name string) bool {
	_, ok := d[name]
	return ok
}

// ID unwraps the document's _id.$oid
func (d Document) ID() (string, error) {
	oid, ok := d.Field("_id").ObjectID()
	if !ok {
		return "", ErrMissingObjectID
	}
	return oid, nil
}

// LineError locates a structural error in an input file
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Scan calls fn for every non-blank line of r decoded as a Document.
// Decoding stops at the first error.
func Scan(r io.Reader, path string, fn func(line int, doc Document) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
			cause := ErrMalformedLine
			if err != nil {
				cause = fmt.Errorf("%w: %v", ErrMalformedLine, err)
			}
			return &LineError{Path: path, Line: line, Err: cause}
		}

		if err := fn(line, doc); err != nil {
			return &LineError{Path: path, Line: line, Err: err}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
