package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrMalformedCSV indicates input the tokenizer cannot parse.
	ErrMalformedCSV = errors.New("csvq: malformed csv input")

	// ErrTypeMismatch indicates a field that cannot be coerced to its
	// column's inferred type during load.
	ErrTypeMismatch = errors.New("csvq: type mismatch")
)

// MalformedCSVError reports unparseable CSV input together with the byte
// offset at which parsing stopped.
type MalformedCSVError struct {
	// Path is the source file, when known to the caller.
	Path string
	// Offset is the number of input bytes consumed before the failure.
	Offset int64
	// Reason describes what the tokenizer rejected.
	Reason string
}

// Error implements the error interface.
func (e *MalformedCSVError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("csvq: malformed csv in %s at byte %d: %s", e.Path, e.Offset, e.Reason)
	}
	return fmt.Sprintf("csvq: malformed csv at byte %d: %s", e.Offset, e.Reason)
}

// Is reports whether target is ErrMalformedCSV.
func (e *MalformedCSVError) Is(target error) bool {
	return target == ErrMalformedCSV
}

// TypeMismatchError reports a row whose field cannot be coerced to the
// column's inferred type. The load of the owning file is aborted so no
// partial table is left queryable.
type TypeMismatchError struct {
	// Path is the source file.
	Path string
	// Table is the normalized table name.
	Table string
	// Column is the normalized column name.
	Column string
	// Row is the 1-based data row number, not counting the header.
	Row int
	// Value is the raw field that failed coercion.
	Value string
	// Type is the inferred column type the value violated.
	Type ColumnType
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("csvq: %s: row %d, column %q: value %q is not a valid %s",
		e.Path, e.Row, e.Column, e.Value, strings.ToLower(e.Type.String()))
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
