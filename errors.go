package csvq

import (
	"errors"
	"fmt"

	"github.com/csvq/csvq/domain/model"
	csvqdriver "github.com/csvq/csvq/driver"
)

// Sentinels re-exported from the inner layers so callers can match load
// failures with errors.Is against the root package alone.
var (
	// ErrMalformedCSV indicates input the tokenizer cannot parse.
	ErrMalformedCSV = model.ErrMalformedCSV

	// ErrTypeMismatch indicates a row that violates its column's inferred
	// type during load.
	ErrTypeMismatch = model.ErrTypeMismatch

	// ErrDuplicateTableName indicates two sources normalizing to the same
	// table name.
	ErrDuplicateTableName = csvqdriver.ErrDuplicateTableName

	// ErrQueryFailed indicates the backend rejected the SQL.
	ErrQueryFailed = errors.New("csvq: query failed")

	// ErrBZ2CompressionNotSupported indicates a bzip2 export request; the
	// standard library only decompresses bzip2.
	ErrBZ2CompressionNotSupported = model.ErrBZ2CompressionNotSupported
)

// QueryFailedError wraps a backend rejection. The backend's message is
// kept verbatim because the core cannot reproduce its diagnostics.
type QueryFailedError struct {
	// Query is the SQL that was submitted.
	Query string
	// Err is the backend error, unmodified.
	Err error
}

// Error implements the error interface.
func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("csvq: query failed: %v", e.Err)
}

// Unwrap returns the backend error.
func (e *QueryFailedError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrQueryFailed.
func (e *QueryFailedError) Is(target error) bool {
	return target == ErrQueryFailed
}
