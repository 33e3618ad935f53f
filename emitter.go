package csvq

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"syscall"
	"time"
)

// EmitOptions configures CSV output.
type EmitOptions struct {
	// Delimiter is the output field delimiter. Zero means comma.
	Delimiter rune
	// Null is the text emitted for NULL values. The default is an empty
	// field.
	Null string
}

// NewEmitOptions returns the default emit options (comma delimiter,
// NULL as empty field).
func NewEmitOptions() EmitOptions {
	return EmitOptions{Delimiter: ','}
}

// Emit streams a query result to w as CSV. The header row carries the
// column names exactly as the backend returned them. Each data row is
// written and flushed as it arrives, so memory stays bounded by one row
// regardless of result size. A downstream pipe closing ends emission
// cleanly with a nil error.
func Emit(w io.Writer, rows *sql.Rows, opts EmitOptions) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if done, err := writeRow(cw, columns); done || err != nil {
		return err
	}

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	record := make([]string, len(columns))

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return err
		}
		for i, v := range values {
			record[i] = formatValue(v, opts.Null)
		}
		if done, err := writeRow(cw, record); done || err != nil {
			return err
		}
	}
	return rows.Err()
}

// writeRow writes and flushes one record. done is true when the
// downstream reader went away, which callers treat as a clean early
// termination. A record larger than the writer's buffer can surface the
// pipe error from Write itself rather than from Flush, so both paths are
// checked.
func writeRow(cw *csv.Writer, record []string) (done bool, err error) {
	if err := cw.Write(record); err != nil {
		if isClosedPipe(err) {
			return true, nil
		}
		return false, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		if isClosedPipe(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// isClosedPipe reports whether a write failed because the reader closed
// its end.
func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed)
}

// formatValue renders one output value in canonical text form: integers
// and reals in shortest decimal notation, with no engine-specific
// formatting artifacts.
func formatValue(v any, null string) string {
	switch v := v.(type) {
	case nil:
		return null
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
