package model

import (
	"bufio"
	"io"
	"strings"
)

// CSVReader tokenizes a byte stream into records of string fields. Each
// Read call produces one record, so callers can consume the header row
// separately and stream the rest. The reader tracks how many input bytes
// it has consumed so malformed input can be reported by offset.
//
// Dialect: fields are separated by a configurable delimiter (comma by
// default). A field may be quoted with double quotes; inside quotes the
// delimiter and newlines are literal and an embedded quote is written as
// two quotes. Unquoted \n and \r\n end a record. Blank lines are skipped.
type CSVReader struct {
	r      *bufio.Reader
	comma  rune
	offset int64
}

// NewCSVReader creates a CSVReader over r using the given field delimiter.
// A zero delimiter means comma.
func NewCSVReader(r io.Reader, comma rune) *CSVReader {
	if comma == 0 {
		comma = ','
	}
	return &CSVReader{
		r:     bufio.NewReader(r),
		comma: comma,
	}
}

// Offset returns the number of bytes consumed from the stream so far.
func (cr *CSVReader) Offset() int64 {
	return cr.offset
}

// ReadAll consumes the remaining records. The tokenizer stays lazy for
// callers that want row-at-a-time access; this is a convenience for the
// common load path.
func (cr *CSVReader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// tokenizer states
const (
	stateFieldStart = iota
	stateUnquoted
	stateQuoted
	stateQuoteEnd
)

// Read returns the next record, or io.EOF once the stream is exhausted.
// An unterminated quote or stray text after a closing quote yields a
// *MalformedCSVError carrying the byte offset.
func (cr *CSVReader) Read() (Record, error) {
	var (
		record  Record
		field   strings.Builder
		state   = stateFieldStart
		started bool
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
		state = stateFieldStart
	}

	for {
		ch, size, err := cr.r.ReadRune()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			switch state {
			case stateQuoted:
				return nil, &MalformedCSVError{Offset: cr.offset, Reason: "unterminated quoted field"}
			case stateUnquoted, stateQuoteEnd:
				endField()
				return record, nil
			default:
				if started {
					endField()
					return record, nil
				}
				return nil, io.EOF
			}
		}
		cr.offset += int64(size)

		switch state {
		case stateFieldStart:
			switch {
			case ch == cr.comma:
				started = true
				endField()
			case ch == '"':
				started = true
				state = stateQuoted
			case ch == '\n':
				if started {
					endField()
					return record, nil
				}
				// blank line
			case ch == '\r' && cr.consumeLF():
				if started {
					endField()
					return record, nil
				}
			default:
				started = true
				state = stateUnquoted
				field.WriteRune(ch)
			}

		case stateUnquoted:
			switch {
			case ch == cr.comma:
				endField()
			case ch == '\n':
				endField()
				return record, nil
			case ch == '\r' && cr.consumeLF():
				endField()
				return record, nil
			default:
				field.WriteRune(ch)
			}

		case stateQuoted:
			if ch == '"' {
				state = stateQuoteEnd
			} else {
				field.WriteRune(ch)
			}

		case stateQuoteEnd:
			switch {
			case ch == '"':
				// doubled quote inside a quoted field
				field.WriteByte('"')
				state = stateQuoted
			case ch == cr.comma:
				endField()
			case ch == '\n':
				endField()
				return record, nil
			case ch == '\r' && cr.consumeLF():
				endField()
				return record, nil
			default:
				return nil, &MalformedCSVError{Offset: cr.offset, Reason: "unexpected character after closing quote"}
			}
		}
	}
}

// consumeLF eats a \n that directly follows a \r, reporting whether the
// \r\n pair formed a line ending. A lone \r is literal data.
func (cr *CSVReader) consumeLF() bool {
	b, err := cr.r.Peek(1)
	if err != nil || b[0] != '\n' {
		return false
	}
	if _, err := cr.r.ReadByte(); err == nil {
		cr.offset++
	}
	return true
}
