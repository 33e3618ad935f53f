package model

import (
	"regexp"
	"strconv"
)

// DefaultSampleLimit is the default ceiling on the number of rows
// inspected per column during type inference. 0 means every row.
const DefaultSampleLimit = 1000

var (
	// integerPattern accepts an optional sign followed by digits with no
	// leading zero other than the literal "0".
	integerPattern = regexp.MustCompile(`^[+-]?(0|[1-9][0-9]*)$`)

	// realPattern accepts decimal and scientific notation. NaN and Inf
	// spellings are deliberately excluded; they widen to text.
	realPattern = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

// IsInteger reports whether s is classified integer.
func IsInteger(s string) bool {
	return integerPattern.MatchString(s)
}

// IsReal reports whether s is classified real: it must look like a
// decimal or scientific-notation value and actually parse in range.
func IsReal(s string) bool {
	if !realPattern.MatchString(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// InferOptions configures type inference.
type InferOptions struct {
	// SampleLimit caps the rows inspected per column. 0 means all rows.
	SampleLimit int
	// NullSentinel is an additional string treated as an absent value.
	// The empty string is always absent.
	NullSentinel string
}

// NewInferOptions returns the default inference options.
func NewInferOptions() InferOptions {
	return InferOptions{SampleLimit: DefaultSampleLimit}
}

// IsNull reports whether a raw field marks an absent value.
func (o InferOptions) IsNull(s string) bool {
	return s == "" || (o.NullSentinel != "" && s == o.NullSentinel)
}

// Inference is the outcome of sampling one column.
type Inference struct {
	Type     ColumnType
	Nullable bool
}

// classifyValue returns the narrowest type a single non-null value
// satisfies.
func classifyValue(s string) ColumnType {
	switch {
	case IsInteger(s):
		return ColumnTypeInteger
	case IsReal(s):
		return ColumnTypeReal
	default:
		return ColumnTypeText
	}
}

// InferColumns derives type and nullability for columnCount columns from a
// bounded prefix of records. The inferred type is the narrowest one every
// sampled non-null value satisfies; disagreement widens, never narrows.
// A column is nullable if any sampled value was absent, or if rows beyond
// the sample were left unobserved.
func InferColumns(columnCount int, records []Record, opts InferOptions) []Inference {
	inferences := make([]Inference, columnCount)
	if columnCount == 0 {
		return inferences
	}

	sampled := len(records)
	if opts.SampleLimit > 0 && sampled > opts.SampleLimit {
		sampled = opts.SampleLimit
	}
	unobserved := sampled < len(records)

	for i := range inferences {
		var (
			typ     ColumnType
			sawAny  bool
			sawNull bool
		)
		for _, record := range records[:sampled] {
			if i >= len(record) {
				sawNull = true
				continue
			}
			value := record[i]
			if opts.IsNull(value) {
				sawNull = true
				continue
			}
			if !sawAny {
				typ = classifyValue(value)
				sawAny = true
				continue
			}
			typ = typ.Widen(classifyValue(value))
		}

		if !sawAny {
			typ = ColumnTypeText
		}
		inferences[i] = Inference{
			Type:     typ,
			Nullable: sawNull || unobserved,
		}
	}
	return inferences
}
