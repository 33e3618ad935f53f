// Package model provides the domain model for csvq.
package model

// Header is the first row of a CSV source, before normalization.
type Header []string

// Record is one data row of a CSV source as raw string fields.
type Record []string

// ColumnType represents the SQL column type. The ordering follows the
// widening precedence integer < real < text.
type ColumnType int

const (
	// ColumnTypeInteger represents INTEGER column type
	ColumnTypeInteger ColumnType = iota
	// ColumnTypeReal represents REAL column type
	ColumnTypeReal
	// ColumnTypeText represents TEXT column type
	ColumnTypeText
)

const (
	sqlTypeInteger = "INTEGER"
	sqlTypeReal    = "REAL"
	sqlTypeText    = "TEXT"
)

// String returns the SQL column type string.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return sqlTypeInteger
	case ColumnTypeReal:
		return sqlTypeReal
	case ColumnTypeText:
		return sqlTypeText
	default:
		return sqlTypeText
	}
}

// Widen returns the broader of two column types.
func (ct ColumnType) Widen(other ColumnType) ColumnType {
	if other > ct {
		return other
	}
	return ct
}

// Column is a column spec derived from a source's header row.
type Column struct {
	// Name is the normalized identifier used in DDL and queries.
	Name string
	// Original is the header text as it appeared in the file.
	Original string
	// Type is the inferred scalar type.
	Type ColumnType
	// Nullable reports whether the column may hold NULL values.
	Nullable bool
	// Indexed reports whether the index advisor requested an index.
	Indexed bool
}
