package model

import (
	"path/filepath"
	"strings"
)

// Table represents one CSV source mapped into the backend.
type Table struct {
	// name is the normalized table name derived from the file path.
	name string
	// columns are the ordered column specs.
	columns []Column
	// records are the raw data rows.
	records []Record
}

// NewTable builds a Table from a source's header and records: the header
// is normalized into unique identifiers, column types and nullability are
// inferred from a bounded sample, and the index advisor marks key-like
// columns.
func NewTable(name string, header Header, records []Record, opts InferOptions) *Table {
	names := NormalizeColumns(header)
	inferences := InferColumns(len(header), records, opts)

	columns := make([]Column, len(header))
	for i := range header {
		columns[i] = Column{
			Name:     names[i],
			Original: header[i],
			Type:     inferences[i].Type,
			Nullable: inferences[i].Nullable,
			Indexed:  ShouldIndex(names[i]),
		}
	}

	return &Table{
		name:    name,
		columns: columns,
		records: records,
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Columns returns the ordered column specs.
func (t *Table) Columns() []Column {
	return t.columns
}

// Records return table records.
func (t *Table) Records() []Record {
	return t.records
}

// ShouldIndex decides whether a normalized column name gets an index.
// The rule is fixed: a column named exactly "id", or ending in "_id".
func ShouldIndex(name string) bool {
	return name == "id" || strings.HasSuffix(name, "_id")
}

// TableNameFromPath derives the normalized table name from a file path.
// Compression extensions are stripped before the file type extension.
func TableNameFromPath(filePath string) string {
	fileName := filepath.Base(filePath)
	fileName = strings.TrimSuffix(fileName, CompressionFromPath(fileName).Extension())
	fileName = strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return NormalizeTableName(fileName)
}
