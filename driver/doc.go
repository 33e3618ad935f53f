// Package driver provides the csvq driver implementation for database/sql.
//
// The driver treats every CSV file named in the DSN as a relational table.
// At connect time it opens an in-memory SQLite database, normalizes each
// file's header into unique identifiers, infers a typed schema from a
// bounded row sample, bulk-inserts the coerced rows, and creates indexes
// on key-like columns. The resulting connection supports the full SQLite
// query surface.
//
// Usage:
//
//	import _ "github.com/csvq/csvq/driver"
//	db, err := sql.Open("csvq", "data.csv")
package driver
