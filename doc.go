// Package csvq runs arbitrary SQL queries against CSV files.
//
// Each input file becomes a relational table in an in-memory SQLite
// database: header text is normalized into safe lowercase identifiers,
// column types are inferred from a bounded sample of rows, and columns
// named "id" or ending in "_id" are indexed. Query results stream back
// out as CSV.
//
// The package exposes three layers:
//
//   - A database/sql driver ("csvq") whose DSN is a list of CSV paths.
//   - A builder API for configuring inputs (paths, fs.FS, io.Reader),
//     the field delimiter, the null sentinel, and the inference sample.
//   - Helpers for emitting query results as CSV, dumping all loaded
//     tables back to files, and persisting the database itself.
//
// Basic usage:
//
//	db, err := csvq.Open("users.csv", "orders.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query("SELECT u.name, count(*) FROM users u JOIN orders o ON o.user_id = u.id GROUP BY u.id")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rows.Close()
//
//	if err := csvq.Emit(os.Stdout, rows, csvq.NewEmitOptions()); err != nil {
//		log.Fatal(err)
//	}
//
// Compressed inputs (.csv.gz, .csv.bz2, .csv.xz, .csv.zst) are handled
// transparently; the content is still CSV. Tables live only for the
// lifetime of the connection unless exported with SaveDatabase or
// DumpDatabase.
package csvq
