package csvq

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DumpDatabase exports every loaded table to outputDir, one file per
// table, named after the table. By default tables are written as plain
// CSV; DumpOptions select TSV output or compression.
//
// This is the complement of loading: modifications made through UPDATE,
// DELETE or INSERT live only in the in-memory database, so exporting is
// the way to keep them.
func DumpDatabase(db *sql.DB, outputDir string, opts ...DumpOptions) error {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tables, err := listTables(db)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if len(tables) == 0 {
		return errors.New("csvq: no tables found in database")
	}

	for _, name := range tables {
		if err := dumpTable(db, name, outputDir, options); err != nil {
			return fmt.Errorf("failed to export table %s: %w", name, err)
		}
	}
	return nil
}

// listTables returns every user table name in deterministic order.
func listTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// dumpTable streams one table through the emitter into its output file.
func dumpTable(db *sql.DB, name, outputDir string, options DumpOptions) error {
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM [%s]", name))
	if err != nil {
		return err
	}
	defer rows.Close()

	outputPath := filepath.Join(outputDir, name+options.FileExtension())
	file, err := os.Create(outputPath) //nolint:gosec // path is derived from table names we created
	if err != nil {
		return err
	}

	writer, closeWriter, err := options.Compression.format().NewWriter(file)
	if err != nil {
		return errors.Join(err, file.Close())
	}

	emitErr := Emit(writer, rows, EmitOptions{Delimiter: options.Format.delimiter()})
	return errors.Join(emitErr, closeWriter(), file.Close())
}

// SaveDatabase persists the loaded database into a single SQLite file.
// The snapshot can be queried later with any SQLite client, which covers
// the multi-query workflow without keeping this process alive. An
// existing file at path is replaced.
func SaveDatabase(db *sql.DB, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	if _, err := db.Exec("VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("failed to save database to %s: %w", path, err)
	}
	return nil
}
