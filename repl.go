package csvq

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/olekukonko/tablewriter"
)

// RunREPL starts an interactive shell on the session, for the workflow
// where the user wants to poke at the loaded tables with several queries.
// Meta commands: \dt lists tables, \d <table> describes one, and
// quit/exit/\q leave.
func RunREPL(s *Session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "csvq> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".csvq_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println(`Welcome to csvq. Type \dt to list tables, quit to leave.`)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			fmt.Println("Error while reading line:", err)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case trimmed == "quit" || trimmed == "exit" || trimmed == `\q`:
			return nil
		case trimmed == `\dt`:
			if err := listRelations(s.db); err != nil {
				fmt.Println("Error:", err)
			}
			continue
		case trimmed == `\d` || strings.HasPrefix(trimmed, `\d `):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, `\d`))
			if err := describeTable(s.db, name); err != nil {
				fmt.Println("Error:", err)
			}
			continue
		}

		rows, err := s.Query(context.Background(), trimmed)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		if err := renderRows(rows); err != nil {
			fmt.Println("Error:", err)
		}
		_ = rows.Close()
	}
}

// renderRows prints a result set as an aligned table.
func renderRows(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		fmt.Println("ok")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return err
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = formatValue(v, "")
		}
		table.Append(record)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	table.Render()
	if count == 1 {
		fmt.Println("(1 result)")
	} else {
		fmt.Printf("(%d results)\n", count)
	}
	return nil
}

// listRelations prints the loaded tables.
func listRelations(db *sql.DB) error {
	tables, err := listTables(db)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		fmt.Println("Did not find any relations.")
		return nil
	}

	out := tablewriter.NewWriter(os.Stdout)
	out.SetHeader([]string{"Name", "Type"})
	out.SetAutoFormatHeaders(false)
	out.SetBorder(false)
	for _, name := range tables {
		out.Append([]string{name, "table"})
	}
	out.Render()
	return nil
}

// describeTable prints the schema of one table; with no name it falls
// back to listing all relations, psql-style.
func describeTable(db *sql.DB, name string) error {
	if name == "" {
		return listRelations(db)
	}

	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info([%s])", name))
	if err != nil {
		return err
	}
	defer rows.Close()

	out := tablewriter.NewWriter(os.Stdout)
	out.SetHeader([]string{"Column", "Type", "Nullable"})
	out.SetAutoFormatHeaders(false)
	out.SetBorder(false)

	found := false
	for rows.Next() {
		var (
			cid          int
			colName      string
			colType      string
			notNull      int
			defaultValue sql.NullString
			primaryKey   int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &defaultValue, &primaryKey); err != nil {
			return err
		}
		nullable := ""
		if notNull != 0 {
			nullable = "not null"
		}
		out.Append([]string{colName, strings.ToLower(colType), nullable})
		found = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if !found {
		fmt.Printf("Did not find any relation named %q.\n", name)
		return nil
	}

	fmt.Printf("Table %q\n", name)
	out.Render()
	return printIndexes(db, name)
}

// printIndexes lists the indexes on one table.
func printIndexes(db *sql.DB, name string) error {
	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type='index' AND tbl_name = ? ORDER BY name", name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var indexName string
		if err := rows.Scan(&indexName); err != nil {
			return err
		}
		indexes = append(indexes, indexName)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(indexes) > 0 {
		fmt.Println("Indexes:")
		for _, indexName := range indexes {
			fmt.Printf("\t%q\n", indexName)
		}
	}
	return nil
}
