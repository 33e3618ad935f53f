package driver

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"modernc.org/sqlite"

	"github.com/csvq/csvq/domain/model"
)

// Driver implements database/sql/driver.Driver for CSV-backed SQL.
// It serves as the entry point for creating connections whose tables are
// loaded from the files named in the DSN.
type Driver struct{}

// Connector implements database/sql/driver.Connector. It holds the DSN:
// file paths separated by semicolons plus an encoded LoadConfig.
type Connector struct {
	driver *Driver
	dsn    string
}

// Connection implements database/sql/driver.Conn. It wraps an underlying
// SQLite connection holding the loaded tables.
type Connection struct {
	conn driver.Conn
}

// Transaction implements database/sql/driver.Tx.
type Transaction struct {
	tx driver.Tx
}

// NewDriver creates a new csvq driver
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	return &Connector{
		driver: d,
		dsn:    dsn,
	}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// Connect implements driver.Connector. It validates every source, aborts
// on duplicate table names before anything is created, then loads each
// file into a fresh in-memory SQLite database.
func (c *Connector) Connect(_ context.Context) (driver.Conn, error) {
	paths, cfg, err := ParseDSN(c.dsn)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNoPathsProvided
	}

	if err := c.validatePaths(paths); err != nil {
		return nil, err
	}

	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	for _, path := range paths {
		if err := c.loadFile(conn, path, cfg); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return &Connection{conn: conn}, nil
}

// validatePaths checks that every source exists, is supported, and maps
// to a unique table name.
func (c *Connector) validatePaths(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return fmt.Errorf("path does not exist: %s", path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat path: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("path is a directory, expected a file: %s", path)
		}
		if !model.IsSupportedFile(path) {
			return fmt.Errorf("unsupported file type: %s", path)
		}

		name := model.TableNameFromPath(path)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: table %q from files %s and %s",
				ErrDuplicateTableName, name, prev, path)
		}
		seen[name] = path
	}
	return nil
}

// loadFile tokenizes one source and loads it as a table. An empty file
// yields zero columns and zero rows, which is not an error.
func (c *Connector) loadFile(conn driver.Conn, path string, cfg LoadConfig) error {
	file := model.NewFile(path)
	reader, closeReader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = closeReader()
	}()

	delimiter := cfg.delimiterRune()
	if file.IsTSV() {
		delimiter = '\t'
	}
	tokenizer := model.NewCSVReader(reader, delimiter)

	header, err := tokenizer.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return annotatePath(err, path)
	}

	var records []model.Record
	for {
		record, err := tokenizer.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return annotatePath(err, path)
		}
		if len(record) != len(header) {
			return &model.MalformedCSVError{
				Path:   path,
				Offset: tokenizer.Offset(),
				Reason: fmt.Sprintf("record has %d fields, header has %d", len(record), len(header)),
			}
		}
		records = append(records, record)
	}

	opts := model.InferOptions{
		SampleLimit:  cfg.SampleLimit,
		NullSentinel: cfg.NullSentinel,
	}
	table := model.NewTable(model.TableNameFromPath(path), model.Header(header), records, opts)
	return c.loadTableIntoDatabase(conn, table, path, opts)
}

// annotatePath fills the source path into tokenizer errors.
func annotatePath(err error, path string) error {
	var malformed *model.MalformedCSVError
	if errors.As(err, &malformed) && malformed.Path == "" {
		malformed.Path = path
	}
	return err
}

// loadTableIntoDatabase creates and fills the table inside a single
// transaction so a failed load leaves no partial table behind.
func (c *Connector) loadTableIntoDatabase(conn driver.Conn, table *model.Table, path string, opts model.InferOptions) error {
	if len(table.Columns()) == 0 {
		return nil
	}

	if err := execSimple(conn, "BEGIN"); err != nil {
		return fmt.Errorf("failed to begin load transaction: %w", err)
	}
	if err := c.fillTable(conn, table, path, opts); err != nil {
		_ = execSimple(conn, "ROLLBACK")
		return err
	}
	if err := execSimple(conn, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit load transaction: %w", err)
	}
	return nil
}

func (c *Connector) fillTable(conn driver.Conn, table *model.Table, path string, opts model.InferOptions) error {
	if err := execSimple(conn, buildCreateTableQuery(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name(), err)
	}
	if err := c.insertRecords(conn, table, path, opts); err != nil {
		return err
	}
	// Indexes are created after bulk insert, which is cheaper than
	// maintaining them during it.
	for _, query := range buildCreateIndexQueries(table) {
		if err := execSimple(conn, query); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", table.Name(), err)
		}
	}
	return nil
}

// buildCreateTableQuery constructs typed DDL for the table. NOT NULL is
// declared only when inference observed the whole file without an absent
// value.
func buildCreateTableQuery(table *model.Table) string {
	columns := make([]string, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		def := fmt.Sprintf("[%s] %s", col.Name, col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		columns = append(columns, def)
	}
	return fmt.Sprintf("CREATE TABLE [%s] (%s)", table.Name(), strings.Join(columns, ", "))
}

// buildCreateIndexQueries returns one CREATE INDEX statement per column
// the index advisor marked.
func buildCreateIndexQueries(table *model.Table) []string {
	var queries []string
	for _, col := range table.Columns() {
		if !col.Indexed {
			continue
		}
		queries = append(queries, fmt.Sprintf(
			"CREATE INDEX [idx_%s_%s] ON [%s]([%s])",
			table.Name(), col.Name, table.Name(), col.Name,
		))
	}
	return queries
}

// insertRecords bulk-inserts all rows through one prepared statement,
// coercing each raw field to its column's inferred type.
func (c *Connector) insertRecords(conn driver.Conn, table *model.Table, path string, opts model.InferOptions) error {
	if len(table.Records()) == 0 {
		return nil
	}

	stmt, err := conn.Prepare(buildInsertQuery(table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, record := range table.Records() {
		args, err := coerceRecord(record, table, path, i+1, opts)
		if err != nil {
			return err
		}
		if err := execStmt(stmt, args); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table.Name(), err)
		}
	}
	return nil
}

// buildInsertQuery constructs the prepared INSERT for the table.
func buildInsertQuery(table *model.Table) string {
	names := make([]string, 0, len(table.Columns()))
	placeholders := make([]string, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		names = append(names, "["+col.Name+"]")
		placeholders = append(placeholders, "?")
	}
	return fmt.Sprintf(
		"INSERT INTO [%s] (%s) VALUES (%s)",
		table.Name(),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
}

// coerceRecord converts one raw record into typed driver values. row is
// the 1-based data row number used in TypeMismatch reports.
func coerceRecord(record model.Record, table *model.Table, path string, row int, opts model.InferOptions) ([]driver.Value, error) {
	columns := table.Columns()
	args := make([]driver.Value, len(columns))
	for i, col := range columns {
		value := record[i]
		if opts.IsNull(value) {
			args[i] = nil
			continue
		}

		switch col.Type {
		case model.ColumnTypeInteger:
			if !model.IsInteger(value) {
				return nil, mismatch(path, table, col, row, value)
			}
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, mismatch(path, table, col, row, value)
			}
			args[i] = n
		case model.ColumnTypeReal:
			if !model.IsReal(value) && !model.IsInteger(value) {
				return nil, mismatch(path, table, col, row, value)
			}
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, mismatch(path, table, col, row, value)
			}
			args[i] = f
		default:
			args[i] = value
		}
	}
	return args, nil
}

func mismatch(path string, table *model.Table, col model.Column, row int, value string) error {
	return &model.TypeMismatchError{
		Path:   path,
		Table:  table.Name(),
		Column: col.Name,
		Row:    row,
		Value:  value,
		Type:   col.Type,
	}
}

// execSimple prepares and executes a statement that takes no arguments.
func execSimple(conn driver.Conn, query string) error {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return execStmt(stmt, nil)
}

// execStmt executes a prepared statement with the given arguments.
func execStmt(stmt driver.Stmt, args []driver.Value) error {
	execer, ok := stmt.(driver.StmtExecContext)
	if !ok {
		return ErrStmtExecContextNotSupported
	}
	_, err := execer.ExecContext(context.Background(), toNamedValues(args))
	return err
}

// toNamedValues converts driver.Value slice to driver.NamedValue slice
func toNamedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return named
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}

// QueryContext delegates to the underlying SQLite connection when it
// supports driver.QueryerContext, otherwise database/sql falls back to
// the prepared-statement path.
func (conn *Connection) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if queryer, ok := conn.conn.(driver.QueryerContext); ok {
		return queryer.QueryContext(ctx, query, args)
	}
	return nil, driver.ErrSkip
}

// ExecContext delegates to the underlying SQLite connection when it
// supports driver.ExecerContext.
func (conn *Connection) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if execer, ok := conn.conn.(driver.ExecerContext); ok {
		return execer.ExecContext(ctx, query, args)
	}
	return nil, driver.ErrSkip
}
