package driver

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvq/csvq/domain/model"
)

// writeFile puts content into a fresh temp directory and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// openDB opens a database over the given files without going through the
// public package, so driver behavior is tested in isolation.
func openDB(t *testing.T, cfg LoadConfig, paths ...string) *sql.DB {
	t.Helper()
	dsn, err := FormatDSN(paths, cfg)
	require.NoError(t, err)
	connector, err := NewDriver().OpenConnector(dsn)
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDriverLoadAndQuery(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "users.csv", "id,name,score\n1,Ada,9.5\n2,Grace,8.25\n3,Edsger,7.0\n")
	db := openDB(t, LoadConfig{}, path)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 3, count)

	var (
		id    int64
		name  string
		score float64
	)
	require.NoError(t, db.QueryRow(
		"SELECT id, name, score FROM users WHERE name = 'Grace'").Scan(&id, &name, &score))
	assert.Equal(t, int64(2), id)
	assert.Equal(t, "Grace", name)
	assert.Equal(t, 8.25, score)
}

func TestDriverHeaderNormalization(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "a.csv", "Name,User Id\nAda,1\nGrace,2\n")
	db := openDB(t, LoadConfig{}, path)

	rows, err := db.Query("SELECT name, user_id FROM a ORDER BY user_id")
	require.NoError(t, err)
	defer rows.Close()

	columns, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "user_id"}, columns)

	var got []string
	for rows.Next() {
		var (
			name   string
			userID int64
		)
		require.NoError(t, rows.Scan(&name, &userID))
		got = append(got, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Ada", "Grace"}, got)
}

func TestDriverIndexCreation(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "events.csv", "id,user_id,identifier\n1,10,a\n2,20,b\n")
	db := openDB(t, LoadConfig{}, path)

	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='events' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	require.NoError(t, rows.Err())

	// "identifier" merely contains "id"; it gets no index.
	assert.Equal(t, []string{"idx_events_id", "idx_events_user_id"}, indexes)
}

func TestDriverNotNullDDL(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "a,b\n1,x\n2,\n")
	db := openDB(t, LoadConfig{}, path)

	rows, err := db.Query("PRAGMA table_info([t])")
	require.NoError(t, err)
	defer rows.Close()

	notNull := map[string]int{}
	for rows.Next() {
		var (
			cid          int
			name         string
			colType      string
			nn           int
			defaultValue sql.NullString
			primaryKey   int
		)
		require.NoError(t, rows.Scan(&cid, &name, &colType, &nn, &defaultValue, &primaryKey))
		notNull[name] = nn
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, 1, notNull["a"], "fully observed column without nulls is NOT NULL")
	assert.Equal(t, 0, notNull["b"], "column with an empty field stays nullable")
}

func TestDriverNullHandling(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "n\n1\n\nNA\n4\n")
	db := openDB(t, LoadConfig{NullSentinel: "NA"}, path)

	var nulls int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t WHERE n IS NULL").Scan(&nulls))
	assert.Equal(t, 2, nulls)

	var sum int64
	require.NoError(t, db.QueryRow("SELECT SUM(n) FROM t").Scan(&sum))
	assert.Equal(t, int64(5), sum)
}

func TestDriverTSVUsesTabDelimiter(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "orders.tsv", "id\titem\n1\tapple\n2\tpear\n")
	db := openDB(t, LoadConfig{}, path)

	var item string
	require.NoError(t, db.QueryRow("SELECT item FROM orders WHERE id = 2").Scan(&item))
	assert.Equal(t, "pear", item)
}

func TestDriverCustomDelimiter(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "a;b\n1;hello, world\n")
	db := openDB(t, LoadConfig{Delimiter: ";"}, path)

	var b string
	require.NoError(t, db.QueryRow("SELECT b FROM t").Scan(&b))
	assert.Equal(t, "hello, world", b)
}

func TestDriverEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "empty.csv", "")
	db := openDB(t, LoadConfig{}, path)

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDriverHeaderOnlyFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "a,b\n")
	db := openDB(t, LoadConfig{}, path)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDriverDuplicateTableName(t *testing.T) {
	t.Parallel()

	first := writeFile(t, "users.csv", "id\n1\n")
	second := writeFile(t, "users.csv", "id\n2\n")
	db := openDB(t, LoadConfig{}, first, second)

	err := db.Ping()
	assert.ErrorIs(t, err, ErrDuplicateTableName)
}

func TestDriverTypeMismatchBeyondSample(t *testing.T) {
	t.Parallel()

	// The sample sees only "1", so the column is INTEGER; row 3 then
	// fails coercion and the whole load is rejected.
	path := writeFile(t, "t.csv", "n\n1\n2\nx\n")
	db := openDB(t, LoadConfig{SampleLimit: 1}, path)

	err := db.Ping()
	require.ErrorIs(t, err, model.ErrTypeMismatch)

	var mismatch *model.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, path, mismatch.Path)
	assert.Equal(t, "t", mismatch.Table)
	assert.Equal(t, "n", mismatch.Column)
	assert.Equal(t, 3, mismatch.Row)
	assert.Equal(t, "x", mismatch.Value)
}

func TestDriverBareDSNUsesDefaultSampleLimit(t *testing.T) {
	t.Parallel()

	// 1000 integer rows, then a text value. The default sample limit
	// types the column INTEGER from the first 1000 rows, so the last row
	// must fail the load. Sampling every row would widen to TEXT and
	// load cleanly instead.
	var content strings.Builder
	content.WriteString("n\n")
	for i := 1; i <= 1000; i++ {
		content.WriteString(strconv.Itoa(i))
		content.WriteByte('\n')
	}
	content.WriteString("x\n")
	path := writeFile(t, "t.csv", content.String())

	connector, err := NewDriver().OpenConnector(path)
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	err = db.Ping()
	require.ErrorIs(t, err, model.ErrTypeMismatch)

	var mismatch *model.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 1001, mismatch.Row)
}

func TestDriverMalformedCSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "a,b\n\"unterminated\n")
	db := openDB(t, LoadConfig{}, path)

	err := db.Ping()
	require.ErrorIs(t, err, model.ErrMalformedCSV)

	var malformed *model.MalformedCSVError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, path, malformed.Path)
}

func TestDriverRaggedRecord(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "a,b\n1,2\n3\n")
	db := openDB(t, LoadConfig{}, path)

	err := db.Ping()
	assert.ErrorIs(t, err, model.ErrMalformedCSV)
}

func TestDriverUnsupportedFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.txt", "a\n1\n")
	db := openDB(t, LoadConfig{}, path)

	assert.Error(t, db.Ping())
}

func TestDriverMissingFile(t *testing.T) {
	t.Parallel()

	db := openDB(t, LoadConfig{}, filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, db.Ping())
}

func TestDriverNoPaths(t *testing.T) {
	t.Parallel()

	dsn, err := FormatDSN(nil, LoadConfig{})
	require.NoError(t, err)
	connector, err := NewDriver().OpenConnector(dsn)
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	assert.ErrorIs(t, db.Ping(), ErrNoPathsProvided)
}

func TestDriverTransactions(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "n\n1\n2\n")
	db := openDB(t, LoadConfig{}, path)

	tx, err := db.Begin()
	require.NoError(t, err)
	_, err = tx.Exec("DELETE FROM t WHERE n = 1")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestDriverLoadsMultipleFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	users := filepath.Join(dir, "users.csv")
	orders := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(users, []byte("id,name\n1,Ada\n2,Grace\n"), 0600))
	require.NoError(t, os.WriteFile(orders, []byte("id,user_id,item\n1,2,keyboard\n"), 0600))

	db := openDB(t, LoadConfig{}, users, orders)

	var name string
	err := db.QueryRow(
		"SELECT u.name FROM users u JOIN orders o ON o.user_id = u.id").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "Grace", name)
}

func TestDriverOpenWithoutConnector(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "t.csv", "n\n1\n")
	dsn, err := FormatDSN([]string{path}, LoadConfig{})
	require.NoError(t, err)

	conn, err := NewDriver().Open(dsn)
	require.NoError(t, err)
	require.NoError(t, conn.Close())
}

func TestDriverErrors(t *testing.T) {
	t.Parallel()

	// Sentinel identities matter to callers matching with errors.Is.
	assert.False(t, errors.Is(ErrDuplicateTableName, ErrNoPathsProvided))
	assert.True(t, errors.Is(ErrDuplicateTableName, ErrDuplicateTableName))
}
