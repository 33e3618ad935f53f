package csvq

import (
	"context"
	"database/sql"

	csvqdriver "github.com/csvq/csvq/driver"
)

const (
	// DriverName is the name the csvq driver registers with database/sql.
	DriverName = "csvq"
)

// Register registers the csvq driver with database/sql
func Register() {
	sql.Register(DriverName, csvqdriver.NewDriver())
}

func init() {
	// Auto-register the driver on import
	Register()
}

// Open opens a database connection whose tables are loaded from the given
// CSV files. Table names derive from file names: "users.csv" becomes
// table "users". The connection supports the full SQLite query surface;
// modifications apply only to the in-memory database, never to the input
// files.
func Open(paths ...string) (*sql.DB, error) {
	return OpenContext(context.Background(), paths...)
}

// OpenContext is Open with context support for the load phase.
func OpenContext(ctx context.Context, paths ...string) (*sql.DB, error) {
	builder := NewBuilder().AddPaths(paths...)

	validated, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	return validated.Open(ctx)
}
