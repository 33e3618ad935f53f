package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when the DSN names no input files
	ErrNoPathsProvided = errors.New("csvq driver: no paths provided")

	// ErrDuplicateTableName is returned when two sources normalize to the
	// same table name. The check runs before any table is created.
	ErrDuplicateTableName = errors.New("csvq driver: duplicate table name")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("csvq driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("csvq driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("csvq driver: underlying connection does not support PrepareContext")
)
