package csvq

import (
	"context"
	"database/sql"
	"errors"
)

// Session owns the backend connection for the duration of one invocation.
// It ties together the validated builder (for temp-file cleanup) and the
// database handle, so a single Close releases everything on every exit
// path.
type Session struct {
	db      *sql.DB
	builder *DBBuilder
}

// NewSession builds the configured inputs and opens the backend.
func NewSession(ctx context.Context, builder *DBBuilder) (*Session, error) {
	validated, err := builder.Build(ctx)
	if err != nil {
		return nil, err
	}
	db, err := validated.Open(ctx)
	if err != nil {
		// Open already cleaned up its temporary files.
		return nil, err
	}
	return &Session{db: db, builder: validated}, nil
}

// DB exposes the underlying connection for callers that need raw access.
func (s *Session) DB() *sql.DB {
	return s.db
}

// Query executes arbitrary SQL against the loaded tables. Joins,
// subqueries and CTEs are all delegated to the backend; no validation
// happens here. The returned rows stream, so emission can begin before
// the full result set exists. Backend rejections come back as
// *QueryFailedError with the engine's message intact.
func (s *Session) Query(ctx context.Context, query string) (*sql.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryFailedError{Query: query, Err: err}
	}
	return rows, nil
}

// Close releases the backend connection and any temporary files.
func (s *Session) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.builder != nil {
		errs = append(errs, s.builder.Cleanup())
	}
	return errors.Join(errs...)
}
