package csvq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/csvq/csvq/domain/model"
	csvqdriver "github.com/csvq/csvq/driver"
)

// DBBuilder configures input sources and load options before opening a
// database connection. Use NewBuilder to create one, chain configuration
// calls, then Build and Open:
//
//	builder := csvq.NewBuilder().AddPath("data.csv").WithDelimiter(';')
//	validated, err := builder.Build(ctx)
//	if err != nil {
//		return err
//	}
//	db, err := validated.Open(ctx)
//	defer db.Close()
//	defer validated.Cleanup() // remove temporary files
type DBBuilder struct {
	// paths contains regular file or directory paths
	paths []string
	// filesystems contains fs.FS instances, e.g. go:embed filesystems
	filesystems []fs.FS
	// readers contains stream inputs, e.g. standard input
	readers []readerInput
	// delimiter is the input field delimiter; zero means comma
	delimiter rune
	// nullSentinel is an extra string treated as NULL on input
	nullSentinel string
	// sampleLimit caps rows inspected during type inference; 0 = all rows
	sampleLimit int
	// collectedPaths contains all file paths after Build validation
	collectedPaths []string
	// tempDir holds copies of fs.FS and reader inputs for the driver
	tempDir string
}

// readerInput is a stream input bound to a table name.
type readerInput struct {
	tableName string
	reader    io.Reader
}

// NewBuilder creates a database builder with default load options.
func NewBuilder() *DBBuilder {
	return &DBBuilder{
		sampleLimit: model.DefaultSampleLimit,
	}
}

// AddPath adds a file or directory path. A directory is loaded
// recursively; every supported file within becomes a table.
// Returns the builder for method chaining.
func (b *DBBuilder) AddPath(path string) *DBBuilder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple file or directory paths.
// Returns the builder for method chaining.
func (b *DBBuilder) AddPaths(paths ...string) *DBBuilder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files from an fs.FS filesystem, which is
// useful for go:embed. Matching files are copied to temporary files
// during Build; call Cleanup when done.
// Returns the builder for method chaining.
func (b *DBBuilder) AddFS(filesystem fs.FS) *DBBuilder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// AddReader adds a stream input that will be loaded as tableName. This is
// how standard input becomes a table. The stream is drained into a
// temporary file during Build; call Cleanup when done.
// Returns the builder for method chaining.
func (b *DBBuilder) AddReader(tableName string, r io.Reader) *DBBuilder {
	b.readers = append(b.readers, readerInput{tableName: tableName, reader: r})
	return b
}

// WithDelimiter sets the input field delimiter. Files with a .tsv
// extension always use a tab regardless of this setting.
// Returns the builder for method chaining.
func (b *DBBuilder) WithDelimiter(delimiter rune) *DBBuilder {
	b.delimiter = delimiter
	return b
}

// WithNullSentinel sets an additional input string treated as NULL.
// Empty fields are always NULL.
// Returns the builder for method chaining.
func (b *DBBuilder) WithNullSentinel(sentinel string) *DBBuilder {
	b.nullSentinel = sentinel
	return b
}

// WithSampleLimit caps the rows inspected per column during type
// inference. 0 samples every row.
// Returns the builder for method chaining.
func (b *DBBuilder) WithSampleLimit(limit int) *DBBuilder {
	b.sampleLimit = limit
	return b
}

// Build validates all configured inputs and prepares the builder for
// Open: paths are checked for existence and supported extensions,
// directories are expanded, and fs.FS and reader inputs are copied to
// temporary files.
//
// Returns the same builder instance, or an error if validation fails.
func (b *DBBuilder) Build(_ context.Context) (*DBBuilder, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 && len(b.readers) == 0 {
		return nil, errors.New("at least one input must be provided")
	}

	b.collectedPaths = b.collectedPaths[:0]

	for _, path := range b.paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load file: path does not exist: %s", path)
			}
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			files, err := collectDirectoryFiles(path)
			if err != nil {
				return nil, err
			}
			b.collectedPaths = append(b.collectedPaths, files...)
			continue
		}

		if !model.IsSupportedFile(path) {
			return nil, fmt.Errorf("unsupported file type: %s", path)
		}
		b.collectedPaths = append(b.collectedPaths, path)
	}

	for _, filesystem := range b.filesystems {
		if filesystem == nil {
			return nil, errors.New("FS cannot be nil")
		}
		paths, err := b.processFSInput(filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		b.collectedPaths = append(b.collectedPaths, paths...)
	}

	for _, input := range b.readers {
		path, err := b.copyReaderToTemp(input)
		if err != nil {
			return nil, err
		}
		b.collectedPaths = append(b.collectedPaths, path)
	}

	if len(b.collectedPaths) == 0 {
		return nil, errors.New("no valid input files found")
	}

	return b, nil
}

// Open creates a database connection from the validated inputs. It can
// only be called after a successful Build. The caller is responsible for
// closing the connection and calling Cleanup.
func (b *DBBuilder) Open(ctx context.Context) (*sql.DB, error) {
	if len(b.collectedPaths) == 0 {
		return nil, errors.New("no valid input files found, did you call Build()?")
	}

	cfg := csvqdriver.LoadConfig{
		NullSentinel: b.nullSentinel,
		SampleLimit:  b.sampleLimit,
	}
	if b.delimiter != 0 {
		cfg.Delimiter = string(b.delimiter)
	}

	dsn, err := csvqdriver.FormatDSN(b.collectedPaths, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errors.Join(err, b.cleanup())
	}

	// Every pooled connection would load its own in-memory database, so
	// cap the pool at one connection. Otherwise an UPDATE and a later
	// SELECT could land on different copies of the data.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// The driver loads files lazily on first connection; Ping forces the
	// load so errors surface here rather than on the first query.
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(err, db.Close(), b.cleanup())
	}
	return db, nil
}

// collectDirectoryFiles gathers every supported file under dir.
func collectDirectoryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return files, nil
}

// processFSInput copies all supported files from an fs.FS into the
// builder's temporary directory.
func (b *DBBuilder) processFSInput(filesystem fs.FS) ([]string, error) {
	var matches []string
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && model.IsSupportedFile(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}
	if len(matches) == 0 {
		return nil, errors.New("no supported files found in filesystem")
	}

	paths := make([]string, 0, len(matches))
	for _, match := range matches {
		file, err := filesystem.Open(match)
		if err != nil {
			return nil, fmt.Errorf("failed to open FS file %s: %w", match, err)
		}
		tempPath, err := b.writeTemp(filepath.Base(match), file)
		closeErr := file.Close()
		if err != nil {
			return nil, errors.Join(err, closeErr)
		}
		if closeErr != nil {
			return nil, closeErr
		}
		paths = append(paths, tempPath)
	}
	return paths, nil
}

// copyReaderToTemp drains a stream input into <tableName>.csv inside the
// temporary directory so the driver can load it like any other file.
func (b *DBBuilder) copyReaderToTemp(input readerInput) (string, error) {
	if input.reader == nil {
		return "", errors.New("reader cannot be nil")
	}
	name := input.tableName
	if name == "" {
		name = "stdin"
	}
	return b.writeTemp(name+model.ExtCSV, input.reader)
}

// writeTemp writes one input into the builder's temporary directory,
// creating the directory on first use.
func (b *DBBuilder) writeTemp(name string, r io.Reader) (string, error) {
	if b.tempDir == "" {
		dir, err := os.MkdirTemp("", "csvq-*")
		if err != nil {
			return "", fmt.Errorf("failed to create temp directory: %w", err)
		}
		b.tempDir = dir
	}

	path := filepath.Join(b.tempDir, name)
	file, err := os.Create(path) //nolint:gosec // path lives in our own temp directory
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		return "", errors.Join(fmt.Errorf("failed to copy content: %w", err), file.Close())
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return path, nil
}

// cleanup removes the temporary directory and everything in it.
func (b *DBBuilder) cleanup() error {
	if b.tempDir == "" {
		return nil
	}
	dir := b.tempDir
	b.tempDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove temp directory %s: %w", dir, err)
	}
	return nil
}

// Cleanup removes temporary files created for fs.FS and reader inputs.
// It is safe to call multiple times.
func (b *DBBuilder) Cleanup() error {
	return b.cleanup()
}
