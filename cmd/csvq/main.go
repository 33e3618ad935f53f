// Command csvq runs SQL queries against CSV files, treating each file as
// a relational table backed by an in-memory SQLite database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/csvq/csvq"
)

const version = "0.1.0"

// CLI defines the command-line interface for csvq.
var CLI struct {
	Files []string `arg:"" optional:"" name:"file" help:"CSV files to load. \"-\" or no files reads standard input as table \"stdin\"."`

	Query     string           `short:"q" help:"SQL query to run against the loaded tables."`
	Delimiter string           `short:"d" default:"," help:"Input field delimiter (single character, \\t for tab)."`
	Null      string           `help:"Additional input string treated as NULL. Empty fields always are."`
	Sample    int              `default:"1000" help:"Rows sampled per column for type inference. 0 samples every row."`
	Output    string           `short:"o" type:"path" help:"Write query results to this file instead of standard output."`
	Save      string           `type:"path" help:"Write the loaded database to this SQLite file instead of running a query."`
	Dump      string           `type:"path" help:"Export all loaded tables as CSV files into this directory."`
	Version   kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("csvq"),
		kong.Description("Run SQL queries against CSV files."),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(run())
}

func run() error {
	delimiter, err := parseDelimiter(CLI.Delimiter)
	if err != nil {
		return err
	}

	builder := csvq.NewBuilder().
		WithDelimiter(delimiter).
		WithSampleLimit(CLI.Sample)
	if CLI.Null != "" {
		builder.WithNullSentinel(CLI.Null)
	}

	interactive := isTerminal(os.Stdin)
	stdinUsed := false
	for _, file := range CLI.Files {
		if file == "-" {
			if !stdinUsed {
				builder.AddReader("stdin", os.Stdin)
				stdinUsed = true
			}
			continue
		}
		builder.AddPath(file)
	}
	if len(CLI.Files) == 0 {
		if interactive {
			return errors.New("no input files (pass CSV paths, or pipe data on standard input)")
		}
		builder.AddReader("stdin", os.Stdin)
		stdinUsed = true
	}

	ctx := context.Background()
	session, err := csvq.NewSession(ctx, builder)
	if err != nil {
		return err
	}
	defer session.Close()

	switch {
	case CLI.Save != "":
		return csvq.SaveDatabase(session.DB(), CLI.Save)
	case CLI.Dump != "":
		return csvq.DumpDatabase(session.DB(), CLI.Dump)
	case CLI.Query != "":
		return runQuery(ctx, session, delimiter)
	case interactive && !stdinUsed:
		return csvq.RunREPL(session)
	default:
		return errors.New("no query given (use -q, --save, or --dump)")
	}
}

// runQuery executes the query and streams the result as CSV to stdout or
// the --output file. Output uses the same delimiter as input.
func runQuery(ctx context.Context, session *csvq.Session, delimiter rune) error {
	rows, err := session.Query(ctx, CLI.Query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out io.Writer = os.Stdout
	closeOut := func() error { return nil }
	if CLI.Output != "" {
		file, err := os.Create(CLI.Output)
		if err != nil {
			return err
		}
		out = file
		closeOut = file.Close
	}

	opts := csvq.NewEmitOptions()
	opts.Delimiter = delimiter
	return errors.Join(csvq.Emit(out, rows, opts), closeOut())
}

// parseDelimiter accepts a single character, or the two-character escape
// \t for a tab.
func parseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
