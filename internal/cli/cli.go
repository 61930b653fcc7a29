// Package cli implements the fluentmap command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ExitError is an error carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Config holds the parsed command line.
type Config struct {
	// ProjectPath is a fluentmap.yaml file or the directory holding one.
	ProjectPath string
	// OutDir overrides the mapping output directory of the project.
	OutDir string
	// Merge writes a single mapping file instead of one per class.
	Merge bool
	// DDL, GraphQL and Scaffold override the matching project outputs.
	DDL      string
	GraphQL  string
	Scaffold string
	// Apply creates the tables in the configured database.
	Apply bool
	// Dump prints the compiled document.
	Dump bool
	// Watch recompiles whenever the project file changes.
	Watch bool
	// Trace logs the compiler spans at debug level.
	Trace bool

	LogFormat string
	LogLevel  string
}

// Level returns the slog level of c.LogLevel.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Parse processes command-line arguments. It returns the config, whether
// the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("fluentmap", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
fluentmap - compiles fluent mapping projects into hbm.xml mappings.

Usage:
  fluentmap [options] [PROJECT]

Arguments:
  PROJECT
    Path to a fluentmap.yaml file or a directory containing one.

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", "", "Path to the project file or directory.")
	pFlag := flagSet.String("p", "", "Path to the project file or directory (shorthand).")
	outFlag := flagSet.String("out", "", "Directory for the hbm.xml files. Overrides output.dir.")
	mergeFlag := flagSet.Bool("merge", false, "Write all mappings into a single file.")
	ddlFlag := flagSet.String("ddl", "", "File for the generated DDL. Overrides output.ddl.")
	graphqlFlag := flagSet.String("graphql", "", "File for the GraphQL schema. Overrides output.graphql.")
	scaffoldFlag := flagSet.String("scaffold", "", "File for the generated Go mappings. Overrides output.scaffold.")
	applyFlag := flagSet.Bool("apply", false, "Create the tables in the configured database.")
	dumpFlag := flagSet.Bool("dump", false, "Print the compiled document.")
	watchFlag := flagSet.Bool("watch", false, "Recompile when the project file changes.")
	traceFlag := flagSet.Bool("trace", false, "Log compiler pass timings.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	switch {
	case *projectFlag != "":
		path = *projectFlag
	case *pFlag != "":
		path = *pFlag
	case flagSet.NArg() > 0:
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "too many arguments: expected a single project path"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	if *watchFlag && *applyFlag {
		return nil, false, &ExitError{Code: 2, Message: "-apply cannot be combined with -watch"}
	}

	return &Config{
		ProjectPath: path,
		OutDir:      *outFlag,
		Merge:       *mergeFlag,
		DDL:         *ddlFlag,
		GraphQL:     *graphqlFlag,
		Scaffold:    *scaffoldFlag,
		Apply:       *applyFlag,
		Dump:        *dumpFlag,
		Watch:       *watchFlag,
		Trace:       *traceFlag,
		LogFormat:   logFormat,
		LogLevel:    logLevel,
	}, false, nil
}
