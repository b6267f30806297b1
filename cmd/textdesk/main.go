// Package main is the entry point for the textdesk command.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env carries the process streams and global flags into commands.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
}

type command struct {
	summary string
	run     func(e *env, args []string) error
}

var commands = map[string]command{
	"stats":     {"print text statistics", cmdStats},
	"freq":      {"print word frequencies", cmdFreq},
	"highlight": {"mark search terms in the text", cmdHighlight},
	"replace":   {"find and replace", cmdReplace},
	"transform": {"apply a named transformation", cmdTransform},
	"export":    {"export text and frequencies as txt, csv or json", cmdExport},
	"serve":     {"run the session with autosave and the dictation endpoint", cmdServe},
	"repl":      {"edit the saved session interactively", cmdRepl},
}

// errUsage marks errors that are answered by printing usage.
var errUsage = errors.New("usage")

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("textdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var showVersion bool
	fs.StringVar(&e.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&e.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&e.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if showVersion {
		fmt.Fprintf(stdout, "textdesk %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	// Validate log level
	switch e.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", e.logLevel)
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", rest[0])
		fs.Usage()
		return 2
	}

	if err := cmd.run(e, rest[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "textdesk - text analysis and editing session\n\n")
	fmt.Fprintf(w, "Usage: textdesk [options] <command> [command options]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  textdesk stats < essay.txt           Count words and sentences\n")
	fmt.Fprintf(w, "  textdesk freq -top 10 -in essay.txt  Ten most frequent words\n")
	fmt.Fprintf(w, "  textdesk replace -find colou?r -with hue < essay.txt\n")
	fmt.Fprintf(w, "  textdesk -c textdesk.toml serve      Autosave and accept dictation\n")
}

// readInput returns the contents of path, or stdin when path is empty or "-".
func (e *env) readInput(path string) (string, error) {
	var r io.Reader = e.stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
