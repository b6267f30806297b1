package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/textdesk/internal/app"
	"github.com/dshills/textdesk/internal/engine"
	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/export"
)

const replHelp = `commands:
  show                      print the text
  set <text>                replace the whole text
  type <text>               append typed text
  dictate <text>            append a dictation chunk
  undo | redo               step through history
  search <term>             highlight term in the default color
  highlight <terms> [colors] comma-separated terms and colors
  clear                     remove highlights
  replace <find> => <with>  replace every match
  transform <name>          apply a transformation
  transforms                list transformations
  stats                     print statistics
  freq [n]                  print word frequencies
  export <txt|csv|json>     print an export
  reset                     clear text, history and highlights
  help | quit`

func cmdRepl(e *env, args []string) error {
	fs := e.flagSet("repl")
	dictation := fs.Bool("dictation", false, "Also accept dictation over websocket")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := app.New(app.Options{
		ConfigPath:       e.configPath,
		LogLevel:         e.logLevel,
		LogOutput:        e.stderr,
		DisableDictation: !*dictation,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	replErr := repl(a, e.stdin, e.stdout)
	a.Shutdown()
	if err := <-done; err != nil {
		return err
	}
	return replErr
}

// repl reads one command per line until quit or end of input.
func repl(a *app.Application, in io.Reader, out io.Writer) error {
	eng := a.Engine()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[rev %d]> ", eng.Revision())
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := replCommand(a, cmd, strings.TrimSpace(arg), out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func replCommand(a *app.Application, cmd, arg string, out io.Writer) error {
	eng := a.Engine()
	switch cmd {
	case "help":
		fmt.Fprintln(out, replHelp)
	case "show":
		fmt.Fprintln(out, renderSegments(eng.HighlightedSegments()))
	case "set":
		eng.SetText(arg)
	case "type":
		eng.SetText(eng.Text() + arg)
	case "dictate":
		eng.AppendDictation(arg)
	case "undo":
		return noOp(out, eng.Undo())
	case "redo":
		return noOp(out, eng.Redo())
	case "search":
		return eng.Search(arg)
	case "highlight":
		terms, colors, _ := strings.Cut(arg, " ")
		return eng.SetHighlight(match.ParseSpec(terms, colors))
	case "clear":
		return eng.SetHighlight(nil)
	case "replace":
		find, with, ok := strings.Cut(arg, "=>")
		if !ok {
			return errors.New("usage: replace <find> => <with>")
		}
		return eng.FindAndReplace(strings.TrimSpace(find), strings.TrimSpace(with))
	case "transform":
		return eng.Transform(arg)
	case "transforms":
		fmt.Fprintln(out, strings.Join(a.Transforms().Names(), " "))
	case "stats":
		return printStats(out, eng.Statistics(), false)
	case "freq":
		n := 0
		if arg != "" {
			var err error
			if n, err = strconv.Atoi(arg); err != nil {
				return fmt.Errorf("freq: %w", err)
			}
		}
		for _, en := range eng.Frequencies().Top(n) {
			fmt.Fprintf(out, "%s %d\n", en.Word, en.Count)
		}
	case "export":
		f, err := export.ParseFormat(arg)
		if err != nil {
			return err
		}
		if err := export.Write(out, f, eng.Text(), eng.Frequencies()); err != nil {
			return err
		}
		fmt.Fprintln(out)
	case "reset":
		eng.Reset()
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

// noOp reports an empty undo or redo stack as a note, not an error.
func noOp(out io.Writer, err error) error {
	if engine.IsNoOp(err) {
		fmt.Fprintf(out, "note: %v\n", err)
		return nil
	}
	return err
}
