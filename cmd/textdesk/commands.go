package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/tidwall/pretty"

	"github.com/dshills/textdesk/internal/app"
	"github.com/dshills/textdesk/internal/engine"
	"github.com/dshills/textdesk/internal/engine/match"
	"github.com/dshills/textdesk/internal/export"
)

func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// oneShot opens an ephemeral application whose session holds the input.
func (e *env) oneShot(input string) (*app.Application, error) {
	a, err := app.New(app.Options{
		ConfigPath: e.configPath,
		LogLevel:   e.logLevel,
		LogOutput:  e.stderr,
		Ephemeral:  true,
	})
	if err != nil {
		return nil, err
	}
	a.Engine().Load(input)
	return a, nil
}

func cmdStats(e *env, args []string) error {
	fs := e.flagSet("stats")
	in := fs.String("in", "", "Input file (default stdin)")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	return printStats(e.stdout, a.Engine().Statistics(), *asJSON)
}

func printStats(w io.Writer, s engine.Statistics, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = w.Write(pretty.Pretty(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "characters\t%d\n", s.Characters)
	fmt.Fprintf(tw, "graphemes\t%d\n", s.Graphemes)
	fmt.Fprintf(tw, "words\t%d\n", s.Words)
	fmt.Fprintf(tw, "sentences\t%d\n", s.Sentences)
	fmt.Fprintf(tw, "paragraphs\t%d\n", s.Paragraphs)
	fmt.Fprintf(tw, "unique words\t%d\n", s.UniqueWords)
	fmt.Fprintf(tw, "avg word length\t%d\n", s.AvgWordLength)
	fmt.Fprintf(tw, "avg sentence length\t%d\n", s.AvgSentenceLength)
	return tw.Flush()
}

func cmdFreq(e *env, args []string) error {
	fs := e.flagSet("freq")
	in := fs.String("in", "", "Input file (default stdin)")
	top := fs.Int("top", 0, "Only the n most frequent words, ties in first-seen order")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	ft := a.Engine().Frequencies()
	entries := ft.Entries()
	if *top > 0 {
		entries = ft.Top(*top)
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	for _, en := range entries {
		fmt.Fprintf(tw, "%s\t%d\n", en.Word, en.Count)
	}
	return tw.Flush()
}

func cmdHighlight(e *env, args []string) error {
	fs := e.flagSet("highlight")
	in := fs.String("in", "", "Input file (default stdin)")
	terms := fs.String("terms", "", "Comma-separated search terms (regular expressions)")
	colors := fs.String("colors", "", "Comma-separated colors, paired with terms by position")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	eng := a.Engine()
	if err := eng.SetHighlight(match.ParseSpec(*terms, *colors)); err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, renderSegments(eng.HighlightedSegments())+"\n")
	return err
}

// renderSegments marks highlighted runs as [text](color).
func renderSegments(h engine.Highlight) string {
	var b strings.Builder
	for _, seg := range h.Segments {
		if seg.Highlighted() {
			fmt.Fprintf(&b, "[%s](%s)", seg.Text, seg.Color)
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func cmdReplace(e *env, args []string) error {
	fs := e.flagSet("replace")
	in := fs.String("in", "", "Input file (default stdin)")
	find := fs.String("find", "", "Pattern to find (case-insensitive regular expression)")
	with := fs.String("with", "", "Replacement; $1 expands a group, $& the match, $$ a dollar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *find == "" {
		fmt.Fprintln(e.stderr, "replace: -find is required")
		return errUsage
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Engine().FindAndReplace(*find, *with); err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, a.Engine().Text()+"\n")
	return err
}

func cmdTransform(e *env, args []string) error {
	fs := e.flagSet("transform")
	in := fs.String("in", "", "Input file (default stdin)")
	op := fs.String("op", "", "Transformation name")
	list := fs.Bool("list", false, "List available transformations")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *list {
		a, err := e.oneShot("")
		if err != nil {
			return err
		}
		defer a.Close()
		for _, name := range a.Transforms().Names() {
			fmt.Fprintln(e.stdout, name)
		}
		return nil
	}
	if *op == "" {
		fmt.Fprintln(e.stderr, "transform: -op is required")
		return errUsage
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Engine().Transform(*op); err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, a.Engine().Text()+"\n")
	return err
}

func cmdExport(e *env, args []string) error {
	fs := e.flagSet("export")
	in := fs.String("in", "", "Input file (default stdin)")
	format := fs.String("format", "", "txt, csv or json (default from -o extension, else txt)")
	out := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	name := *format
	if name == "" {
		name = string(export.FormatText)
		if i := strings.LastIndexByte(*out, '.'); i >= 0 {
			name = (*out)[i:]
		}
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	text, err := e.readInput(*in)
	if err != nil {
		return err
	}
	a, err := e.oneShot(text)
	if err != nil {
		return err
	}
	defer a.Close()

	w := e.stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	eng := a.Engine()
	return export.Write(w, f, eng.Text(), eng.Frequencies())
}

func cmdServe(e *env, args []string) error {
	fs := e.flagSet("serve")
	noDictation := fs.Bool("no-dictation", false, "Do not start the dictation endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := app.New(app.Options{
		ConfigPath:       e.configPath,
		LogLevel:         e.logLevel,
		LogOutput:        e.stderr,
		DisableDictation: *noDictation,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
