// Package export writes the session text and its word frequencies in
// plain-text, CSV and JSON form.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/textdesk/internal/engine/stats"
)

// Format names an export format.
type Format string

// Supported formats.
const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write exports in the given format.
func Write(w io.Writer, f Format, text string, table *stats.FrequencyTable) error {
	switch f {
	case FormatText:
		return WriteText(w, text)
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatJSON:
		return WriteJSON(w, text, table)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteText writes the raw text.
func WriteText(w io.Writer, text string) error {
	_, err := io.WriteString(w, text)
	return err
}

// WriteCSV writes a word,count header and one row per distinct word in
// first-seen order.
func WriteCSV(w io.Writer, table *stats.FrequencyTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"word", "count"}); err != nil {
		return err
	}
	for _, e := range table.Entries() {
		if err := cw.Write([]string{e.Word, strconv.Itoa(e.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var jsonStyle = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// WriteJSON writes {"text": ..., "frequencies": {word: count}} indented two
// spaces. Frequency keys keep first-seen order.
func WriteJSON(w io.Writer, text string, table *stats.FrequencyTable) error {
	doc, err := MarshalJSON(text, table)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.PrettyOptions(doc, jsonStyle))
	return err
}

// MarshalJSON builds the compact JSON document written by WriteJSON.
func MarshalJSON(text string, table *stats.FrequencyTable) ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{}`), "text", text)
	if err != nil {
		return nil, err
	}
	freq, err := frequencyObject(table)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(doc, "frequencies", freq)
}

// frequencyObject encodes table as one JSON object in first-seen order.
func frequencyObject(table *stats.FrequencyTable) ([]byte, error) {
	entries := table.Entries()
	out := make([]byte, 0, 2+len(entries)*16)
	out = append(out, '{')
	for i, e := range entries {
		key, err := json.Marshal(e.Word)
		if err != nil {
			return nil, fmt.Errorf("frequency %q: %w", e.Word, err)
		}
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, key...)
		out = append(out, ':')
		out = strconv.AppendInt(out, int64(e.Count), 10)
	}
	return append(out, '}'), nil
}
