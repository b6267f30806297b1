package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/textdesk/internal/engine/stats"
)

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, "a b\nc"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a b\nc" {
		t.Errorf("WriteText() = %q", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, stats.Frequencies("The cat. the CAT, dog")); err != nil {
		t.Fatal(err)
	}
	want := "word,count\nthe,2\ncat,2\ndog,1\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, stats.Frequencies("")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "word,count\n" {
		t.Errorf("WriteCSV() = %q, want header only", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	text := "Zebra 2024 apple zebra"
	var buf bytes.Buffer
	if err := WriteJSON(&buf, text, stats.Frequencies(text)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !gjson.Valid(out) {
		t.Fatalf("WriteJSON() produced invalid JSON:\n%s", out)
	}
	if got := gjson.Get(out, "text").String(); got != text {
		t.Errorf("text = %q, want %q", got, text)
	}
	freq := gjson.Get(out, "frequencies")
	if !freq.IsObject() {
		t.Fatalf("frequencies = %s, want object", freq.Raw)
	}

	var keys []string
	freq.ForEach(func(k, v gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	if strings.Join(keys, ",") != "zebra,2024,apple" {
		t.Errorf("keys = %v, want first-seen order", keys)
	}
	if n := freq.Get("zebra").Int(); n != 2 {
		t.Errorf("zebra = %d, want 2", n)
	}
	if !strings.Contains(out, "\n  \"text\":") {
		t.Errorf("output not indented two spaces:\n%s", out)
	}
}

func TestMarshalJSONCompact(t *testing.T) {
	doc, err := MarshalJSON("a A", stats.Frequencies("a A"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(doc), `{"text":"a A","frequencies":{"a":2}}`; got != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestMarshalJSONKeys(t *testing.T) {
	words := []string{"don't", "co-op", "`tick`", "123", "0", "-", "Café"}
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(&sb, "w%d ", i)
	}
	text := strings.Join(words, " ") + " " + sb.String() + "co-op"

	table := stats.Frequencies(text)
	doc, err := MarshalJSON(text, table)
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.ValidBytes(doc) {
		t.Fatalf("MarshalJSON() produced invalid JSON")
	}

	got := map[string]int64{}
	var order []string
	gjson.GetBytes(doc, "frequencies").ForEach(func(k, v gjson.Result) bool {
		got[k.String()] = v.Int()
		order = append(order, k.String())
		return true
	})
	if len(got) != table.Len() {
		t.Fatalf("len(frequencies) = %d, want %d", len(got), table.Len())
	}
	for i, e := range table.Entries() {
		if order[i] != e.Word || got[e.Word] != int64(e.Count) {
			t.Fatalf("entry %d = %q:%d, want %q:%d", i, order[i], got[order[i]], e.Word, e.Count)
		}
	}
	if got["co-op"] != 2 {
		t.Errorf("co-op = %d, want 2", got["co-op"])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"txt", FormatText},
		{"text", FormatText},
		{".CSV", FormatCSV},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(pdf) err = %v, want ErrUnknownFormat", err)
	}
}

func TestWriteDispatch(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, "x", stats.Frequencies("x")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "word,count\nx,1\n" {
		t.Errorf("Write(csv) = %q", buf.String())
	}
	if err := Write(&buf, Format("docx"), "", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(docx) err = %v, want ErrUnknownFormat", err)
	}
}
