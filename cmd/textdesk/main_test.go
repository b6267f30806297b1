package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestStats(t *testing.T) {
	code, out, errOut := runCmd(t, "Hello world. Bye!\n", "stats")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"words", "3", "sentences", "2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsJSON(t *testing.T) {
	code, out, errOut := runCmd(t, "one two", "stats", "-json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, `"words": 2`) {
		t.Errorf("output = %s", out)
	}
}

func TestFreqTop(t *testing.T) {
	code, out, _ := runCmd(t, "b a a c b a", "freq", "-top", "2")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "a") || !strings.HasPrefix(lines[1], "b") {
		t.Errorf("freq -top 2 = %q", lines)
	}
}

func TestHighlight(t *testing.T) {
	code, out, _ := runCmd(t, "Cats and dogs", "highlight", "-terms", "cat,dog", "-colors", "red")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if want := "[Cat](red)s and [dog](yellow)s\n"; out != want {
		t.Errorf("highlight = %q, want %q", out, want)
	}
}

func TestHighlightBadPattern(t *testing.T) {
	code, _, errOut := runCmd(t, "x", "highlight", "-terms", "(")
	if code != 1 || !strings.Contains(errOut, "invalid pattern") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestReplace(t *testing.T) {
	code, out, _ := runCmd(t, "Color and COLOUR", "replace", "-find", "colou?r", "-with", "hue")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if out != "hue and hue\n" {
		t.Errorf("replace = %q", out)
	}

	if code, _, _ := runCmd(t, "x", "replace"); code != 2 {
		t.Errorf("replace without -find exit %d, want 2", code)
	}
}

func TestTransform(t *testing.T) {
	code, out, _ := runCmd(t, "hello there. general kenobi", "transform", "-op", "sentence")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if out != "Hello there. General kenobi\n" {
		t.Errorf("transform = %q", out)
	}

	code, _, errOut := runCmd(t, "x", "transform", "-op", "shuffle")
	if code != 1 || !strings.Contains(errOut, "shuffle") {
		t.Errorf("unknown transform: exit %d, stderr %q", code, errOut)
	}

	_, out, _ = runCmd(t, "", "transform", "-list")
	if !strings.Contains(out, "upper") || !strings.Contains(out, "sort") {
		t.Errorf("transform -list = %q", out)
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "freq.csv")
	code, _, errOut := runCmd(t, "The cat the", "export", "-o", dest)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "word,count\nthe,2\ncat,1\n" {
		t.Errorf("csv = %q", data)
	}

	code, out, _ := runCmd(t, "a", "export", "-format", "json")
	if code != 0 || !strings.Contains(out, `"frequencies"`) {
		t.Errorf("json export exit %d: %s", code, out)
	}

	if code, _, _ := runCmd(t, "a", "export", "-format", "pdf"); code != 1 {
		t.Errorf("pdf export exit %d, want 1", code)
	}
}

func TestUsageErrors(t *testing.T) {
	if code, _, _ := runCmd(t, ""); code != 2 {
		t.Errorf("no command exit %d, want 2", code)
	}
	if code, _, errOut := runCmd(t, "", "dance"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Errorf("unknown command exit %d: %s", code, errOut)
	}
	if code, _, _ := runCmd(t, "", "-log-level", "loud", "stats"); code != 2 {
		t.Errorf("bad log level exit %d, want 2", code)
	}
}

func TestVersion(t *testing.T) {
	code, out, _ := runCmd(t, "", "-version")
	if code != 0 || !strings.HasPrefix(out, "textdesk ") {
		t.Errorf("version exit %d: %q", code, out)
	}
}

func TestRepl(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "textdesk.toml")
	save := filepath.Join(dir, "autosave.json")
	content := "[store]\npath = \"" + filepath.ToSlash(save) + "\"\n[autosave]\ndebounce = \"0s\"\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	script := strings.Join([]string{
		"set the cat sat",
		"dictate on the mat",
		"undo",
		"search cat",
		"show",
		"replace sat => slept",
		"transform upper",
		"show",
		"undo",
		"undo",
		"undo",
		"undo",
		"bogus",
		"quit",
	}, "\n")

	code, out, errOut := runCmd(t, script, "-c", cfg, "-log-level", "error", "repl")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{
		"the [cat](yellow) sat",
		"THE [CAT](yellow) SLEPT",
		"note: nothing to undo",
		`unknown command "bogus"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("repl output missing %q:\n%s", want, out)
		}
	}

	data, err := os.ReadFile(save)
	if err != nil {
		t.Fatalf("session not saved: %v", err)
	}
	if !strings.Contains(string(data), `"text":""`) {
		t.Errorf("saved = %s, want the fully undone text", data)
	}
}
