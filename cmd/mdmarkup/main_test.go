package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun_MarkupFromStdin(t *testing.T) {
	out, _, code := runCLI(t, "_**foo**_")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "<em><b>foo</b></em>\n" {
		t.Errorf("expected %q, got %q", "<em><b>foo</b></em>\n", out)
	}
}

func TestRun_Events(t *testing.T) {
	out, _, code := runCLI(t, "# h\n[x](u)", "--mode", "events")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	want := strings.Join([]string{
		"<BEGIN heading depth=1>",
		`"h"`,
		"<END heading>",
		`"\n"`,
		"<BEGIN paragraph>",
		`<BEGIN link href="u">`,
		`"x"`,
		"<END link>",
		"<END paragraph>",
		"",
	}, "\n")
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRun_PlainWrapped(t *testing.T) {
	out, _, code := runCLI(t, "**one** two three", "--mode", "plain", "--width", "9")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "one two\nthree\n" {
		t.Errorf("expected %q, got %q", "one two\nthree\n", out)
	}
}

func TestRun_Links(t *testing.T) {
	out, _, _ := runCLI(t, "[a](https://a.io) and [b](https://b.io)", "-m", "links")
	if out != "https://a.io\nhttps://b.io\n" {
		t.Errorf("expected two links, got %q", out)
	}
}

func TestRun_UnrecognizedDiagnostic(t *testing.T) {
	out, errOut, _ := runCLI(t, "> bar")
	if out != "> bar\n" {
		t.Errorf("expected raw fallback, got %q", out)
	}
	if !strings.Contains(errOut, "unrecognized token type") {
		t.Errorf("expected diagnostic on stderr, got %q", errOut)
	}

	_, errOut, _ = runCLI(t, "> bar", "--quiet")
	if errOut != "" {
		t.Errorf("expected no diagnostic with --quiet, got %q", errOut)
	}
}

func TestRun_HeadingBreakAlways(t *testing.T) {
	out, _, _ := runCLI(t, "## h", "--heading-break", "always")
	if out != "<span font='bold 18px'>h</span><br/>\n" {
		t.Errorf("expected trailing break, got %q", out)
	}
}

func TestRun_BadFlags(t *testing.T) {
	if _, _, code := runCLI(t, "", "--mode", "xml"); code != 2 {
		t.Errorf("expected exit 2 for unknown mode, got %d", code)
	}
	if _, _, code := runCLI(t, "", "--heading-break", "never"); code != 2 {
		t.Errorf("expected exit 2 for unknown heading break, got %d", code)
	}
	if _, _, code := runCLI(t, "", "a.md", "b.md"); code != 2 {
		t.Errorf("expected exit 2 for two inputs, got %d", code)
	}
}

func TestRun_FileInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<h1>Title</h1><p>body</p>"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	out, errOut, code := runCLI(t, "", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "<span font='bold 20px'>Title</span><br/>") {
		t.Errorf("expected heading markup, got %q", out)
	}
}

func TestRun_UnsupportedFile(t *testing.T) {
	_, errOut, code := runCLI(t, "", "image.png")
	if code != 1 {
		t.Errorf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "unsupported") {
		t.Errorf("expected unsupported error, got %q", errOut)
	}
}
