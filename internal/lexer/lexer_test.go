package lexer

import (
	"strings"
	"testing"

	"github.com/ahmadov/tabris-markdown/internal/token"
)

func TestLex_Empty(t *testing.T) {
	if tokens := LexString(""); len(tokens) != 0 {
		t.Errorf("expected no tokens, got %d", len(tokens))
	}
}

func TestLex_RawReproducesSource(t *testing.T) {
	inputs := []string{
		"foo",
		"fo \n\no",
		"\n\nfoo\n\n",
		"# header 1\n## header 2\n\nheader\n======\nsome text\n\nI just love **bold text**.\n",
		"> quoted\n\n- one\n- two\n\n```\ncode\n```\n\n---\ntail",
		"_**foo**_ ~~gone~~ [docs](https://docs.tabris.com) <https://a.io>",
	}
	for _, in := range inputs {
		var buf strings.Builder
		for _, tok := range LexString(in) {
			buf.WriteString(tok.Raw)
		}
		if buf.String() != in {
			t.Errorf("expected raw concatenation %q, got %q", in, buf.String())
		}
	}
}

func TestLex_ParagraphsAndSpace(t *testing.T) {
	tokens := LexString("fo \n\no")
	want := []struct {
		typ token.Type
		raw string
	}{
		{token.Paragraph, "fo "},
		{token.Space, "\n\n"},
		{token.Paragraph, "o"},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		if tokens[i].Type != w.typ || tokens[i].Raw != w.raw {
			t.Errorf("token %d: expected %s %q, got %s %q", i, w.typ, w.raw, tokens[i].Type, tokens[i].Raw)
		}
	}
}

func TestLex_Strong(t *testing.T) {
	tokens := LexString("**foo** bar")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	kids := tokens[0].Children
	if len(kids) != 2 {
		t.Fatalf("expected 2 children, got %d", len(kids))
	}
	if kids[0].Type != token.Strong || kids[0].Raw != "**foo**" {
		t.Errorf("expected strong %q, got %s %q", "**foo**", kids[0].Type, kids[0].Raw)
	}
	if len(kids[0].Children) != 1 || kids[0].Children[0].Raw != "foo" {
		t.Errorf("expected strong to hold text foo")
	}
	if kids[1].Type != token.Text || kids[1].Raw != " bar" {
		t.Errorf("expected text %q, got %s %q", " bar", kids[1].Type, kids[1].Raw)
	}
}

func TestLex_Heading(t *testing.T) {
	tokens := LexString("## h\n")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	h := tokens[0]
	if h.Type != token.Heading || h.Depth != 2 {
		t.Errorf("expected heading of depth 2, got %s depth %d", h.Type, h.Depth)
	}
	if h.Raw != "## h\n" {
		t.Errorf("expected heading to keep its line feed, got %q", h.Raw)
	}
	if h.Text != "h" {
		t.Errorf("expected text %q, got %q", "h", h.Text)
	}
}

func TestLex_Links(t *testing.T) {
	tokens := LexString("[x](u) <https://a.io>")
	kids := tokens[0].Children
	var links []*token.Token
	for _, k := range kids {
		if k.Type == token.Link {
			links = append(links, k)
		}
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Href != "u" || links[0].Raw != "[x](u)" {
		t.Errorf("expected link u with raw [x](u), got %q %q", links[0].Href, links[0].Raw)
	}
	if links[1].Href != "https://a.io" {
		t.Errorf("expected autolink href, got %q", links[1].Href)
	}
	if len(links[1].Children) != 1 || links[1].Children[0].Raw != "https://a.io" {
		t.Errorf("expected autolink label as text child")
	}
}

func TestLex_Strikethrough(t *testing.T) {
	kids := LexString("~~a~~")[0].Children
	if len(kids) != 1 || kids[0].Type != token.Delete || kids[0].Raw != "~~a~~" {
		t.Errorf("expected one del token, got %+v", kids)
	}
}

func TestLex_UnrecognizedBlocksKeepKind(t *testing.T) {
	tests := []struct {
		in   string
		want token.Type
	}{
		{"> bar", "blockquote"},
		{"- one", "list"},
		{"---", "hr"},
		{"```\nx\n```", "code"},
	}
	for _, tt := range tests {
		tokens := LexString(tt.in)
		if len(tokens) != 1 {
			t.Errorf("input %q: expected 1 token, got %d", tt.in, len(tokens))
			continue
		}
		if tokens[0].Type != tt.want || tokens[0].Raw != tt.in {
			t.Errorf("input %q: expected %s, got %s %q", tt.in, tt.want, tokens[0].Type, tokens[0].Raw)
		}
	}
}

func TestLex_FencedCodeKeepsOpeningFence(t *testing.T) {
	tests := []struct {
		in   string
		want []string // type:raw per top-level token
	}{
		{"```\nx\n```", []string{"code:```\nx\n```"}},
		{"~~~\nx\n~~~", []string{"code:~~~\nx\n~~~"}},
		{"```go\nx\n```", []string{"code:```go\nx\n```"}},
		{"a\n\n```\nx\n```\n\nb", []string{
			"paragraph:a",
			"space:\n\n",
			"code:```\nx\n```",
			"space:\n\n",
			"paragraph:b",
		}},
	}
	for _, tt := range tests {
		tokens := LexString(tt.in)
		got := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			got = append(got, string(tok.Type)+":"+tok.Raw)
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("input %q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestLex_HeadingClosingSequence(t *testing.T) {
	h := LexString("# foo #")[0]
	if h.Raw != "# foo #" {
		t.Errorf("expected raw %q, got %q", "# foo #", h.Raw)
	}
	if h.Text != "foo" {
		t.Errorf("expected text %q, got %q", "foo", h.Text)
	}
	if len(h.Children) != 1 || h.Children[0].Raw != "foo" {
		t.Errorf("expected a single text child %q, got %+v", "foo", h.Children)
	}
}

func TestLex_EmailAutoLink(t *testing.T) {
	kids := LexString("<a@b.c>")[0].Children
	if len(kids) != 1 || kids[0].Type != token.Link {
		t.Fatalf("expected one link, got %+v", kids)
	}
	if kids[0].Href != "mailto:a@b.c" {
		t.Errorf("expected href %q, got %q", "mailto:a@b.c", kids[0].Href)
	}
	if kids[0].Children[0].Raw != "a@b.c" {
		t.Errorf("expected label %q, got %q", "a@b.c", kids[0].Children[0].Raw)
	}
}
