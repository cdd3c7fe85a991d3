package lexer

import (
	"bytes"
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/token"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// kindTags names the goldmark node kinds that have no recognised token type.
var kindTags = map[ast.NodeKind]token.Type{
	ast.KindBlockquote:      "blockquote",
	ast.KindList:            "list",
	ast.KindListItem:        "list_item",
	ast.KindFencedCodeBlock: "code",
	ast.KindCodeBlock:       "code",
	ast.KindThematicBreak:   "hr",
	ast.KindHTMLBlock:       "html",
	ast.KindCodeSpan:        "codespan",
	ast.KindImage:           "image",
	ast.KindRawHTML:         "html",
}

var md = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// Lex parses markdown source into a token tree.
//
// Every token's Raw is the source slice it was parsed from, so concatenating
// the Raw of the top-level tokens reproduces src. Blank lines between blocks
// become space tokens.
func Lex(src []byte) []*token.Token {
	doc := md.Parser().Parse(text.NewReader(src))
	l := &lexer{src: src}
	return l.blocks(doc)
}

// LexString is Lex for a string input.
func LexString(src string) []*token.Token {
	return Lex([]byte(src))
}

type lexer struct {
	src []byte
}

type span struct {
	first, last int // -1 when the node carries no source segments
}

func (l *lexer) blocks(doc ast.Node) []*token.Token {
	var nodes []ast.Node
	var spans []span
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		nodes = append(nodes, n)
		spans = append(spans, l.segmentSpan(n))
	}

	var out []*token.Token
	cursor := 0
	for i, n := range nodes {
		start := l.skipBlankLines(cursor)
		if spans[i].first >= 0 {
			start = max(cursor, l.lineStart(spans[i].first))
		}
		if start > cursor {
			out = append(out, l.space(cursor, start))
		}

		var end int
		switch {
		case i+1 == len(nodes):
			end = len(l.src)
		case spans[i+1].first >= 0:
			end = max(start, l.lineStart(spans[i+1].first))
		default:
			end = l.lineEnd(max(start, spans[i].last))
		}
		// Headings keep their trailing newlines, as marked does.
		if n.Kind() != ast.KindHeading {
			end = l.trimBlankTail(start, end)
		}

		out = append(out, l.block(n, start, end))
		cursor = end
	}
	if cursor < len(l.src) {
		out = append(out, l.space(cursor, len(l.src)))
	}
	return out
}

func (l *lexer) block(n ast.Node, start, end int) *token.Token {
	raw := string(l.src[start:end])
	switch node := n.(type) {
	case *ast.Paragraph:
		return &token.Token{
			Type:     token.Paragraph,
			Raw:      raw,
			Text:     l.plain(node),
			Children: l.inlines(node, start, end),
		}
	case *ast.Heading:
		tok := &token.Token{
			Type:  token.Heading,
			Raw:   raw,
			Depth: node.Level,
			Text:  strings.TrimRight(l.plain(node), " \t"),
		}
		if lines := node.Lines(); lines.Len() > 0 {
			cs := max(start, lines.At(0).Start)
			ce := min(end, lines.At(lines.Len()-1).Stop)
			for ce > cs && (l.src[ce-1] == ' ' || l.src[ce-1] == '\t') {
				ce--
			}
			tok.Children = l.inlines(node, cs, max(cs, ce))
		}
		return tok
	}
	return &token.Token{Type: tagFor(n.Kind()), Raw: raw}
}

// inlines maps the inline children of parent onto the source range
// [start, stop). Runs of text absorb the gaps between delimited nodes.
func (l *lexer) inlines(parent ast.Node, start, stop int) []*token.Token {
	var out []*token.Token
	cursor := start
	for c := parent.FirstChild(); c != nil; {
		if isText(c) {
			last := c
			next := c.NextSibling()
			for next != nil && isText(next) {
				last, next = next, next.NextSibling()
			}
			end := stop
			if next != nil {
				if s, _, ok := l.bounds(next); ok {
					end = s
				} else if _, e, ok := l.bounds(last); ok {
					end = e
				}
			}
			end = clamp(end, cursor, stop)

			var buf strings.Builder
			for t := c; t != next; t = t.NextSibling() {
				buf.WriteString(l.plain(t))
			}
			out = append(out, &token.Token{
				Type: token.Text,
				Raw:  string(l.src[cursor:end]),
				Text: buf.String(),
			})
			cursor = end
			c = next
			continue
		}

		_, e, ok := l.bounds(c)
		end := stop
		if ok {
			end = e
		} else if next := c.NextSibling(); next != nil {
			if ns, _, nok := l.bounds(next); nok {
				end = ns
			}
		}
		end = clamp(end, cursor, stop)
		out = append(out, l.inline(c, cursor, end))
		cursor = end
		c = c.NextSibling()
	}
	return out
}

func (l *lexer) inline(n ast.Node, start, end int) *token.Token {
	raw := string(l.src[start:end])
	var tok *token.Token
	switch node := n.(type) {
	case *ast.Emphasis:
		typ := token.Strong
		if node.Level == 1 {
			typ = token.Emphasize
		}
		tok = &token.Token{Type: typ, Raw: raw}
	case *extast.Strikethrough:
		tok = &token.Token{Type: token.Delete, Raw: raw}
	case *ast.Link:
		tok = &token.Token{Type: token.Link, Raw: raw, Href: string(node.Destination)}
	case *ast.AutoLink:
		label := string(node.Label(l.src))
		href := string(node.URL(l.src))
		if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			href = "mailto:" + href
		}
		return &token.Token{
			Type: token.Link,
			Raw:  raw,
			Href: href,
			Text: label,
			Children: []*token.Token{
				{Type: token.Text, Raw: label, Text: label},
			},
		}
	default:
		return &token.Token{Type: tagFor(n.Kind()), Raw: raw, Text: l.plain(n)}
	}

	tok.Text = l.plain(n)
	cs, ce := start, end
	if s, e, ok := l.innerBounds(n); ok {
		cs, ce = clamp(s, start, end), clamp(e, start, end)
	}
	tok.Children = l.inlines(n, cs, max(cs, ce))
	return tok
}

// bounds returns the source range an inline node covers, delimiters included.
// ok is false when the range cannot be derived from the AST alone.
func (l *lexer) bounds(n ast.Node) (start, stop int, ok bool) {
	switch node := n.(type) {
	case *ast.Text:
		return node.Segment.Start, node.Segment.Stop, true
	case *ast.RawHTML:
		if node.Segments.Len() == 0 {
			return 0, 0, false
		}
		return node.Segments.At(0).Start, node.Segments.At(node.Segments.Len() - 1).Stop, true
	case *ast.Emphasis:
		s, e, ok := l.innerBounds(n)
		if !ok || s < node.Level || e+node.Level > len(l.src) {
			return 0, 0, false
		}
		return s - node.Level, e + node.Level, true
	case *extast.Strikethrough:
		s, e, ok := l.innerBounds(n)
		if !ok {
			return 0, 0, false
		}
		return l.backOver(s, "~"), l.forwardOver(e, "~"), true
	case *ast.CodeSpan:
		s, e, ok := l.innerBounds(n)
		if !ok {
			return 0, 0, false
		}
		return l.backOver(l.backOver(s, " \n"), "`"), l.forwardOver(l.forwardOver(e, " \n"), "`"), true
	case *ast.Link:
		s, e, ok := l.innerBounds(n)
		if !ok || s < 1 {
			return 0, 0, false
		}
		return s - 1, l.linkTail(e), true
	case *ast.Image:
		s, e, ok := l.innerBounds(n)
		if !ok || s < 2 {
			return 0, 0, false
		}
		return s - 2, l.linkTail(e), true
	}
	return 0, 0, false
}

func (l *lexer) innerBounds(n ast.Node) (start, stop int, ok bool) {
	first, last := n.FirstChild(), n.LastChild()
	if first == nil {
		return 0, 0, false
	}
	s, _, ok := l.bounds(first)
	if !ok {
		return 0, 0, false
	}
	_, e, ok := l.bounds(last)
	if !ok || e < s {
		return 0, 0, false
	}
	return s, e, true
}

// linkTail returns the offset just past the "](...)" or "][...]" that
// follows a link label ending at i.
func (l *lexer) linkTail(i int) int {
	for i < len(l.src) && l.src[i] != ']' {
		if l.src[i] != ' ' && l.src[i] != '\n' {
			return i
		}
		i++
	}
	if i >= len(l.src) {
		return i
	}
	i++
	if i >= len(l.src) {
		return i
	}
	var closer byte
	switch l.src[i] {
	case '(':
		closer = ')'
	case '[':
		closer = ']'
	default:
		return i
	}
	open := l.src[i]
	depth := 0
	for j := i; j < len(l.src); j++ {
		switch l.src[j] {
		case '\\':
			j++
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return i
}

// segmentSpan finds the lowest and highest source offsets referenced by n
// or any of its descendants.
func (l *lexer) segmentSpan(n ast.Node) span {
	sp := span{first: -1, last: -1}
	add := func(s text.Segment) {
		if sp.first < 0 || s.Start < sp.first {
			sp.first = s.Start
		}
		if s.Stop > sp.last {
			sp.last = s.Stop
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c.Type() == ast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				add(lines.At(i))
			}
		}
		switch node := c.(type) {
		case *ast.FencedCodeBlock:
			if node.Info != nil {
				add(node.Info.Segment)
			}
			// The opening fence has no segment of its own; it is the line
			// above the first content line.
			if lines := node.Lines(); lines.Len() > 0 {
				if ls := l.lineStart(lines.At(0).Start); ls > 0 {
					fence := l.lineStart(ls - 1)
					add(text.NewSegment(fence, ls-1))
				}
			}
		case *ast.Text:
			add(node.Segment)
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				add(node.Segments.At(i))
			}
		}
		return ast.WalkContinue, nil
	})
	return sp
}

// plain returns the text content of n, with soft line breaks as "\n".
func (l *lexer) plain(n ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(l.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func (l *lexer) space(start, end int) *token.Token {
	return &token.Token{Type: token.Space, Raw: string(l.src[start:end])}
}

func (l *lexer) lineStart(i int) int {
	if i > len(l.src) {
		i = len(l.src)
	}
	return bytes.LastIndexByte(l.src[:i], '\n') + 1
}

func (l *lexer) lineEnd(i int) int {
	if i >= len(l.src) {
		return len(l.src)
	}
	if j := bytes.IndexByte(l.src[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(l.src)
}

// skipBlankLines advances i past any whitespace-only lines.
func (l *lexer) skipBlankLines(i int) int {
	for i < len(l.src) {
		end := l.lineEnd(i)
		if len(bytes.TrimSpace(l.src[i:end])) != 0 || end == len(l.src) {
			return i
		}
		i = end + 1
	}
	return i
}

// trimBlankTail drops trailing line feeds and whitespace-only lines from
// src[start:end], keeping trailing spaces on the last content line.
func (l *lexer) trimBlankTail(start, end int) int {
	for end > start {
		if c := l.src[end-1]; c == '\n' || c == '\r' {
			end--
			continue
		}
		nl := bytes.LastIndexByte(l.src[start:end], '\n')
		if nl < 0 || len(bytes.TrimSpace(l.src[start+nl+1:end])) != 0 {
			break
		}
		end = start + nl
	}
	return end
}

func (l *lexer) backOver(i int, set string) int {
	for i > 0 && strings.IndexByte(set, l.src[i-1]) >= 0 {
		i--
	}
	return i
}

func (l *lexer) forwardOver(i int, set string) int {
	for i < len(l.src) && strings.IndexByte(set, l.src[i]) >= 0 {
		i++
	}
	return i
}

func isText(n ast.Node) bool {
	switch n.(type) {
	case *ast.Text, *ast.String:
		return true
	}
	return false
}

func tagFor(kind ast.NodeKind) token.Type {
	if t, ok := kindTags[kind]; ok {
		return t
	}
	return token.Type(strings.ToLower(kind.String()))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
