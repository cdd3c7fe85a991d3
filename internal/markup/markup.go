package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnbalanced is returned when start and end tags do not nest.
var ErrUnbalanced = errors.New("unbalanced markup")

// Report summarises the tags found in a markup string.
type Report struct {
	Elements map[string]int // Start tags per element name, br excluded
	Breaks   int            // Line break tags
	Links    []string       // Anchor targets in document order
	MaxDepth int            // Deepest element nesting seen
}

// Tags returns the number of start and end tags, line breaks excluded.
func (r Report) Tags() int {
	n := 0
	for _, c := range r.Elements {
		n += 2 * c
	}
	return n
}

// Inspect tokenizes markup and checks that every start tag is closed by a
// matching end tag at the same depth.
func Inspect(markup string) (Report, error) {
	rep := Report{Elements: make(map[string]int)}
	var stack []string

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return rep, fmt.Errorf("tokenize markup: %w", err)
			}
			if len(stack) > 0 {
				return rep, fmt.Errorf("%w: unclosed <%s>", ErrUnbalanced, stack[len(stack)-1])
			}
			return rep, nil

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				rep.Breaks++
			}

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "br" {
				rep.Breaks++
				continue
			}
			rep.Elements[tag]++
			stack = append(stack, tag)
			rep.MaxDepth = max(rep.MaxDepth, len(stack))
			if tag == "a" && hasAttr {
				if href, ok := attr(z, "href"); ok {
					rep.Links = append(rep.Links, href)
				}
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if len(stack) == 0 {
				return rep, fmt.Errorf("%w: stray </%s>", ErrUnbalanced, tag)
			}
			if top := stack[len(stack)-1]; top != tag {
				return rep, fmt.Errorf("%w: expected </%s>, got </%s>", ErrUnbalanced, top, tag)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func attr(z *html.Tokenizer, key string) (string, bool) {
	for {
		k, v, more := z.TagAttr()
		if string(k) == key {
			return string(v), true
		}
		if !more {
			return "", false
		}
	}
}

// Links returns the anchor targets of markup in document order. The host
// dispatches taps on these.
func Links(markup string) ([]string, error) {
	rep, err := Inspect(markup)
	if err != nil {
		return nil, err
	}
	return rep.Links, nil
}

// PlainText returns the text content of markup, with line break tags turned
// back into line feeds.
func PlainText(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	return buf.String(), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
