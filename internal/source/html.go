package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLLoader converts HTML into markdown. Headings, paragraphs, emphasis,
// strikethrough and links are kept; everything else is reduced to its text.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html %s: %w", filename, err)
	}

	var blocks []string
	if title := findTitle(doc); title != "" {
		blocks = append(blocks, headingLine(1, title))
	}

	var current strings.Builder
	flush := func() {
		blocks = append(blocks, current.String())
		current.Reset()
	}

	var inline func(*html.Node)
	inline = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			current.WriteString(collapseSpace(n.Data))
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				current.WriteString("\n")
				return
			case "b", "strong":
				wrapInline(&current, "**", n, inline)
				return
			case "i", "em":
				wrapInline(&current, "*", n, inline)
				return
			case "del", "s", "strike":
				wrapInline(&current, "~~", n, inline)
				return
			case "a":
				if href := attrValue(n, "href"); href != "" {
					current.WriteString("[")
					for c := n.FirstChild; c != nil; c = c.NextSibling {
						inline(c)
					}
					current.WriteString("](" + href + ")")
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			inline(c)
		}
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flush()
				inline(n)
				blocks = append(blocks, headingLine(level, strings.TrimSpace(current.String())))
				current.Reset()
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "head":
				return
			case "p", "li", "td", "blockquote", "div", "pre":
				if !hasBlockChild(n) {
					flush()
					inline(n)
					flush()
					return
				}
			}
		}
		if n.Type == html.TextNode || (n.Type == html.ElementNode && isInline(n.Data)) {
			inline(n)
			return
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
	flush()

	return joinBlocks(blocks), nil
}

func wrapInline(buf *strings.Builder, marker string, n *html.Node, inline func(*html.Node)) {
	buf.WriteString(marker)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		inline(c)
	}
	buf.WriteString(marker)
}

func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s, " \t\r\n") != s {
		out = " " + out
	}
	if strings.TrimRight(s, " \t\r\n") != s {
		out += " "
	}
	return out
}

func isInline(tag string) bool {
	switch tag {
	case "a", "b", "strong", "i", "em", "del", "s", "strike", "span", "br", "code":
		return true
	}
	return false
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if headingLevel(c.Data) > 0 {
			return true
		}
		switch c.Data {
		case "p", "li", "ul", "ol", "table", "div", "blockquote", "pre":
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
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
