// Package transducer turns a markdown token tree into either a stream of
// begin/text/end events or a markup string for a host text component.
//
// Both outputs come from the same recursive walk over the tree. The walk
// looks up each token's type in a dispatch table and hands the token to an
// action: the emitter notifies observers, the renderer writes markup.
// Unrecognized token types never fail a pass; they are logged and their raw
// source is passed through as text.
package transducer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/lexer"
	"github.com/ahmadov/tabris-markdown/internal/token"
)

// Transducer holds a lexed token tree. The tree is never mutated, so a
// Transducer may be rendered or emitted any number of times, concurrently.
type Transducer struct {
	tokens       []*token.Token
	log          *slog.Logger
	headingBreak HeadingBreak
}

// New creates a Transducer over an already lexed token tree.
func New(tokens []*token.Token, opts ...Option) *Transducer {
	t := &Transducer{
		tokens: tokens,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Parse lexes markdown source once and returns a Transducer over the result.
func Parse(src string, opts ...Option) *Transducer {
	return New(lexer.LexString(src), opts...)
}

// Tokens returns the token tree the Transducer was built with.
func (t *Transducer) Tokens() []*token.Token {
	return t.tokens
}

// handler is one dispatch table entry. A nil begin marks a leaf type.
type handler struct {
	begin func(*token.Token) Event  // event half
	open  func(*token.Token) string // markup half
	close string

	trailingBreak bool // subject to the heading break policy
}

func beginEvent(tok *token.Token) Event {
	return Event{Kind: Begin, Type: tok.Type}
}

func tag(s string) func(*token.Token) string {
	return func(*token.Token) string { return s }
}

var leaf = handler{}

var handlers = map[token.Type]handler{
	token.Space:     leaf,
	token.Text:      leaf,
	token.Paragraph: {begin: beginEvent, open: tag("")},
	token.Strong:    {begin: beginEvent, open: tag("<b>"), close: "</b>"},
	token.Emphasize: {begin: beginEvent, open: tag("<em>"), close: "</em>"},
	token.Delete:    {begin: beginEvent, open: tag("<del>"), close: "</del>"},
	token.Heading: {
		begin: func(tok *token.Token) Event {
			return Event{Kind: Begin, Type: tok.Type, Depth: tok.Depth}
		},
		open: func(tok *token.Token) string {
			return fmt.Sprintf("<span font='bold %dpx'>", FontSize(tok.Depth))
		},
		close:         "</span>",
		trailingBreak: true,
	},
	token.Link: {
		begin: func(tok *token.Token) Event {
			return Event{Kind: Begin, Type: tok.Type, Href: tok.Href}
		},
		open: func(tok *token.Token) string {
			return `<a href="` + strings.ReplaceAll(tok.Href, `"`, "&quot;") + `">`
		},
		close: "</a>",
	},
}

// Recognized reports whether typ has an entry in the dispatch table.
func Recognized(typ token.Type) bool {
	_, ok := handlers[typ]
	return ok
}

// IsContainer reports whether typ is a recognized type that wraps children.
func IsContainer(typ token.Type) bool {
	h, ok := handlers[typ]
	return ok && h.begin != nil
}

// action receives the nodes of a walk in document order.
type action interface {
	leaf(tok *token.Token)
	enter(tok *token.Token, h handler)
	leave(tok *token.Token, h handler)
	lineBreak(tok *token.Token)
}

func (t *Transducer) walk(tokens []*token.Token, a action) {
	for _, tok := range tokens {
		h, ok := handlers[tok.Type]
		if !ok {
			t.log.Warn("unrecognized token type", "type", string(tok.Type), "raw", tok.Raw)
			a.leaf(tok)
			continue
		}
		if h.begin == nil {
			a.leaf(tok)
			continue
		}
		a.enter(tok, h)
		t.walk(tok.Children, a)
		a.leave(tok, h)
		if h.trailingBreak && t.headingBreak.breaksAfter(tok) {
			a.lineBreak(tok)
		}
	}
}
