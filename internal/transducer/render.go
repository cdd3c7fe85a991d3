package transducer

import (
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/token"
)

// LineBreak is the markup written for every line feed.
const LineBreak = "<br/>"

// FontSize returns the heading font size in pixels for a 1-based depth.
func FontSize(depth int) int {
	return max(20-2*(depth-1), 10)
}

// Render walks the tree and returns its markup.
func (t *Transducer) Render() string {
	r := &renderer{}
	t.walk(t.tokens, r)
	return r.buf.String()
}

type renderer struct {
	buf strings.Builder
}

func (r *renderer) leaf(tok *token.Token) {
	r.buf.WriteString(strings.ReplaceAll(tok.Raw, "\n", LineBreak))
}

func (r *renderer) enter(tok *token.Token, h handler) {
	r.buf.WriteString(h.open(tok))
}

func (r *renderer) leave(_ *token.Token, h handler) {
	r.buf.WriteString(h.close)
}

func (r *renderer) lineBreak(*token.Token) {
	r.buf.WriteString(LineBreak)
}
