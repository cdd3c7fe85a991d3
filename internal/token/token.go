package token

// Type is the tag a lexer assigns to a markdown token.
type Type string

// Recognised token types. Any other tag is treated as unrecognized.
const (
	Space     Type = "space"
	Text      Type = "text"
	Paragraph Type = "paragraph"
	Strong    Type = "strong"
	Emphasize Type = "em"
	Delete    Type = "del"
	Heading   Type = "heading"
	Link      Type = "link"
)

// Token is a node of a lexed markdown document.
type Token struct {
	Type     Type     `json:"type"`
	Raw      string   `json:"raw"`             // Source slice this token was lexed from
	Text     string   `json:"text,omitempty"`  // Plain text content (leaf types)
	Depth    int      `json:"depth,omitempty"` // Heading level, 1-based
	Href     string   `json:"href,omitempty"`  // Link target
	Children []*Token `json:"tokens,omitempty"`
}

// Count returns the number of tokens in the tree rooted at tokens whose type
// satisfies match.
func Count(tokens []*Token, match func(Type) bool) int {
	n := 0
	for _, t := range tokens {
		if match(t.Type) {
			n++
		}
		n += Count(t.Children, match)
	}
	return n
}
