package transducer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmadov/tabris-markdown/internal/token"
)

// Option configures a Transducer.
type Option func(*Transducer)

// WithLogger sets the logger unrecognized token types are reported to.
func WithLogger(log *slog.Logger) Option {
	return func(t *Transducer) {
		if log != nil {
			t.log = log
		}
	}
}

// WithHeadingBreak selects when a line break follows a heading.
func WithHeadingBreak(b HeadingBreak) Option {
	return func(t *Transducer) {
		t.headingBreak = b
	}
}

// HeadingBreak decides whether a line break follows a heading.
type HeadingBreak int

const (
	// HeadingBreakRaw breaks after a heading only when its raw source ends
	// with a line feed.
	HeadingBreakRaw HeadingBreak = iota
	// HeadingBreakAlways breaks after every heading.
	HeadingBreakAlways
)

func (b HeadingBreak) String() string {
	switch b {
	case HeadingBreakRaw:
		return "raw"
	case HeadingBreakAlways:
		return "always"
	}
	return fmt.Sprintf("HeadingBreak(%d)", int(b))
}

// ParseHeadingBreak parses "raw" or "always". The empty string is "raw".
func ParseHeadingBreak(s string) (HeadingBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raw":
		return HeadingBreakRaw, nil
	case "always":
		return HeadingBreakAlways, nil
	}
	return HeadingBreakRaw, fmt.Errorf("unknown heading break policy %q", s)
}

func (b HeadingBreak) breaksAfter(tok *token.Token) bool {
	if b == HeadingBreakAlways {
		return true
	}
	return strings.HasSuffix(tok.Raw, "\n")
}
