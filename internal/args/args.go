// Package args provides a token cursor over a raw argv slice.
//
// The directive grammar cannot be expressed with the flag package:
// commands chain without separators, flags and positional values
// interleave per command, and a positional value that does not fit the
// active grammar names the next command. The cursor only classifies
// tokens; all grammar decisions stay with the caller.
package args

import (
	"fmt"
	"strings"
)

// Kind classifies a single argv token.
type Kind int

const (
	// KindValue is a plain value token. Negative numbers ("-5") and
	// stack references ("%2", "%@") are values, not options.
	KindValue Kind = iota
	// KindShort is a single-dash option ("-d").
	KindShort
	// KindLong is a double-dash option ("--pid"). A "--name=value"
	// spelling is split; the value is held back for FlagValue.
	KindLong
)

// Token is one classified argv token.
type Token struct {
	Kind Kind
	Text string
}

// String returns the token as the user spelled it.
func (t Token) String() string {
	switch t.Kind {
	case KindShort:
		return "-" + t.Text
	case KindLong:
		return "--" + t.Text
	default:
		return t.Text
	}
}

// Cursor walks a token stream left to right.
type Cursor struct {
	tokens      []string
	pos         int
	attached    string // value from a "--flag=value" spelling
	hasAttached bool
	lastLong    string
}

// NewCursor returns a cursor positioned at the first token.
func NewCursor(tokens []string) *Cursor {
	return &Cursor{tokens: tokens}
}

// Next returns the next token. ok is false when the stream is
// exhausted. An attached "=value" left unconsumed by the previous
// option is an error: the option took no value.
func (c *Cursor) Next() (tok Token, ok bool, err error) {
	if c.hasAttached {
		v := c.attached
		c.hasAttached = false
		return Token{}, false, fmt.Errorf("unexpected value '%s' for option '--%s'", v, c.lastLong)
	}
	if c.pos >= len(c.tokens) {
		return Token{}, false, nil
	}
	raw := c.tokens[c.pos]
	c.pos++

	switch {
	case strings.HasPrefix(raw, "--") && len(raw) > 2:
		name := raw[2:]
		if i := strings.IndexByte(name, '='); i >= 0 {
			c.attached = name[i+1:]
			c.hasAttached = true
			name = name[:i]
		}
		c.lastLong = name
		return Token{Kind: KindLong, Text: name}, true, nil
	case len(raw) > 1 && raw[0] == '-' && !isDigit(raw[1]) && raw != "--":
		return Token{Kind: KindShort, Text: raw[1:]}, true, nil
	default:
		return Token{Kind: KindValue, Text: raw}, true, nil
	}
}

// FlagValue returns the value for the long option just returned by
// Next: the attached "=value" if present, otherwise the next raw
// token verbatim.
func (c *Cursor) FlagValue() (string, error) {
	if c.hasAttached {
		c.hasAttached = false
		return c.attached, nil
	}
	if c.pos >= len(c.tokens) {
		return "", fmt.Errorf("missing value for option '--%s'", c.lastLong)
	}
	v := c.tokens[c.pos]
	c.pos++
	return v, nil
}

// Rest returns the tokens not yet consumed.
func (c *Cursor) Rest() []string {
	return c.tokens[c.pos:]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
