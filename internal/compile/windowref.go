package compile

import (
	"strings"
)

// Window references come in three shapes: an explicit window id, a
// stack position ("%2"), or the whole stack ("%@"). Anything else is
// not a window reference and gets reinterpreted by the active grammar,
// usually as the next command name. Grammars whose own positionals are
// integers (windowmove, windowsize) accept only the non-decimal shapes
// as a leading reference, so a bare number stays a coordinate.

// isWindowToken reports whether tok can address a window: an explicit
// id or stack syntax.
func isWindowToken(tok string) bool {
	if isWindowID(tok) || tok == "%@" {
		return true
	}
	if rest, ok := strings.CutPrefix(tok, "%"); ok {
		return allDigits(rest)
	}
	return false
}

// isNonDecimalWindowToken is isWindowToken minus the bare-decimal id
// shape, for grammars where a plain integer fills a positional slot.
func isNonDecimalWindowToken(tok string) bool {
	if allDigits(tok) {
		return false
	}
	return isWindowToken(tok)
}

// isWindowID reports whether tok has window-identifier shape: decimal
// (X11), 0x-prefixed hex (X11), or a UUID with optional braces (KWin 6
// internal ids).
func isWindowID(tok string) bool {
	if allDigits(tok) {
		return true
	}
	if rest, ok := strings.CutPrefix(tok, "0x"); ok {
		return rest != "" && allHexDigits(rest)
	}
	return isUUID(tok)
}

func isUUID(tok string) bool {
	if strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") {
		tok = tok[1 : len(tok)-1]
	}
	// 8-4-4-4-12 hex groups.
	groups := strings.Split(tok, "-")
	if len(groups) != 5 {
		return false
	}
	lens := [5]int{8, 4, 4, 4, 12}
	for i, g := range groups {
		if len(g) != lens[i] || !allHexDigits(g) {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func allHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
