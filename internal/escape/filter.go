// Package escape removes terminal control sequences from captured output and
// splits the remaining plain text into display lines.
//
// The filter is intentionally loose: it does not parse VT100/ECMA-48 grammar.
// A sequence starts at ESC and ends at the first character from a fixed set of
// final bytes, so a final byte that appears as ordinary text directly after an
// ESC (for example "\x1bhello") ends the sequence early, and "ello" survives.
package escape

import (
	"strings"
)

// esc is the ASCII escape character that begins every control sequence.
const esc = '\x1b'

// isTerminator reports whether r ends an escape sequence.
func isTerminator(r rune) bool {
	switch r {
	case 'm', 'A', 'B', 'C', 'D', 'J', 'K', 'H', 'f', 's', 'u', 'h', 'l', 'r', 'n':
		return true
	}
	return false
}

// Filter is a streaming escape sequence remover. The zero value is ready to
// use. A Filter must not be used concurrently.
type Filter struct {
	out    strings.Builder
	inside bool
}

// WriteRune feeds a single character through the filter.
//
// The order of the three checks matters: ESC always enters a sequence (even
// one already open), the character is kept only while outside a sequence,
// and a terminator always leaves the sequence, including the one that was
// just examined.
func (f *Filter) WriteRune(r rune) {
	if r == esc {
		f.inside = true
	}
	if !f.inside {
		f.out.WriteRune(r)
	}
	if isTerminator(r) {
		f.inside = false
	}
}

// WriteString feeds s through the filter. It implements io.StringWriter and
// never fails.
func (f *Filter) WriteString(s string) (int, error) {
	for _, r := range s {
		f.WriteRune(r)
	}
	return len(s), nil
}

// Inside reports whether the filter is currently within an unterminated
// escape sequence. At the end of input this indicates a truncated sequence;
// whatever followed its ESC has been dropped.
func (f *Filter) Inside() bool {
	return f.inside
}

// String returns the plain text accumulated so far.
func (f *Filter) String() string {
	return f.out.String()
}

// Reset discards the accumulated output and closes any open sequence.
func (f *Filter) Reset() {
	f.out.Reset()
	f.inside = false
}

// Strip returns text with escape sequences removed. The result never contains
// ESC, is never longer than text, and keeps the order of surviving characters.
func Strip(text string) string {
	var f Filter
	f.out.Grow(len(text))
	_, _ = f.WriteString(text)
	return f.String()
}
