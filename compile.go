package jselect

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// ErrSyntax is matched by every error returned from Compile.
var ErrSyntax = errors.New("pattern syntax error")

// SyntaxError reports an unexpected character in a pattern. Offset is the
// 0-based byte offset of the offending character, or len(Pattern) when the
// pattern ended early.
type SyntaxError struct {
	Pattern string
	Offset  int
	Char    rune
	EOF     bool
}

func (e *SyntaxError) Error() string {
	if e.EOF {
		return fmt.Sprintf("unexpected end of input at position %d in pattern %q", e.Offset, e.Pattern)
	}
	return fmt.Sprintf("unexpected character %q at position %d in pattern %q", e.Char, e.Offset, e.Pattern)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Pattern is a compiled selection pattern: one Element per nesting level,
// terminated by Anything. A Pattern is immutable and may be shared between
// goroutines; each parse gets its own Matcher.
type Pattern struct {
	text  string
	elems []Element
}

// Compile parses a pattern such as "user.details.age", "users[name]" or
// "name|city". The empty pattern selects everything.
//
// Syntax:
//
//	.      separates two key segments
//	|      alternatives within one key segment
//	*      any key
//	[]     any array element; "a[]", "a.[]" and "[]a" need no other separator
//	[p]    any array element, then the path p
//
// Identifiers are runs of [A-Za-z0-9_]; there is no escaping.
func Compile(text string) (*Pattern, error) {
	c := compiler{text: text}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return &Pattern{text: text, elems: c.elems}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// Elements returns a copy of the compiled sequence. The last element is
// always Anything.
func (p *Pattern) Elements() []Element { return slices.Clone(p.elems) }

// Len returns the number of elements including the trailing Anything.
func (p *Pattern) Len() int { return len(p.elems) }

// Segments returns the number of explicit key and index segments.
func (p *Pattern) Segments() int { return len(p.elems) - 1 }

// String returns the source text the pattern was compiled from.
func (p *Pattern) String() string { return p.text }

type compiler struct {
	text  string
	pos   int
	elems []Element
}

func (c *compiler) compile() error {
	if !c.end() {
		if err := c.path(); err != nil {
			return err
		}
	}
	if !c.end() {
		return c.unexpected()
	}
	c.elems = append(c.elems, Anything{})
	return nil
}

// path reads one segment followed by any number of further segments. Two
// key segments are separated by '.'; an index segment may follow anything
// directly, and a key may follow an index directly. It stops at the first
// character that cannot continue the path.
func (c *compiler) path() error {
	afterIndex, err := c.segment()
	if err != nil {
		return err
	}
	for {
		switch {
		case c.peek() == '.':
			c.pos++
			if afterIndex, err = c.segment(); err != nil {
				return err
			}
		case c.peek() == '[':
			if err := c.index(); err != nil {
				return err
			}
			afterIndex = true
		case afterIndex && c.nameStart():
			if _, err := c.keyAlt(); err != nil {
				return err
			}
			afterIndex = false
		default:
			return nil
		}
	}
}

// segment reads a key or index segment and reports whether it was an index.
func (c *compiler) segment() (bool, error) {
	if c.peek() == '[' {
		return true, c.index()
	}
	ok, err := c.keyAlt()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, c.unexpected()
	}
	return false, nil
}

// keyAlt reads name ('|' name)* into a single KeyTest. It returns false
// without consuming input when no name starts at the current position.
func (c *compiler) keyAlt() (bool, error) {
	if !c.nameStart() {
		return false, nil
	}
	key := newKeyTest()
	for {
		switch {
		case c.peek() == '*':
			key.add(Wildcard)
			c.pos++
		case isIdent(c.peek()):
			start := c.pos
			for isIdent(c.peek()) {
				c.pos++
			}
			key.add(c.text[start:c.pos])
		default:
			return false, c.unexpected()
		}
		if c.peek() != '|' {
			break
		}
		c.pos++
	}
	c.elems = append(c.elems, key)
	return true, nil
}

// index reads "[]" or "[path]". The bracketed path is shorthand for the same
// segments following an index segment.
func (c *compiler) index() error {
	c.pos++ // '['
	c.elems = append(c.elems, IndexTest{})
	if c.peek() == ']' {
		c.pos++
		return nil
	}
	if c.end() {
		return c.unexpected()
	}
	if err := c.path(); err != nil {
		return err
	}
	if c.peek() != ']' {
		return c.unexpected()
	}
	c.pos++
	return nil
}

func (c *compiler) nameStart() bool {
	ch := c.peek()
	return ch == '*' || isIdent(ch)
}

func (c *compiler) peek() byte {
	if c.end() {
		return 0
	}
	return c.text[c.pos]
}

func (c *compiler) end() bool { return c.pos >= len(c.text) }

func (c *compiler) unexpected() error {
	if c.end() {
		return &SyntaxError{Pattern: c.text, Offset: c.pos, EOF: true}
	}
	r, _ := utf8.DecodeRuneInString(c.text[c.pos:])
	return &SyntaxError{Pattern: c.text, Offset: c.pos, Char: r}
}

func isIdent(ch byte) bool {
	return ch == '_' ||
		'a' <= ch && ch <= 'z' ||
		'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9'
}
