package jselect

import (
	"slices"
	"strings"
)

// Wildcard is the key name that makes a KeyTest match any object key.
const Wildcard = "*"

// Kind discriminates the variants of Element.
type Kind uint8

const (
	KindKey Kind = iota + 1
	KindIndex
	KindAnything
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindIndex:
		return "index"
	case KindAnything:
		return "anything"
	}
	return "invalid"
}

// Element is one level of a compiled pattern. The set of implementations is
// closed: KeyTest, IndexTest and Anything.
type Element interface {
	Kind() Kind
	String() string
	element()
}

// KeyTest matches an object key whose name is in its name set.
type KeyTest struct {
	names map[string]struct{}
}

func newKeyTest() KeyTest {
	return KeyTest{names: make(map[string]struct{})}
}

func (k KeyTest) add(name string) { k.names[name] = struct{}{} }

// Matches reports whether name is one of the alternatives or the test holds
// the wildcard.
func (k KeyTest) Matches(name string) bool {
	if _, ok := k.names[name]; ok {
		return true
	}
	_, ok := k.names[Wildcard]
	return ok
}

// Wildcard reports whether the test matches every key.
func (k KeyTest) Wildcard() bool {
	_, ok := k.names[Wildcard]
	return ok
}

// Names returns the alternatives in sorted order.
func (k KeyTest) Names() []string {
	out := make([]string, 0, len(k.names))
	for n := range k.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (KeyTest) Kind() Kind { return KindKey }

func (k KeyTest) String() string { return strings.Join(k.Names(), "|") }

func (KeyTest) element() {}

// IndexTest matches any array index.
type IndexTest struct{}

func (IndexTest) Matches() bool { return true }

func (IndexTest) Kind() Kind { return KindIndex }

func (IndexTest) String() string { return "[]" }

func (IndexTest) element() {}

// Anything terminates every compiled pattern. Once a cursor reaches it every
// deeper key or index is selected.
type Anything struct{}

func (Anything) Matches() bool { return true }

func (Anything) Kind() Kind { return KindAnything }

func (Anything) String() string { return "" }

func (Anything) element() {}
