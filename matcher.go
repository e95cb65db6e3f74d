package jselect

import "go.uber.org/zap"

// Matcher is a cursor over a compiled Pattern. The document parser calls
// TestKey or TestIndex at every object key and array element it visits and
// Retreat once it is done with that child, so the cursor mirrors its descent.
//
// A Matcher is not safe for concurrent use; create one per parse.
type Matcher struct {
	elems   []Element
	pos     int
	history []int
	logger  *zap.Logger
}

// NewMatcher returns a cursor positioned at the first element of p. A nil
// pattern selects everything.
func NewMatcher(p *Pattern) *Matcher {
	return newMatcher(p, nil)
}

func newMatcher(p *Pattern, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Matcher{logger: logger}
	if p != nil {
		m.elems = p.elems
	}
	return m
}

// TestKey reports whether an object key named name is selected at the current
// level and advances the cursor one level.
func (m *Matcher) TestKey(name string) bool {
	if m.IsTerminal() {
		m.history = append(m.history, m.pos)
		return true
	}
	k, ok := m.elems[m.pos].(KeyTest)
	m.advance()
	return ok && k.Matches(name)
}

// TestIndex reports whether an array element is selected at the current level
// and advances the cursor one level.
func (m *Matcher) TestIndex() bool {
	if m.IsTerminal() {
		m.history = append(m.history, m.pos)
		return true
	}
	_, ok := m.elems[m.pos].(IndexTest)
	m.advance()
	return ok
}

// Retreat undoes the most recent TestKey or TestIndex. Calling it more often
// than the tests it undoes leaves the cursor where it is.
func (m *Matcher) Retreat() {
	n := len(m.history)
	if n == 0 {
		m.logger.Debug("matcher retreat without matching test", zap.Int("position", m.pos))
		return
	}
	m.pos = m.history[n-1]
	m.history = m.history[:n-1]
}

// IsTerminal reports whether the cursor reached the trailing Anything. From
// then on every key and index is selected.
func (m *Matcher) IsTerminal() bool {
	return m.pos >= len(m.elems)-1
}

// Position returns the index of the current element.
func (m *Matcher) Position() int { return m.pos }

// Depth returns the number of tests not yet undone by Retreat.
func (m *Matcher) Depth() int { return len(m.history) }

// Reset moves the cursor back to the first element so the matcher can drive
// another parse.
func (m *Matcher) Reset() {
	m.pos = 0
	m.history = m.history[:0]
}

func (m *Matcher) advance() {
	m.history = append(m.history, m.pos)
	m.pos++
}
