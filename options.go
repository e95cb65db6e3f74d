package jselect

import (
	"errors"

	"go.uber.org/zap"
)

// Option configures a Selector. Options are applied in order; a later
// pattern option replaces an earlier one.
type Option func(s *Selector) error

// WithPattern sets the pattern text. The text is compiled once all options
// are applied, through the cache when WithCache is given. The empty text
// selects everything.
func WithPattern(text string) Option {
	return func(s *Selector) error {
		s.text = text
		s.pattern = nil
		return nil
	}
}

// WithCompiledPattern sets an already compiled pattern. A nil pattern
// selects everything.
func WithCompiledPattern(p *Pattern) Option {
	return func(s *Selector) error {
		s.text = ""
		s.pattern = p
		return nil
	}
}

// WithCache compiles the pattern text through c.
func WithCache(c *Cache) Option {
	return func(s *Selector) error {
		if c == nil {
			return errors.New("nil cache")
		}
		s.cache = c
		return nil
	}
}

// WithLogger sets the logger used for debug output. The default discards
// everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Selector) error {
		if l == nil {
			return errors.New("nil logger")
		}
		s.logger = l
		return nil
	}
}

// WithPlainValues decodes objects into map[string]any and arrays into []any
// when the target is *any. Key order is lost.
func WithPlainValues() Option {
	return func(s *Selector) error {
		s.plain = true
		return nil
	}
}

// Group groups multiple options into one, e.g.:
//
//	defaults := jselect.Group(jselect.WithCache(cache), jselect.WithLogger(logger))
//	s, err := jselect.NewSelector(defaults, jselect.WithPattern("users[name]"))
func Group(opts ...Option) Option {
	return func(s *Selector) error { return Apply(s, opts...) }
}

// Apply applies one or more options to a selector. Stops at the first error
// and returns it.
func Apply(s *Selector, opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}
