package jselect

import (
	"io"

	"github.com/go-json-experiment/json"
	"go.uber.org/zap"
)

// Selector decodes JSON documents keeping only the values its pattern
// selects. A Selector holds no per-parse state and is safe for concurrent
// use.
type Selector struct {
	text    string
	pattern *Pattern
	cache   *Cache
	logger  *zap.Logger
	plain   bool
}

// NewSelector constructs a selector and applies the provided options. Without
// a pattern option the selector keeps everything.
func NewSelector(opts ...Option) (*Selector, error) {
	s := &Selector{logger: zap.NewNop()}
	if err := Apply(s, opts...); err != nil {
		return nil, err
	}
	if s.pattern == nil && s.text != "" {
		p, err := s.compile(s.text)
		if err != nil {
			return nil, err
		}
		s.pattern = p
	}
	return s, nil
}

func (s *Selector) compile(text string) (*Pattern, error) {
	if s.cache != nil {
		return s.cache.Compile(text)
	}
	return Compile(text)
}

// Pattern returns the compiled pattern, or nil when the selector keeps
// everything.
func (s *Selector) Pattern() *Pattern { return s.pattern }

func (s *Selector) patternText() string {
	if s.pattern == nil {
		return ""
	}
	return s.pattern.String()
}

// Select decodes data and returns the selected value. Objects are returned
// as Document and arrays as Array, or as map[string]any and []any with
// WithPlainValues.
func (s *Selector) Select(data []byte) (any, error) {
	var out any
	if err := json.Unmarshal(data, &out, json.WithUnmarshalers(s.Unmarshalers())); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectReader is like Select but reads the document from r.
func (s *Selector) SelectReader(r io.Reader) (any, error) {
	var out any
	if err := json.UnmarshalRead(r, &out, json.WithUnmarshalers(s.Unmarshalers())); err != nil {
		return nil, err
	}
	return out, nil
}

// SelectInto decodes data into v. The pattern applies to every *any,
// *Document, *Array, *map[string]any and *[]any reached while decoding v;
// other Go types decode as usual.
func (s *Selector) SelectInto(data []byte, v any) error {
	return json.Unmarshal(data, v, json.WithUnmarshalers(s.Unmarshalers()))
}

// Select decodes data keeping the values selected by pattern. Patterns are
// compiled once through DefaultCache.
func Select(data []byte, pattern string) (any, error) {
	s, err := NewSelector(WithCache(DefaultCache), WithPattern(pattern))
	if err != nil {
		return nil, err
	}
	return s.Select(data)
}
