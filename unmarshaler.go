package jselect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.uber.org/zap"
)

// Unmarshalers returns unmarshalers that apply p to every value decoded into:
//   - *any            -> objects as Document, arrays as Array
//   - *Document       -> ordered object decoding
//   - *Array          -> array decoding
//   - *map[string]any -> plain object decoding
//   - *[]any          -> plain array decoding
//
// A nil pattern selects everything.
func Unmarshalers(p *Pattern) *json.Unmarshalers {
	return (&Selector{pattern: p, logger: zap.NewNop()}).Unmarshalers()
}

// Unmarshalers returns the selector's unmarshalers. See the package level
// Unmarshalers for the supported targets.
func (s *Selector) Unmarshalers() *json.Unmarshalers {
	return json.JoinUnmarshalers(
		s.unmarshalValue(),
		s.unmarshalDocument(),
		s.unmarshalArray(),
		s.unmarshalMap(),
		s.unmarshalSlice(),
	)
}

func (s *Selector) unmarshalValue() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *any) error {
		out, err := s.decode(dec, s.plain)
		if err != nil {
			return err
		}
		*v = out
		return nil
	})
}

func (s *Selector) unmarshalDocument() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Document) error {
		if dec.PeekKind() != '{' {
			return json.SkipFunc
		}
		out, err := s.decode(dec, false)
		if err != nil {
			return err
		}
		*v = out.(Document)
		return nil
	})
}

func (s *Selector) unmarshalArray() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *Array) error {
		if dec.PeekKind() != '[' {
			return json.SkipFunc
		}
		out, err := s.decode(dec, false)
		if err != nil {
			return err
		}
		*v = out.(Array)
		return nil
	})
}

func (s *Selector) unmarshalMap() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *map[string]any) error {
		if dec.PeekKind() != '{' {
			return json.SkipFunc
		}
		out, err := s.decode(dec, true)
		if err != nil {
			return err
		}
		*v = out.(map[string]any)
		return nil
	})
}

func (s *Selector) unmarshalSlice() *json.Unmarshalers {
	return json.UnmarshalFromFunc(func(dec *jsontext.Decoder, v *[]any) error {
		if dec.PeekKind() != '[' {
			return json.SkipFunc
		}
		out, err := s.decode(dec, true)
		if err != nil {
			return err
		}
		*v = out.([]any)
		return nil
	})
}

// decode runs one parse of the next value in dec with a fresh cursor.
func (s *Selector) decode(dec *jsontext.Decoder, plain bool) (any, error) {
	st := &decodeState{
		dec:    dec,
		m:      newMatcher(s.pattern, s.logger),
		plain:  plain,
		logger: s.logger,
	}
	out, err := st.value()
	if err != nil {
		return nil, err
	}
	if ce := s.logger.Check(zap.DebugLevel, "value selected"); ce != nil {
		ce.Write(zap.String("pattern", s.patternText()), zap.Int("skipped", st.skipped))
	}
	return out, nil
}

type decodeState struct {
	dec     *jsontext.Decoder
	m       *Matcher
	plain   bool
	logger  *zap.Logger
	skipped int
}

func (st *decodeState) value() (any, error) {
	switch st.dec.PeekKind() {
	case '{':
		return st.object()
	case '[':
		return st.array()
	default:
		return st.scalar()
	}
}

// object decodes a JSON object, keeping the members whose key passes the
// matcher. Once the matcher is terminal every member is kept without
// consulting it.
func (st *decodeState) object() (any, error) {
	if _, err := st.dec.ReadToken(); err != nil { // '{'
		return nil, fmt.Errorf("read object open: %w", err)
	}
	filter := !st.m.IsTerminal()

	var (
		doc Document
		obj map[string]any
	)
	if st.plain {
		obj = make(map[string]any)
	} else {
		doc = Document{}
	}

	for st.dec.PeekKind() != '}' {
		tok, err := st.dec.ReadToken()
		if err != nil {
			return nil, fmt.Errorf("read object key: %w", err)
		}
		key := tok.String()

		if filter && !st.m.TestKey(key) {
			st.m.Retreat()
			if err := st.skip(); err != nil {
				return nil, fmt.Errorf("skip value for key %q: %w", key, err)
			}
			continue
		}

		v, err := st.value()
		if filter {
			st.m.Retreat()
		}
		if err != nil {
			return nil, fmt.Errorf("read value for key %q: %w", key, err)
		}
		if st.plain {
			obj[key] = v
		} else {
			doc = append(doc, Entry{Key: key, Value: v})
		}
	}
	if _, err := st.dec.ReadToken(); err != nil { // '}'
		return nil, fmt.Errorf("read object close: %w", err)
	}

	if st.plain {
		return obj, nil
	}
	return doc, nil
}

// array decodes a JSON array, keeping the elements that pass the matcher.
func (st *decodeState) array() (any, error) {
	if _, err := st.dec.ReadToken(); err != nil { // '['
		return nil, fmt.Errorf("read array open: %w", err)
	}
	filter := !st.m.IsTerminal()

	elems := make([]any, 0)
	for i := 0; st.dec.PeekKind() != ']'; i++ {
		if filter && !st.m.TestIndex() {
			st.m.Retreat()
			if err := st.skip(); err != nil {
				return nil, fmt.Errorf("skip array element %d: %w", i, err)
			}
			continue
		}

		v, err := st.value()
		if filter {
			st.m.Retreat()
		}
		if err != nil {
			return nil, fmt.Errorf("read array element %d: %w", i, err)
		}
		elems = append(elems, v)
	}
	if _, err := st.dec.ReadToken(); err != nil { // ']'
		return nil, fmt.Errorf("read array close: %w", err)
	}

	if st.plain {
		return elems, nil
	}
	return Array(elems), nil
}

func (st *decodeState) scalar() (any, error) {
	tok, err := st.dec.ReadToken()
	if err != nil {
		return nil, fmt.Errorf("read value: %w", err)
	}
	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '0':
		return number(tok.String()), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok.Kind())
}

// maxExactInt is the largest magnitude float64 holds without rounding.
const maxExactInt = 1 << 53

// number converts a JSON number literal. Numbers decode as float64 unless
// the literal is an integer float64 would round: those become int64 or
// uint64. Integers beyond uint64 and numbers out of float64 range are kept
// as the literal jsontext.Value.
func number(lit string) any {
	if strings.ContainsAny(lit, ".eE") {
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return f
		}
		return jsontext.Value(lit)
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		if -maxExactInt <= n && n <= maxExactInt {
			return float64(n)
		}
		return n
	}
	if n, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return n
	}
	return jsontext.Value(lit)
}

// skip consumes the next value without building it.
func (st *decodeState) skip() error {
	if ce := st.logger.Check(zap.DebugLevel, "skipping value"); ce != nil {
		ce.Write(zap.String("path", string(st.dec.StackPointer())))
	}
	st.skipped++
	return st.dec.SkipValue()
}
