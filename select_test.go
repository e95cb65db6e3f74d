package jselect

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/jsonpath"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    string
	}{
		{
			name:    "specific key",
			pattern: "name",
			input:   `{"name":"Alice","age":25}`,
			want:    `{"name":"Alice"}`,
		},
		{
			name:    "nested keys",
			pattern: "user.details.age",
			input:   `{"user":{"name":"Bob","details":{"age":30,"city":"X"}}}`,
			want:    `{"user":{"details":{"age":30}}}`,
		},
		{
			name:    "absent key",
			pattern: "address",
			input:   `{"name":"Charlie","age":28}`,
			want:    `{}`,
		},
		{
			name:    "alternation",
			pattern: "name|city",
			input:   `{"name":"Diana","age":22,"city":"Z","occupation":"W"}`,
			want:    `{"name":"Diana","city":"Z"}`,
		},
		{
			name:    "list of objects",
			pattern: "[name]",
			input:   `[{"name":"Eve","age":29},{"name":"Frank","age":33}]`,
			want:    `[{"name":"Eve"},{"name":"Frank"}]`,
		},
		{
			name:    "nested list",
			pattern: "users[name]",
			input:   `{"users":[{"name":"Grace","age":27},{"name":"Heidi","age":31}]}`,
			want:    `{"users":[{"name":"Grace"},{"name":"Heidi"}]}`,
		},
		{
			name:    "deeply nested list",
			pattern: "company.employees[name]",
			input:   `{"company":{"employees":[{"name":"Ivan","role":"Developer"},{"name":"Judy","role":"Manager"}]}}`,
			want:    `{"company":{"employees":[{"name":"Ivan"},{"name":"Judy"}]}}`,
		},
		{
			name:    "empty pattern returns the document",
			pattern: "",
			input:   `{"name":"Test","age":30,"courses":["Math","Science"],"address":{"city":"New York","zip":"10001"},"scores":[95.5,88,76.5]}`,
			want:    `{"name":"Test","age":30,"courses":["Math","Science"],"address":{"city":"New York","zip":"10001"},"scores":[95.5,88,76.5]}`,
		},
		{
			name:    "dot before index",
			pattern: "users.[]",
			input:   `{"users":[{"name":"a"},2],"other":1}`,
			want:    `{"users":[{"name":"a"},2]}`,
		},
		{
			name:    "key directly after index",
			pattern: "users[]name",
			input:   `{"users":[{"name":"Grace","age":27}]}`,
			want:    `{"users":[{"name":"Grace"}]}`,
		},
		{
			name:    "selected leaf keeps nested structure",
			pattern: "user.details",
			input:   `{"user":{"details":{"tags":["a","b"],"geo":{"lat":1}}}}`,
			want:    `{"user":{"details":{"tags":["a","b"],"geo":{"lat":1}}}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Select([]byte(tt.input), tt.pattern)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, marshal(t, out))
		})
	}
}

func TestSelect_PreservesOrder(t *testing.T) {
	out, err := Select([]byte(`{"z":1,"y":2,"x":3}`), "z|x")
	require.NoError(t, err)
	require.Equal(t, `{"z":1,"x":3}`, marshal(t, out))
}

func TestSelect_LargeNumbersUnchanged(t *testing.T) {
	input := `{"bigInt":12345678901234567890,"id":9007199254740993,"neg":-9223372036854775807,"huge":123456789012345678901234567890,"bigFloat":1.7976931348623157e+308,"small":25}`
	for _, pattern := range []string{"", "bigInt|id|neg|huge|bigFloat|small"} {
		out, err := Select([]byte(input), pattern)
		require.NoError(t, err)
		require.Equal(t, input, marshal(t, out))
	}
}

func TestSelect_SyntaxError(t *testing.T) {
	_, err := Select([]byte(`{}`), "a.")
	require.ErrorIs(t, err, ErrSyntax)
}

// Every node an equivalent JSONPath query reaches in the input must still be
// reachable in the selection.
func TestSelect_AgreesWithJSONPath(t *testing.T) {
	input := `{
		"store": {
			"book": [
				{"category": "reference", "author": "Nigel Rees", "price": 8.95},
				{"category": "fiction", "author": "Evelyn Waugh", "price": 12.99},
				{"category": "fiction", "author": "Herman Melville", "isbn": "0-553-21311-3", "price": 8.99}
			],
			"bicycle": {"color": "red", "price": 19.95}
		},
		"expensive": 10
	}`
	tests := []struct {
		pattern string
		query   string
	}{
		{"store.book[author]", "$.store.book[*].author"},
		{"store.book[isbn]", "$.store.book[*].isbn"},
		{"store.bicycle.color", "$.store.bicycle.color"},
		{"store.book[author|price]", "$.store.book[*]['author','price']"},
		{"expensive", "$.expensive"},
		{"store.*.price", "$.store.*.price"},
	}

	var doc any
	require.NoError(t, stdjson.Unmarshal([]byte(input), &doc))

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			s, err := NewSelector(WithPattern(tt.pattern), WithPlainValues())
			require.NoError(t, err)
			out, err := s.Select([]byte(input))
			require.NoError(t, err)

			path := jsonpath.MustParse(tt.query)
			want := path.Select(doc)
			require.NotEmpty(t, want)
			assert.ElementsMatch(t, []any(want), []any(path.Select(out)))
		})
	}
}

func TestSelector(t *testing.T) {
	t.Run("select reader", func(t *testing.T) {
		s, err := NewSelector(WithPattern("a"))
		require.NoError(t, err)
		out, err := s.SelectReader(strings.NewReader(`{"a":[1],"b":2}`))
		require.NoError(t, err)
		require.Equal(t, D{{Key: "a", Value: A{float64(1)}}}, out)
	})

	t.Run("select into map", func(t *testing.T) {
		s, err := NewSelector(WithPattern("a"))
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, s.SelectInto([]byte(`{"a":{"b":1},"c":2}`), &m))
		require.Equal(t, map[string]any{"a": map[string]any{"b": float64(1)}}, m)
	})

	t.Run("plain values", func(t *testing.T) {
		s, err := NewSelector(WithPattern("users[name]"), WithPlainValues())
		require.NoError(t, err)
		out, err := s.Select([]byte(`{"users":[{"name":"a","age":1}]}`))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"users": []any{map[string]any{"name": "a"}}}, out)
	})

	t.Run("no pattern selects everything", func(t *testing.T) {
		s, err := NewSelector()
		require.NoError(t, err)
		require.Nil(t, s.Pattern())
		out, err := s.Select([]byte(`{"a":1}`))
		require.NoError(t, err)
		require.Equal(t, D{{Key: "a", Value: float64(1)}}, out)
	})

	t.Run("invalid pattern fails construction", func(t *testing.T) {
		s, err := NewSelector(WithPattern("a..b"))
		require.ErrorIs(t, err, ErrSyntax)
		require.Nil(t, s)
	})

	t.Run("malformed document", func(t *testing.T) {
		s, err := NewSelector(WithPattern("a"))
		require.NoError(t, err)
		_, err = s.Select([]byte(`{"a":`))
		require.Error(t, err)
	})

	t.Run("logs skipped values at debug level", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s, err := NewSelector(WithPattern("a"), WithLogger(zap.New(core)))
		require.NoError(t, err)
		_, err = s.Select([]byte(`{"a":1,"b":2,"c":[3]}`))
		require.NoError(t, err)

		require.Equal(t, 2, logs.FilterMessage("skipping value").Len())
		selected := logs.FilterMessage("value selected").All()
		require.Len(t, selected, 1)
		require.Equal(t, "a", selected[0].ContextMap()["pattern"])
		require.Equal(t, int64(2), selected[0].ContextMap()["skipped"])
	})
}

func TestSelector_Concurrent(t *testing.T) {
	s, err := NewSelector(WithPattern("items[id]"))
	require.NoError(t, err)

	var g errgroup.Group
	results := make([]string, 32)
	for i := range results {
		g.Go(func() error {
			var buf bytes.Buffer
			fmt.Fprintf(&buf, `{"items":[{"id":%d,"x":true},{"id":%d}],"other":1}`, i, i+1)
			out, err := s.Select(buf.Bytes())
			if err != nil {
				return err
			}
			b, err := json.Marshal(out)
			if err != nil {
				return err
			}
			results[i] = string(b)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, got := range results {
		require.Equal(t, fmt.Sprintf(`{"items":[{"id":%d},{"id":%d}]}`, i, i+1), got)
	}
}
