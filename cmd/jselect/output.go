package main

import (
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-yaml"

	"github.com/calumari/jselect"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type writeFunc func(w io.Writer, v any) error

func newWriter(format, indent string) (writeFunc, error) {
	switch format {
	case formatJSON:
		return func(w io.Writer, v any) error { return writeJSON(w, v, indent) }, nil
	case formatYAML:
		return writeYAML, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, formatJSON, formatYAML)
}

func writeJSON(w io.Writer, v any, indent string) error {
	opts := []json.Options{json.Deterministic(true)}
	if indent != "" {
		opts = append(opts, jsontext.Multiline(true), jsontext.WithIndent(indent))
	}
	b, err := json.Marshal(v, opts...)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// writeYAML writes v as one document of a YAML stream.
func writeYAML(w io.Writer, v any) error {
	b, err := yaml.Marshal(toYAML(v))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// toYAML converts ordered documents into yaml.MapSlice so key order survives.
func toYAML(v any) any {
	switch val := v.(type) {
	case jselect.Document:
		out := make(yaml.MapSlice, 0, len(val))
		for _, e := range val {
			out = append(out, yaml.MapItem{Key: e.Key, Value: toYAML(e.Value)})
		}
		return out
	case jsontext.Value:
		return string(val)
	case jselect.Array:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toYAML(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = toYAML(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = toYAML(e)
		}
		return out
	}
	return v
}
