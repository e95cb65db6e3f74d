// Package jselect decodes only the parts of a JSON document named by a compact
// path pattern such as "user.details.age", "users[name]" or "name|city".
// Discarded branches are tokenized and skipped without building values.
package jselect

import (
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Document represents a JSON object as an ordered collection of key-value
// pairs. Each entry in the document is represented by an Entry.
type Document []Entry

// Array represents a JSON array, defined as a slice of values of any type.
type Array []any

// Entry represents a single member of a document.
type Entry struct {
	Key   string
	Value any
}

// Short aliases.
type (
	D = Document
	E = Entry
	A = Array
)

// Get returns the value of the first entry named key.
func (d Document) Get(key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// MarshalJSONTo encodes the document as a JSON object in entry order.
func (d Document) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, e := range d {
		if err := enc.WriteToken(jsontext.String(e.Key)); err != nil {
			return err
		}
		if err := json.MarshalEncode(enc, e.Value); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// MarshalJSONTo encodes the array as a JSON array. A nil array encodes as [].
func (a Array) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, v := range a {
		if err := json.MarshalEncode(enc, v); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndArray)
}
