// Package qargs holds the argument shapes accepted by remote Tripal jobs.
//
// Tripal hands job arguments to the PHP callback in the order they were
// stored, so both shapes here preserve insertion order on the wire.
package qargs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tells positional and keyed argument lists apart.
type Kind int

const (
	KindPositional Kind = iota
	KindKeyed
)

func (k Kind) String() string {
	switch k {
	case KindPositional:
		return "positional"
	case KindKeyed:
		return "keyed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Arguments is either a List or a Map.
type Arguments interface {
	Kind() Kind
	Len() int
}

// List is a positional argument list. Nil entries encode as JSON null.
type List []any

func (l List) Kind() Kind { return KindPositional }
func (l List) Len() int   { return len(l) }

// MarshalJSON encodes an empty list as [] rather than null.
func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]any(l))
}

// Pair is one keyed argument.
type Pair struct {
	Key   string
	Value any
}

// Map is a keyed argument list that keeps insertion order.
type Map []Pair

func (m Map) Kind() Kind { return KindKeyed }
func (m Map) Len() int   { return len(m) }

// MarshalJSON encodes the pairs as a JSON object in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding argument %q: %w", p.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Optional maps an unset string to nil so it is sent as null.
func Optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
