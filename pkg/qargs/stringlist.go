package qargs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

// StringList is a list of names or ids that callers may supply either as a
// native slice or as a JSON-encoded array. Parse JSON input at the boundary
// with ParseStringList; the rest of the code only sees the slice.
type StringList []string

// ParseStringList decodes a JSON array of strings or numbers. Numbers keep
// their literal text. Blank input yields an empty list.
func ParseStringList(raw string) (StringList, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StringList{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, qerr.Errorf(qerr.CodeInvalidArgument, "expected a JSON list, got %q: %v", raw, err)
	}
	if dec.More() {
		return nil, qerr.Errorf(qerr.CodeInvalidArgument, "trailing data after JSON list %q", raw)
	}

	out := make(StringList, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			return nil, qerr.Errorf(qerr.CodeInvalidArgument, "list item %d must be a string or number, got %T", i, item)
		}
	}
	return out, nil
}

// Join returns the items separated by single spaces.
func (l StringList) Join() string {
	return strings.Join(l, " ")
}

// Values returns a non-nil copy suitable for JSON encoding as an array.
func (l StringList) Values() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}

// Set implements pflag.Value. A value starting with "[" is parsed as a JSON
// list; anything else is split on commas. Repeated flags append.
func (l *StringList) Set(s string) error {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") {
		parsed, err := ParseStringList(trimmed)
		if err != nil {
			return err
		}
		*l = append(*l, parsed...)
		return nil
	}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

// String implements pflag.Value.
func (l *StringList) String() string {
	if l == nil || len(*l) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode([]string(*l)); err != nil {
		return fmt.Sprint([]string(*l))
	}
	return strings.TrimSpace(buf.String())
}

// Type implements pflag.Value.
func (l *StringList) Type() string {
	return "strings"
}
