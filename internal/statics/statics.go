// Package statics implements the shared lookup table referenced from grammar
// documents via "@name" indirection.
package statics

import (
	"fmt"
	"strings"
)

// Table is the read-only static lookup shared by every grammar in a run.
// Values are JSON-like: scalar, list, or list of tuples for grouped keys.
type Table map[string]any

// Reserved field names a static table may carry as grammar-level defaults.
const (
	FieldCode   = "code"
	FieldFormat = "format"
	FieldAllow  = "allow"
	FieldSkip   = "skip"
)

// UnknownReferenceError reports an "@name" indirection with no table entry.
type UnknownReferenceError struct {
	Name string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown static reference @%s", e.Name)
}

// refName returns the indirection target if s uses the "@name" syntax.
func refName(s string) (string, bool) {
	if strings.HasPrefix(s, "@") && len(s) > 1 {
		return s[1:], true
	}
	return "", false
}

// Values resolves a key's value source into a concrete list. A bare "@name"
// string yields the table's list for name; inside a literal list, "@name"
// elements splice the referenced list in place. Unknown references fail.
func (t Table) Values(source any) ([]any, error) {
	switch src := source.(type) {
	case string:
		name, ok := refName(src)
		if !ok {
			return []any{src}, nil
		}
		entry, found := t[name]
		if !found {
			return nil, &UnknownReferenceError{Name: name}
		}
		if list, isList := entry.([]any); isList {
			return list, nil
		}
		return []any{entry}, nil
	case []any:
		out := make([]any, 0, len(src))
		for _, elem := range src {
			s, isStr := elem.(string)
			if !isStr {
				out = append(out, elem)
				continue
			}
			name, isRef := refName(s)
			if !isRef {
				out = append(out, elem)
				continue
			}
			entry, found := t[name]
			if !found {
				return nil, &UnknownReferenceError{Name: name}
			}
			if list, isList := entry.([]any); isList {
				out = append(out, list...)
			} else {
				out = append(out, entry)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value source must be a string or list, got %T", source)
	}
}

// Scalar resolves an "@name" indirection to a single string, used for the
// code/format defaults. Lists resolve to their first element. Unknown
// references and plain strings pass through verbatim.
func (t Table) Scalar(s string) string {
	name, ok := refName(s)
	if !ok {
		return s
	}
	entry, found := t[name]
	if !found {
		return s
	}
	if list, isList := entry.([]any); isList {
		if len(list) == 0 {
			return s
		}
		if first, isStr := list[0].(string); isStr {
			return first
		}
		return s
	}
	if str, isStr := entry.(string); isStr {
		return str
	}
	return s
}

// StringList resolves a pattern list (allow/skip), splicing "@name" entries.
// Unknown references are tolerated and dropped, matching the permissive
// handling of the reserved filter defaults.
func (t Table) StringList(source []any) []string {
	out := make([]string, 0, len(source))
	for _, elem := range source {
		s, isStr := elem.(string)
		if !isStr {
			continue
		}
		name, isRef := refName(s)
		if !isRef {
			out = append(out, s)
			continue
		}
		entry, found := t[name]
		if !found {
			continue
		}
		switch e := entry.(type) {
		case []any:
			for _, item := range e {
				if str, ok := item.(string); ok {
					out = append(out, str)
				}
			}
		case string:
			out = append(out, e)
		}
	}
	return out
}

// String looks up a reserved string field ("code", "format"), reporting
// whether it is present.
func (t Table) String(field string) (string, bool) {
	v, ok := t[field]
	if !ok {
		return "", false
	}
	s, isStr := v.(string)
	return s, isStr
}

// List looks up a reserved list field ("allow", "skip").
func (t Table) List(field string) ([]any, bool) {
	v, ok := t[field]
	if !ok {
		return nil, false
	}
	l, isList := v.([]any)
	return l, isList
}
