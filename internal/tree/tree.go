// Package tree provides operations on JSON-like trees: deep copy, recursive
// merge, and dotted-path get/set/delete.
//
// Trees are the values produced by the json and yaml decoders:
// map[string]any for objects, []any for sequences, and scalars for leaves.
// Traversal is explicit via type switches; no reflection beyond that.
package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrPathNotFound reports that an intermediate segment of a dotted path does
// not resolve to a container. Returned by Set; Delete never returns it.
var ErrPathNotFound = errors.New("path not found")

// Clone returns a deep copy of a JSON-like tree. Scalars are returned as-is.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = Clone(child)
		}
		return out
	default:
		return v
	}
}

// Merge overlays child onto parent and returns a new map; neither input is
// mutated. Keys where both sides hold maps merge recursively (child keys
// override or extend the parent's); any other value replaces wholesale.
func Merge(parent, child map[string]any) map[string]any {
	out := make(map[string]any, len(parent)+len(child))
	for k, pv := range parent {
		out[k] = Clone(pv)
	}
	for k, cv := range child {
		pm, pok := out[k].(map[string]any)
		cm, cok := cv.(map[string]any)
		if pok && cok {
			out[k] = Merge(pm, cm)
			continue
		}
		out[k] = Clone(cv)
	}
	return out
}

// Get resolves a dotted path against a tree. The boolean reports whether
// every segment resolved.
func Get(root any, path string) (any, bool) {
	cur := root
	for _, seg := range strings.Split(path, ".") {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Set overwrites or creates the final segment of path. Every segment except
// the last must already resolve to a container; otherwise ErrPathNotFound is
// returned. The tree is mutated in place, so callers pass their own copy.
func Set(root any, path string, value any) error {
	segs := strings.Split(path, ".")
	parent, err := walkToParent(root, path, segs)
	if err != nil {
		return err
	}
	last := segs[len(segs)-1]
	switch container := parent.(type) {
	case map[string]any:
		container[last] = value
		return nil
	case []any:
		for _, elem := range container {
			if m, ok := elem.(map[string]any); ok {
				if _, exists := m[last]; exists {
					m[last] = value
					return nil
				}
			}
		}
		return fmt.Errorf("%w: %q has no element keyed %q", ErrPathNotFound, path, last)
	default:
		return fmt.Errorf("%w: %q: segment before %q is not a container", ErrPathNotFound, path, last)
	}
}

// Delete removes the final segment of path. Missing paths, including missing
// intermediate segments, are a no-op: deletion is idempotent.
func Delete(root any, path string) {
	segs := strings.Split(path, ".")
	parent, err := walkToParent(root, path, segs)
	if err != nil {
		return
	}
	last := segs[len(segs)-1]
	switch container := parent.(type) {
	case map[string]any:
		delete(container, last)
	case []any:
		for _, elem := range container {
			if m, ok := elem.(map[string]any); ok {
				delete(m, last)
			}
		}
	}
}

// walkToParent resolves every segment except the last and returns the
// containing node.
func walkToParent(root any, path string, segs []string) (any, error) {
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := step(cur, seg)
		if !ok {
			return nil, fmt.Errorf("%w: %q (missing segment %q)", ErrPathNotFound, path, seg)
		}
		cur = next
	}
	return cur, nil
}

// step descends one segment. Maps resolve by key. Sequences resolve through
// the first element that is a map carrying the segment as a key, the way
// recipe ingredient slots are addressed ("ingredients.B.type").
func step(cur any, seg string) (any, bool) {
	switch container := cur.(type) {
	case map[string]any:
		v, ok := container[seg]
		return v, ok
	case []any:
		for _, elem := range container {
			if m, ok := elem.(map[string]any); ok {
				if v, exists := m[seg]; exists {
					return v, true
				}
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// CompactJSON serializes a tree in compact form without HTML escaping,
// matching the fragment style embedded in rendered records.
func CompactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
