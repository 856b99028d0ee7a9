// Package docio loads grammar and asset documents. The default mode parses
// with yaml.v3, which accepts strict JSON plus the relaxed forms authors
// lean on (comments, unquoted keys); strict mode insists on encoding/json.
package docio

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a document from disk.
func Load(path string, strict bool) (any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configured input scanning
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data, strict)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document from bytes.
func Parse(data []byte, strict bool) (any, error) {
	if strict {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return normalize(doc), nil
}

// normalize rewrites map[any]any nodes to map[string]any. yaml.v3 produces
// the former when a mapping mixes key styles; every consumer downstream
// expects string keys.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = normalize(child)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprintf("%v", k)] = normalize(child)
		}
		return out
	case []any:
		for i, child := range val {
			val[i] = normalize(child)
		}
		return val
	default:
		return v
	}
}
