// Package grammar implements the template expansion engine: template
// inheritance, key permutation, placeholder substitution, record rendering,
// and wildcard filtering. Consumers (recipe generation, shape mutation) feed
// it parsed JSON-like documents and collect ordered output records.
package grammar

import (
	"strings"

	"github.com/hyomoto/vsgen/internal/statics"
)

// DefaultTemplate is used when a grammar entry names no template.
const DefaultTemplate = "default"

// KeyGroup is one declared key entry with its resolved value sequence.
// Grouped declarations ("type,blade") bind several names in lockstep, so
// every value is a tuple aligned with Names.
type KeyGroup struct {
	Names  []string
	Values [][]any
}

// PathValue pairs a dotted path with its replacement value.
type PathValue struct {
	Path  string
	Value any
}

// Grammar is one substitution unit: a template reference, ordered key
// declarations, optional structural mutations, and render/filter settings.
type Grammar struct {
	Name       string
	Template   string
	Keys       []KeyGroup
	Code       string
	Format     string
	Remove     []string
	Substitute []PathValue
	Allow      []string
	Skip       []string
}

// Parse validates a grammar definition and resolves every static reference
// in it. The definition must already have its copyFrom chain flattened by
// the document loader.
func Parse(def map[string]any, table statics.Table) (*Grammar, error) {
	g := &Grammar{Template: DefaultTemplate}

	if name, ok := def["name"].(string); ok {
		g.Name = name
	}
	if tpl, ok := def["template"].(string); ok {
		g.Template = tpl
	}

	rawKeys, ok := def["keys"].([]any)
	if !ok {
		return nil, &SchemaError{Field: "keys", Context: g.Name}
	}
	for _, rawKey := range rawKeys {
		group, err := parseKeyGroup(rawKey, table)
		if err != nil {
			return nil, err
		}
		g.Keys = append(g.Keys, group)
	}

	g.Code = scalarField(def, "code", table)
	g.Format = scalarField(def, "format", table)
	g.Allow = patternField(def, statics.FieldAllow, table)
	g.Skip = patternField(def, statics.FieldSkip, table)

	if rawRemove, present := def["remove"].([]any); present {
		for _, p := range rawRemove {
			path, isStr := p.(string)
			if !isStr {
				return nil, &SchemaError{Field: "remove", Context: g.Name}
			}
			g.Remove = append(g.Remove, path)
		}
	}
	if rawSub, present := def["substitute"].([]any); present {
		for _, entry := range rawSub {
			m, isMap := entry.(map[string]any)
			if !isMap {
				return nil, &SchemaError{Field: "substitute", Context: g.Name}
			}
			path, isStr := m["path"].(string)
			if !isStr {
				// The original toolkit named this field "key".
				if path, isStr = m["key"].(string); !isStr {
					return nil, &SchemaError{Field: "substitute.path", Context: g.Name}
				}
			}
			g.Substitute = append(g.Substitute, PathValue{Path: path, Value: m["value"]})
		}
	}

	return g, nil
}

// parseKeyGroup resolves one key entry: comma-joined names, static
// indirection, and tuple arity for grouped names.
func parseKeyGroup(rawKey any, table statics.Table) (KeyGroup, error) {
	entry, ok := rawKey.(map[string]any)
	if !ok {
		return KeyGroup{}, &SchemaError{Field: "keys"}
	}
	keyName, ok := entry["key"].(string)
	if !ok {
		return KeyGroup{}, &SchemaError{Field: "keys.key"}
	}
	source, present := entry["value"]
	if !present {
		return KeyGroup{}, &SchemaError{Field: "keys.value", Context: keyName}
	}

	names := strings.Split(keyName, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	resolved, err := table.Values(source)
	if err != nil {
		return KeyGroup{}, err
	}

	group := KeyGroup{Names: names}
	for _, value := range resolved {
		tuple, isTuple := value.([]any)
		if !isTuple {
			tuple = []any{value}
		}
		if len(tuple) != len(names) {
			return KeyGroup{}, &ArityError{Key: keyName, Want: len(names), Got: len(tuple)}
		}
		group.Values = append(group.Values, tuple)
	}
	return group, nil
}

// scalarField reads a string field, falling back to the static table's
// reserved default of the same name, then resolves "@name" indirection.
func scalarField(def map[string]any, field string, table statics.Table) string {
	if s, ok := def[field].(string); ok {
		return table.Scalar(s)
	}
	if s, ok := table.String(field); ok {
		return table.Scalar(s)
	}
	return ""
}

// patternField reads an allow/skip list with the same static fallback.
func patternField(def map[string]any, field string, table statics.Table) []string {
	if raw, ok := def[field].([]any); ok {
		return table.StringList(raw)
	}
	if raw, ok := table.List(field); ok {
		return table.StringList(raw)
	}
	return nil
}
