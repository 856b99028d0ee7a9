// Package shapes mutates shape documents using grammar-based overrides:
// texture replacement and per-face attribute add/remove rules, matched to
// target files by applyTo wildcard patterns. Entries inherit from each
// other via copyFrom with the same merge rule templates use.
package shapes

import (
	"fmt"

	"github.com/hyomoto/vsgen/internal/grammar"
	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/statics"
	"github.com/hyomoto/vsgen/internal/tree"
)

// FaceRule mutates faces whose texture reference matches one of Keys.
type FaceRule struct {
	Keys   []string
	Add    map[string]any
	Remove []string
}

// Rule is one shape grammar entry, flattened and validated.
type Rule struct {
	Name     string
	ApplyTo  []string
	Textures map[string]any
	Faces    []FaceRule
}

// EntryError records a structural failure of one grammar entry.
type EntryError struct {
	Entry string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("shape grammar %q: %v", e.Entry, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// ParseRules loads a shape grammar document: an ordered list of entries,
// optionally including one {"static": {...}} entry supplying a shared
// lookup table. Broken entries are collected and skipped; the document
// itself only fails when it is not a list.
func ParseRules(doc any) ([]*Rule, statics.Table, []*EntryError, error) {
	raw, ok := doc.([]any)
	if !ok {
		return nil, nil, nil, fmt.Errorf("shape grammar document must be a list, got %T", doc)
	}

	table := statics.Table{}
	seenStatic := false
	entries := make([]map[string]any, 0, len(raw))
	for i, r := range raw {
		m, isMap := r.(map[string]any)
		if !isMap {
			return nil, nil, nil, fmt.Errorf("shape grammar entry %d must be an object", i)
		}
		if static, isStatic := m["static"].(map[string]any); isStatic {
			if seenStatic {
				log.Warn(log.CatShape, "multiple static entries, only the first is used")
				continue
			}
			seenStatic = true
			table = statics.Table(static)
			continue
		}
		entries = append(entries, m)
	}

	flattened, err := flattenEntries(entries)
	if err != nil {
		return nil, nil, nil, err
	}

	var rules []*Rule
	var failed []*EntryError
	for i, entry := range flattened {
		rule, err := parseRule(entry)
		if err != nil {
			failed = append(failed, &EntryError{Entry: entryName(entry, i), Err: err})
			log.ErrorErr(log.CatShape, "shape grammar entry failed", err, "entry", entryName(entry, i))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, table, failed, nil
}

// flattenEntries resolves copyFrom between entries, referenced by "name",
// by an applyTo pattern, or by list index.
func flattenEntries(entries []map[string]any) ([]map[string]any, error) {
	indexByName := make(map[string]int)
	for i, entry := range entries {
		indexByName[entryName(entry, i)] = i
	}

	resolved := make([]map[string]any, len(entries))
	var resolve func(i int, visiting map[int]bool) (map[string]any, error)
	resolve = func(i int, visiting map[int]bool) (map[string]any, error) {
		if resolved[i] != nil {
			return resolved[i], nil
		}
		if visiting[i] {
			return nil, &grammar.CycleError{Kind: "grammar", Name: entryName(entries[i], i)}
		}

		entry := entries[i]
		ref, hasParent := entry["copyFrom"]
		if !hasParent {
			resolved[i] = entry
			return entry, nil
		}

		parentIdx, err := lookupEntry(ref, indexByName, len(entries))
		if err != nil {
			return nil, fmt.Errorf("shape grammar %s: %w", entryName(entry, i), err)
		}

		visiting[i] = true
		parent, err := resolve(parentIdx, visiting)
		if err != nil {
			return nil, err
		}
		delete(visiting, i)

		child := make(map[string]any, len(entry))
		for k, v := range entry {
			if k != "copyFrom" {
				child[k] = v
			}
		}
		resolved[i] = tree.Merge(parent, child)
		return resolved[i], nil
	}

	for i := range entries {
		if _, err := resolve(i, map[int]bool{}); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func lookupEntry(ref any, byName map[string]int, count int) (int, error) {
	switch r := ref.(type) {
	case string:
		if i, ok := byName[r]; ok {
			return i, nil
		}
		return 0, fmt.Errorf("copyFrom refers to unknown entry %q", r)
	case int:
		if r >= 0 && r < count {
			return r, nil
		}
	case float64:
		if i := int(r); float64(i) == r && i >= 0 && i < count {
			return i, nil
		}
	}
	return 0, fmt.Errorf("copyFrom refers to unknown entry %v", ref)
}

// entryName identifies an entry for references and error reports: its
// explicit name, else its first applyTo pattern, else its list position.
func entryName(entry map[string]any, i int) string {
	if name, ok := entry["name"].(string); ok {
		return name
	}
	switch a := entry["applyTo"].(type) {
	case string:
		return a
	case []any:
		if len(a) > 0 {
			if s, ok := a[0].(string); ok {
				return s
			}
		}
	}
	return fmt.Sprintf("#%d", i)
}

// parseRule validates one flattened entry.
func parseRule(entry map[string]any) (*Rule, error) {
	rule := &Rule{Name: entryName(entry, 0)}

	switch a := entry["applyTo"].(type) {
	case string:
		rule.ApplyTo = []string{a}
	case []any:
		for _, p := range a {
			s, ok := p.(string)
			if !ok {
				return nil, &grammar.SchemaError{Field: "applyTo"}
			}
			rule.ApplyTo = append(rule.ApplyTo, s)
		}
	default:
		return nil, &grammar.SchemaError{Field: "applyTo"}
	}
	if err := grammar.ValidatePatterns(rule.ApplyTo); err != nil {
		return nil, err
	}

	if textures, ok := entry["textures"].(map[string]any); ok {
		rule.Textures = textures
	}

	elements, ok := entry["elements"].(map[string]any)
	if !ok {
		return rule, nil
	}
	rawFaces, ok := elements["faces"].([]any)
	if !ok {
		return rule, nil
	}
	for _, rawFace := range rawFaces {
		faceRule, err := parseFaceRule(rawFace)
		if err != nil {
			return nil, err
		}
		rule.Faces = append(rule.Faces, faceRule)
	}
	return rule, nil
}

func parseFaceRule(raw any) (FaceRule, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return FaceRule{}, &grammar.SchemaError{Field: "elements.faces"}
	}

	var rule FaceRule
	switch keys := m["keys"].(type) {
	case string:
		rule.Keys = []string{keys}
	case []any:
		for _, k := range keys {
			s, isStr := k.(string)
			if !isStr {
				return FaceRule{}, &grammar.SchemaError{Field: "elements.faces.keys"}
			}
			rule.Keys = append(rule.Keys, s)
		}
	default:
		return FaceRule{}, &grammar.SchemaError{Field: "elements.faces.keys"}
	}
	if err := grammar.ValidatePatterns(rule.Keys); err != nil {
		return FaceRule{}, err
	}

	if add, present := m["add"].(map[string]any); present {
		rule.Add = add
	}
	if rawRemove, present := m["remove"].([]any); present {
		for _, r := range rawRemove {
			s, isStr := r.(string)
			if !isStr {
				return FaceRule{}, &grammar.SchemaError{Field: "elements.faces.remove"}
			}
			rule.Remove = append(rule.Remove, s)
		}
	}
	return rule, nil
}

// Matches reports whether a target filename falls under this rule.
func (r *Rule) Matches(filename string) bool {
	ok, err := grammar.Accepts(filename, r.ApplyTo, nil)
	if err != nil {
		return false
	}
	return ok
}

// Apply mutates a working copy of a shape document. Texture overrides only
// replace keys the shape already declares; face rules add and remove
// attributes on every face whose texture reference matches. String values
// from the grammar pass through placeholder substitution against the static
// table's scalar entries before landing in the shape.
func (r *Rule) Apply(shape map[string]any, table statics.Table) (map[string]any, bool) {
	out := tree.Clone(shape).(map[string]any)
	binding := scalarBinding(table)
	changed := false

	if textures, ok := out["textures"].(map[string]any); ok {
		for key, value := range r.Textures {
			if _, present := textures[key]; present {
				textures[key] = grammar.Apply(value, binding)
				changed = true
			}
		}
	}

	if elements, ok := out["elements"].([]any); ok && len(r.Faces) > 0 {
		if r.applyElements(elements, binding) {
			changed = true
		}
	}

	return out, changed
}

// applyElements walks elements recursively, visiting child elements the way
// exported models nest them.
func (r *Rule) applyElements(elements []any, binding map[string]any) bool {
	changed := false
	for _, rawElement := range elements {
		element, ok := rawElement.(map[string]any)
		if !ok {
			continue
		}
		if faces, hasFaces := element["faces"].(map[string]any); hasFaces {
			for faceKey, rawFace := range faces {
				face, isMap := rawFace.(map[string]any)
				if !isMap {
					continue
				}
				texture, _ := face["texture"].(string)
				for _, rule := range r.Faces {
					ok, err := grammar.Accepts(texture, rule.Keys, nil)
					if err != nil || !ok {
						continue
					}
					for _, remove := range rule.Remove {
						tree.Delete(face, remove)
					}
					if len(rule.Add) > 0 {
						merged := tree.Merge(face, grammar.Apply(rule.Add, binding).(map[string]any))
						faces[faceKey] = merged
						face = merged
					}
					changed = true
				}
			}
		}
		if children, hasChildren := element["children"].([]any); hasChildren {
			if r.applyElements(children, binding) {
				changed = true
			}
		}
	}
	return changed
}

// scalarBinding exposes the static table's scalar entries as a substitution
// binding for %name% tokens in grammar-supplied values.
func scalarBinding(table statics.Table) map[string]any {
	binding := make(map[string]any, len(table))
	for name, value := range table {
		switch value.(type) {
		case string, bool, int, int64, float64:
			binding[name] = value
		}
	}
	return binding
}
