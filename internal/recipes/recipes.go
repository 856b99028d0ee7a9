// Package recipes expands recipe grammar documents into fully realized
// recipe records. A document declares named templates, a static lookup
// table, an output path, and a list of grammar entries; each entry is
// expanded independently so a broken entry never takes its siblings down.
package recipes

import (
	"fmt"
	"strings"

	"github.com/hyomoto/vsgen/internal/grammar"
	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/statics"
	"github.com/hyomoto/vsgen/internal/tree"
)

// Document is a parsed recipe grammar document.
type Document struct {
	Templates *grammar.Store
	Grammars  []map[string]any
	Statics   statics.Table
	Output    string
}

// EntryError records a structural failure of one grammar entry.
type EntryError struct {
	Grammar string
	Err     error
}

func (e *EntryError) Error() string {
	if e.Grammar != "" {
		return fmt.Sprintf("grammar %q: %v", e.Grammar, e.Err)
	}
	return e.Err.Error()
}

func (e *EntryError) Unwrap() error { return e.Err }

// Expansion is the ordered result of expanding a whole document.
type Expansion struct {
	Records []grammar.Record
	Failed  []*EntryError // entries that produced nothing
	Skipped []error       // individual permutations dropped mid-entry
}

// ParseDocument validates a document's top-level structure and flattens
// grammar-entry inheritance. Failures here abort the whole document.
func ParseDocument(doc any) (*Document, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("recipe grammar document must be an object, got %T", doc)
	}

	rawTemplates, ok := root["template"].(map[string]any)
	if !ok {
		return nil, &grammar.SchemaError{Field: "template", Context: "document"}
	}
	store, err := grammar.NewStore(rawTemplates)
	if err != nil {
		return nil, err
	}

	rawGrammars, ok := root["grammars"].([]any)
	if !ok {
		return nil, &grammar.SchemaError{Field: "grammars", Context: "document"}
	}

	output, ok := root["output"].(string)
	if !ok || output == "" {
		return nil, &grammar.SchemaError{Field: "output", Context: "document"}
	}

	table := statics.Table{}
	if rawStatic, present := root["static"].(map[string]any); present {
		table = statics.Table(rawStatic)
	}

	entries, err := flattenEntries(rawGrammars)
	if err != nil {
		return nil, err
	}

	return &Document{
		Templates: store,
		Grammars:  entries,
		Statics:   table,
		Output:    output,
	}, nil
}

// flattenEntries resolves copyFrom references between grammar entries. An
// entry may clone another by list index or by its "name" field; the clone's
// own fields merge over the source with the same rule templates use.
func flattenEntries(raw []any) ([]map[string]any, error) {
	entries := make([]map[string]any, len(raw))
	indexByName := make(map[string]int)
	for i, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, &grammar.SchemaError{Field: fmt.Sprintf("grammars[%d]", i)}
		}
		entries[i] = m
		if name, named := m["name"].(string); named {
			if _, dup := indexByName[name]; dup {
				return nil, fmt.Errorf("duplicate grammar name %q", name)
			}
			indexByName[name] = i
		}
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
			return nil, fmt.Errorf("grammar %s: %w", entryName(entry, i), err)
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
		// A clone never inherits its source's name; an unnamed clone keeps
		// its positional identity.
		base := make(map[string]any, len(parent))
		for k, v := range parent {
			if k != "name" {
				base[k] = v
			}
		}
		resolved[i] = tree.Merge(base, child)
		return resolved[i], nil
	}

	for i := range entries {
		if _, err := resolve(i, map[int]bool{}); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// lookupEntry maps a copyFrom reference (index or name) to a list position.
func lookupEntry(ref any, byName map[string]int, count int) (int, error) {
	switch r := ref.(type) {
	case string:
		if i, ok := byName[r]; ok {
			return i, nil
		}
		return 0, fmt.Errorf("copyFrom refers to unknown grammar %q", r)
	case int:
		if r >= 0 && r < count {
			return r, nil
		}
	case float64:
		if i := int(r); float64(i) == r && i >= 0 && i < count {
			return i, nil
		}
	}
	return 0, fmt.Errorf("copyFrom refers to unknown grammar %v", ref)
}

func entryName(entry map[string]any, i int) string {
	if name, ok := entry["name"].(string); ok {
		return name
	}
	return fmt.Sprintf("#%d", i)
}

// Expand runs every grammar entry through the driver in declaration order.
// Structural failures are collected per entry; the rest of the document
// still expands.
func (d *Document) Expand() *Expansion {
	drv := &grammar.Driver{Templates: d.Templates, Statics: d.Statics}
	exp := &Expansion{}

	for i, def := range d.Grammars {
		name := entryName(def, i)

		g, err := grammar.Parse(def, d.Statics)
		if err != nil {
			exp.Failed = append(exp.Failed, &EntryError{Grammar: name, Err: err})
			log.ErrorErr(log.CatRecipe, "grammar entry failed", err, "grammar", name)
			continue
		}
		if g.Name == "" {
			g.Name = name
		}

		res, err := drv.Run(g)
		if err != nil {
			exp.Failed = append(exp.Failed, &EntryError{Grammar: name, Err: err})
			log.ErrorErr(log.CatRecipe, "grammar entry failed", err, "grammar", name)
			continue
		}

		exp.Records = append(exp.Records, res.Records...)
		exp.Skipped = append(exp.Skipped, res.Skipped...)
	}

	log.Info(log.CatRecipe, "document expanded",
		"grammars", len(d.Grammars), "records", len(exp.Records),
		"failed", len(exp.Failed), "skipped", len(exp.Skipped))
	return exp
}

// Codes returns the ordered identifiers of every accepted record.
func (e *Expansion) Codes() []string {
	codes := make([]string, len(e.Records))
	for i, r := range e.Records {
		codes[i] = r.Code
	}
	return codes
}

// Content renders the final output file: a JSON array joining each record's
// rendered text, or its compact tree when the grammar declared no format.
func (e *Expansion) Content() ([]byte, error) {
	parts := make([]string, len(e.Records))
	for i, r := range e.Records {
		if r.Text != "" {
			parts[i] = r.Text
			continue
		}
		compact, err := tree.CompactJSON(r.Tree)
		if err != nil {
			return nil, fmt.Errorf("serializing record %q: %w", r.Code, err)
		}
		parts[i] = compact
	}
	return []byte("[\n" + strings.Join(parts, ",\n") + "\n]"), nil
}
