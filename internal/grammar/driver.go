package grammar

import (
	"fmt"

	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/statics"
	"github.com/hyomoto/vsgen/internal/tree"
)

// Record is one fully expanded output: its identifier, the substituted tree,
// and, when the grammar declares a format, the rendered text.
type Record struct {
	Code string
	Tree map[string]any
	Text string
}

// Result carries one grammar entry's ordered output and any per-permutation
// failures that were skipped along the way.
type Result struct {
	Grammar string
	Records []Record
	Skipped []error
}

// Driver runs grammar entries through the expansion pipeline: resolve
// template, mutate, expand keys, then substitute, render, and filter each
// permutation. A structural failure aborts the entry; a render failure
// skips only that permutation.
type Driver struct {
	Templates *Store
	Statics   statics.Table
}

// Run expands a single grammar entry. The returned error is structural and
// means the entry produced nothing; sibling entries are unaffected.
func (d *Driver) Run(g *Grammar) (*Result, error) {
	res := &Result{Grammar: g.Name}

	base, err := d.Templates.Resolve(g.Template)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: %w", g.Name, err)
	}

	if err := ValidatePatterns(g.Allow); err != nil {
		return nil, fmt.Errorf("grammar %q: %w", g.Name, err)
	}
	if err := ValidatePatterns(g.Skip); err != nil {
		return nil, fmt.Errorf("grammar %q: %w", g.Name, err)
	}

	// Structural mutations run once, on the fresh copy, and are shared by
	// every permutation of this entry.
	for _, path := range g.Remove {
		tree.Delete(base, path)
	}
	for _, sub := range g.Substitute {
		if err := tree.Set(base, sub.Path, sub.Value); err != nil {
			return nil, fmt.Errorf("grammar %q: substitute: %w", g.Name, err)
		}
	}

	perms := NewPermutations(g.Keys)
	log.Debug(log.CatGrammar, "expanding", "grammar", g.Name, "template", g.Template, "permutations", perms.Count())

	for {
		binding, ok := perms.Next()
		if !ok {
			break
		}

		code, err := RenderCode(g.Code, binding)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			log.Warn(log.CatGrammar, "skipping permutation", "grammar", g.Name, "error", err)
			continue
		}

		accepted, err := Accepts(code, g.Allow, g.Skip)
		if err != nil {
			// Patterns were validated above; treat a late failure as structural.
			return nil, fmt.Errorf("grammar %q: %w", g.Name, err)
		}
		if !accepted {
			log.Debug(log.CatGrammar, "filtered", "code", code)
			continue
		}

		working, _ := Apply(base, binding).(map[string]any)
		record := Record{Code: code, Tree: working}

		if g.Format != "" {
			text, err := RenderRecord(g.Format, working, binding)
			if err != nil {
				res.Skipped = append(res.Skipped, err)
				log.Warn(log.CatGrammar, "skipping permutation", "grammar", g.Name, "code", code, "error", err)
				continue
			}
			record.Text = text
		}

		res.Records = append(res.Records, record)
	}

	log.Debug(log.CatGrammar, "expanded", "grammar", g.Name, "records", len(res.Records), "skipped", len(res.Skipped))
	return res, nil
}
