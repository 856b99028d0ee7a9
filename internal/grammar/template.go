package grammar

import (
	"context"

	"github.com/hyomoto/vsgen/internal/cachemanager"
	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/tree"
)

// copyFromField names the inheritance reference shared by templates and
// grammar entries.
const copyFromField = "copyFrom"

// Store resolves named templates, flattening copyFrom inheritance chains.
// Resolution is memoized per template name for the run; resolved trees are
// handed out as fresh copies so callers can mutate them freely.
type Store struct {
	raw      map[string]map[string]any
	resolved cachemanager.Cache[map[string]any]
}

// NewStore builds a store from the document's template section. Each entry
// must be an object.
func NewStore(raw map[string]any) (*Store, error) {
	templates := make(map[string]map[string]any, len(raw))
	for name, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, &SchemaError{Field: name, Context: "template"}
		}
		templates[name] = m
	}
	return &Store{
		raw:      templates,
		resolved: cachemanager.NewInMemory[map[string]any]("templates"),
	}, nil
}

// Resolve returns a deep copy of the named template with its inheritance
// chain applied.
func (s *Store) Resolve(name string) (map[string]any, error) {
	resolved, err := s.resolve(name, map[string]bool{})
	if err != nil {
		return nil, err
	}
	return tree.Clone(resolved).(map[string]any), nil
}

// resolve walks the copyFrom chain depth-first with a visited set, so cycles
// fail deterministically instead of recursing without bound.
func (s *Store) resolve(name string, visiting map[string]bool) (map[string]any, error) {
	ctx := context.Background()
	if cached, ok := s.resolved.Get(ctx, name); ok {
		return cached, nil
	}
	if visiting[name] {
		return nil, &CycleError{Kind: "template", Name: name}
	}

	raw, ok := s.raw[name]
	if !ok {
		return nil, &UnknownTemplateError{Name: name}
	}

	result := raw
	if ref, hasParent := raw[copyFromField].(string); hasParent {
		visiting[name] = true
		parent, err := s.resolve(ref, visiting)
		if err != nil {
			return nil, err
		}
		delete(visiting, name)

		child := make(map[string]any, len(raw))
		for k, v := range raw {
			if k != copyFromField {
				child[k] = v
			}
		}
		result = tree.Merge(parent, child)
		log.Debug(log.CatTemplate, "resolved inheritance", "template", name, "parent", ref)
	}

	s.resolved.Set(ctx, name, result)
	return result, nil
}
