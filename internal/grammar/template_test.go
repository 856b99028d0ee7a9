package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreResolve(t *testing.T) {
	store, err := NewStore(map[string]any{
		"base": map[string]any{
			"type": "recipe",
			"attributes": map[string]any{
				"durability": 100.0,
				"tier":       1.0,
			},
		},
		"tool": map[string]any{
			"copyFrom": "base",
			"attributes": map[string]any{
				"tier": 2.0,
			},
			"tool": true,
		},
		"axe": map[string]any{
			"copyFrom": "tool",
			"type":     "tool-recipe",
		},
	})
	require.NoError(t, err)

	axe, err := store.Resolve("axe")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"type": "tool-recipe",
		"attributes": map[string]any{
			"durability": 100.0,
			"tier":       2.0,
		},
		"tool": true,
	}, axe)
}

func TestStoreResolveReturnsFreshCopies(t *testing.T) {
	store, err := NewStore(map[string]any{
		"base": map[string]any{"attributes": map[string]any{"tier": 1.0}},
	})
	require.NoError(t, err)

	first, err := store.Resolve("base")
	require.NoError(t, err)
	first["attributes"].(map[string]any)["tier"] = 99.0

	second, err := store.Resolve("base")
	require.NoError(t, err)
	assert.Equal(t, 1.0, second["attributes"].(map[string]any)["tier"])
}

func TestStoreResolveUnknown(t *testing.T) {
	store, err := NewStore(map[string]any{})
	require.NoError(t, err)

	_, err = store.Resolve("ghost")
	var unknown *UnknownTemplateError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ghost", unknown.Name)
}

func TestStoreResolveCycle(t *testing.T) {
	store, err := NewStore(map[string]any{
		"a": map[string]any{"copyFrom": "b"},
		"b": map[string]any{"copyFrom": "a"},
	})
	require.NoError(t, err)

	_, err = store.Resolve("a")
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "template", cycle.Kind)
}

func TestNewStoreRejectsNonObjects(t *testing.T) {
	_, err := NewStore(map[string]any{"bad": "not an object"})
	var schema *SchemaError
	assert.ErrorAs(t, err, &schema)
}
