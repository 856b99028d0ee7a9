package gen

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/hyomoto/vsgen/internal/config"
)

const recipeGrammar = `{
	"output": "blades.json",
	"static": {"metal": ["copper", "tin"]},
	"template": {
		"default": {"attributes": {"metal": "%metal%"}}
	},
	"grammars": [
		{
			"name": "blades",
			"keys": [{"key": "metal", "value": "@metal"}],
			"code": "game:blade-%metal%"
		}
	]
}`

const shapeGrammar = `[
	{
		"name": "swords",
		"applyTo": "sword-*.json",
		"textures": {"metal": "block/metal/copper"}
	}
]`

const swordShape = `{
	"textures": {"metal": "block/metal/iron"},
	"elements": []
}`

func testRunner(opts Options) *Runner {
	return NewRunner(opts, noop.NewTracerProvider().Tracer("test"), &bytes.Buffer{})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRunRecipes(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "grammar.json"), recipeGrammar)
	write(t, filepath.Join(input, "extra.txt"), "copied through")

	r := testRunner(Options{Strict: true})
	defer r.Close()

	stats, err := r.RunRecipes(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Copied)
	assert.Equal(t, 2, stats.Records)
	assert.Zero(t, stats.Failed)

	data, err := os.ReadFile(filepath.Join(output, "blades.json"))
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "copper",
		records[0]["attributes"].(map[string]any)["metal"])

	copied, err := os.ReadFile(filepath.Join(output, "extra.txt"))
	require.NoError(t, err)
	assert.Equal(t, "copied through", string(copied))
}

func TestRunRecipesIsolatesBrokenFiles(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "grammar-bad.json"), "{not json")
	write(t, filepath.Join(input, "grammar-good.json"), recipeGrammar)

	r := testRunner(Options{Strict: true})
	defer r.Close()

	stats, err := r.RunRecipes(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Failed)

	_, err = os.Stat(filepath.Join(output, "blades.json"))
	assert.NoError(t, err)
}

func TestRunRecipesDry(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "grammar.json"), recipeGrammar)

	r := testRunner(Options{Strict: true, Dry: true})
	defer r.Close()

	stats, err := r.RunRecipes(context.Background(), input, output)
	require.NoError(t, err)
	assert.Zero(t, stats.Written)
	assert.Equal(t, 2, stats.Records)

	_, err = os.Stat(filepath.Join(output, "blades.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunShapes(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "grammar.json"), shapeGrammar)
	write(t, filepath.Join(input, "sword-iron.json"), swordShape)
	write(t, filepath.Join(input, "axe-iron.json"), swordShape)

	r := testRunner(Options{Strict: true})
	defer r.Close()

	stats, err := r.RunShapes(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)
	assert.Equal(t, 1, stats.Copied)

	data, err := os.ReadFile(filepath.Join(output, "sword-iron.json"))
	require.NoError(t, err)
	var shape map[string]any
	require.NoError(t, json.Unmarshal(data, &shape))
	assert.Equal(t, "block/metal/copper",
		shape["textures"].(map[string]any)["metal"])

	// The unmatched shape copies through byte for byte.
	copied, err := os.ReadFile(filepath.Join(output, "axe-iron.json"))
	require.NoError(t, err)
	assert.Equal(t, swordShape, string(copied))
}

func TestRunBatch(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "recipes", "grammar.json"), recipeGrammar)
	write(t, filepath.Join(input, "shapes", "grammar.json"), shapeGrammar)
	write(t, filepath.Join(input, "shapes", "sword-iron.json"), swordShape)
	write(t, filepath.Join(input, "unrelated", "readme.txt"), "ignored")

	r := testRunner(Options{Strict: true})
	defer r.Close()

	stats, err := r.RunBatch(context.Background(), input, output, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Written)
	assert.Equal(t, 2, stats.Records)

	_, err = os.Stat(filepath.Join(output, "recipes", "blades.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(output, "shapes", "sword-iron.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(output, "unrelated"))
	assert.True(t, os.IsNotExist(err), "unknown folders are not generated")
}

func TestRunBatchGeneratorFilter(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	write(t, filepath.Join(input, "recipes", "grammar.json"), recipeGrammar)
	write(t, filepath.Join(input, "shapes", "grammar.json"), shapeGrammar)
	write(t, filepath.Join(input, "shapes", "sword-iron.json"), swordShape)

	r := testRunner(Options{Strict: true})
	defer r.Close()

	stats, err := r.RunBatch(context.Background(), input, output,
		[]string{config.GeneratorRecipes})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)

	_, err = os.Stat(filepath.Join(output, "shapes"))
	assert.True(t, os.IsNotExist(err))
}
