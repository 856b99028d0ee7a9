package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hyomoto/vsgen/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "input", cfg.Input)
	assert.Equal(t, "output", cfg.Output)
	assert.False(t, cfg.Absolute)
	assert.False(t, cfg.Strict)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.False(t, cfg.Tracing.Enabled)

	assert.NoError(t, Validate(cfg))
}

func TestValidateGenerators(t *testing.T) {
	cfg := Defaults()
	cfg.Generators = []string{GeneratorRecipes, GeneratorShapes}
	assert.NoError(t, Validate(cfg))

	cfg.Generators = []string{"textures"}
	assert.ErrorContains(t, Validate(cfg), "unknown generator")
}

func TestValidateAbsolutePaths(t *testing.T) {
	cfg := Defaults()
	cfg.Input = string(filepath.Separator) + filepath.Join("srv", "assets")

	err := Validate(cfg)
	require.ErrorContains(t, err, "--absolute")

	cfg.Absolute = true
	assert.NoError(t, Validate(cfg))
}

func TestValidateWatch(t *testing.T) {
	cfg := Defaults()
	cfg.Watch.DebounceMs = -1
	assert.ErrorContains(t, Validate(cfg), "debounce_ms")
}

func TestValidateTracing(t *testing.T) {
	cfg := Defaults()
	cfg.Tracing = tracing.Config{Enabled: true, Exporter: "carrier-pigeon"}
	assert.ErrorContains(t, Validate(cfg), "tracing.exporter")

	cfg.Tracing = tracing.Config{Enabled: true, Exporter: "file"}
	assert.ErrorContains(t, Validate(cfg), "file_path")

	cfg.Tracing = tracing.Config{Enabled: true, Exporter: "otlp"}
	assert.ErrorContains(t, Validate(cfg), "otlp_endpoint")

	// Disabled tracing skips the path requirements.
	cfg.Tracing = tracing.Config{Enabled: false, Exporter: "file"}
	assert.NoError(t, Validate(cfg))
}

func TestDefaultConfigTemplateIsValidYAML(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &doc))
	assert.Equal(t, "input", doc["input"])
	assert.Equal(t, "output", doc["output"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input: input")
}
