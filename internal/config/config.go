// Package config provides configuration types and defaults for vsgen.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/tracing"
)

// Config holds all configuration options for vsgen.
type Config struct {
	// Input is the folder scanned for grammar and asset documents.
	Input string `mapstructure:"input"`

	// Output is the folder generated files are written to.
	Output string `mapstructure:"output"`

	// Absolute permits input/output paths outside the working directory.
	Absolute bool `mapstructure:"absolute"`

	// Strict parses documents as plain JSON instead of the relaxed syntax.
	Strict bool `mapstructure:"strict"`

	// Generators restricts batch mode to the named subfolders. Empty means
	// every known generator runs.
	Generators []string `mapstructure:"generators"`

	// Watch holds the file-watching options used by --watch.
	Watch WatchConfig `mapstructure:"watch"`

	// Tracing configures optional span export for a run.
	Tracing tracing.Config `mapstructure:"tracing"`

	// LogFile is where the structured log lands. Empty disables file logging.
	LogFile string `mapstructure:"log_file"`
}

// WatchConfig holds file-watching options.
type WatchConfig struct {
	// DebounceMs is how long changes must settle before a rerun, in
	// milliseconds.
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Generator subfolder names recognized in batch mode.
const (
	GeneratorRecipes = "recipes"
	GeneratorShapes  = "shapes"
)

// KnownGenerators lists every generator batch mode can run.
func KnownGenerators() []string {
	return []string{GeneratorRecipes, GeneratorShapes}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Input:    "input",
		Output:   "output",
		Absolute: false,
		Strict:   false,
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Tracing: tracing.DefaultConfig(),
		LogFile: "",
	}
}

// Validate checks the configuration for errors. Empty values fall back to
// defaults and are valid.
func Validate(cfg Config) error {
	for _, g := range cfg.Generators {
		known := false
		for _, k := range KnownGenerators() {
			if g == k {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("generators: unknown generator %q (must be one of %v)", g, KnownGenerators())
		}
	}

	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMs)
	}

	if err := validateTracing(cfg.Tracing); err != nil {
		return err
	}

	if !cfg.Absolute {
		if filepath.IsAbs(cfg.Input) {
			return fmt.Errorf("input is an absolute path %q, pass --absolute to allow it", cfg.Input)
		}
		if filepath.IsAbs(cfg.Output) {
			return fmt.Errorf("output is an absolute path %q, pass --absolute to allow it", cfg.Output)
		}
	}
	return nil
}

func validateTracing(cfg tracing.Config) error {
	if cfg.Exporter != "" {
		switch cfg.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", cfg.Exporter)
		}
	}
	if cfg.Enabled {
		if cfg.Exporter == "file" && cfg.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if cfg.Exporter == "otlp" && cfg.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default settings file as a YAML string
// with comments.
func DefaultConfigTemplate() string {
	return `# vsgen settings

# Folder scanned for grammar and asset documents
input: input

# Folder generated files are written to
output: output

# Allow input/output paths outside the working directory
absolute: false

# Parse documents as plain JSON instead of the relaxed syntax
strict: false

# Restrict batch mode to specific generator subfolders
# generators:
#   - recipes
#   - shapes

# File watching (--watch)
watch:
  debounce_ms: 500    # How long changes settle before a rerun

# Structured log file (empty disables file logging)
# log_file: vsgen.log

# Span export for debugging a run
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp
#   file_path: traces.jsonl        # Output file for file exporter
#   otlp_endpoint: localhost:4317  # Collector endpoint (for otlp exporter)
`
}

// WriteDefaultConfig creates a settings file at the given path with default
// values and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
