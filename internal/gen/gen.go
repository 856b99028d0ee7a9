// Package gen drives generation runs: scanning input folders, expanding
// recipe grammars, mutating shapes, and writing or previewing output.
// Every file is processed independently so one broken document never stops
// a run.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hyomoto/vsgen/internal/config"
	"github.com/hyomoto/vsgen/internal/docio"
	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/pubsub"
	"github.com/hyomoto/vsgen/internal/recipes"
	"github.com/hyomoto/vsgen/internal/scan"
	"github.com/hyomoto/vsgen/internal/shapes"
	"github.com/hyomoto/vsgen/internal/statics"
	"github.com/hyomoto/vsgen/internal/style"
)

// Options control how a run behaves.
type Options struct {
	// Dry previews the run without writing anything.
	Dry bool
	// Verbose echoes record codes and shape diffs to the console.
	Verbose bool
	// Strict parses documents as plain JSON.
	Strict bool
}

// Stats aggregates what a run produced.
type Stats struct {
	Written int // output files written
	Copied  int // files copied through unchanged
	Records int // recipe records expanded
	Failed  int // documents or grammar entries that produced nothing
	Skipped int // permutations dropped mid-entry
}

func (s *Stats) add(o Stats) {
	s.Written += o.Written
	s.Copied += o.Copied
	s.Records += o.Records
	s.Failed += o.Failed
	s.Skipped += o.Skipped
}

// Runner executes generation passes over an input tree. Each Runner carries
// a unique run id that tags its spans and log lines.
type Runner struct {
	Opts   Options
	Tracer trace.Tracer
	Events *pubsub.Broker[string]
	RunID  string
	Out    io.Writer
}

// NewRunner builds a runner. A nil out writes to stdout.
func NewRunner(opts Options, tracer trace.Tracer, out io.Writer) *Runner {
	if out == nil {
		out = os.Stdout
	}
	return &Runner{
		Opts:   opts,
		Tracer: tracer,
		Events: pubsub.NewBroker[string](),
		RunID:  uuid.NewString(),
		Out:    out,
	}
}

// RunBatch walks the input root and dispatches each known generator
// subfolder, mirroring the folder structure under output. An empty
// generators list runs everything recognized.
func (r *Runner) RunBatch(ctx context.Context, input, output string, generators []string) (*Stats, error) {
	ctx, span := r.Tracer.Start(ctx, "batch",
		trace.WithAttributes(attribute.String("run.id", r.RunID), attribute.String("input", input)))
	defer span.End()

	dirs, err := scan.Directories(input)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, dir := range dirs {
		if !selected(dir, generators) {
			log.Debug(log.CatGen, "skipping folder", "folder", dir)
			continue
		}

		sub := filepath.Join(input, dir)
		dst := filepath.Join(output, dir)
		var s *Stats
		switch dir {
		case config.GeneratorRecipes:
			s, err = r.RunRecipes(ctx, sub, dst)
		case config.GeneratorShapes:
			s, err = r.RunShapes(ctx, sub, dst)
		}
		if err != nil {
			return stats, fmt.Errorf("generator %s: %w", dir, err)
		}
		stats.add(*s)
	}
	return stats, nil
}

func selected(dir string, generators []string) bool {
	known := false
	for _, k := range config.KnownGenerators() {
		if dir == k {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	if len(generators) == 0 {
		return true
	}
	for _, g := range generators {
		if dir == g {
			return true
		}
	}
	return false
}

// RunRecipes expands every grammar document in input and copies the rest of
// the folder through to output.
func (r *Runner) RunRecipes(ctx context.Context, input, output string) (*Stats, error) {
	_, span := r.Tracer.Start(ctx, "recipes",
		trace.WithAttributes(attribute.String("run.id", r.RunID), attribute.String("input", input)))
	defer span.End()

	grammars, others, err := scan.Split(input)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	for _, name := range grammars {
		r.recipeFile(filepath.Join(input, name), output, stats)
	}
	for _, name := range others {
		r.copyThrough(filepath.Join(input, name), filepath.Join(output, name), stats)
	}

	span.SetAttributes(attribute.Int("records", stats.Records), attribute.Int("failed", stats.Failed))
	log.Info(log.CatGen, "recipes pass complete", "input", input,
		"written", stats.Written, "records", stats.Records, "failed", stats.Failed)
	return stats, nil
}

// recipeFile expands one grammar document. Failures are reported and
// counted; they never abort the run.
func (r *Runner) recipeFile(path, output string, stats *Stats) {
	doc, err := docio.Load(path, r.Opts.Strict)
	if err != nil {
		r.fileFailed(path, err, stats)
		return
	}

	parsed, err := recipes.ParseDocument(doc)
	if err != nil {
		r.fileFailed(path, err, stats)
		return
	}

	exp := parsed.Expand()
	stats.Records += len(exp.Records)
	stats.Failed += len(exp.Failed)
	stats.Skipped += len(exp.Skipped)
	for _, fe := range exp.Failed {
		fmt.Fprintln(r.Out, style.Error("%s: %v", filepath.Base(path), fe))
	}

	if r.Opts.Verbose {
		for _, code := range exp.Codes() {
			fmt.Fprintln(r.Out, style.Muted("  "+code))
		}
	}

	outPath := filepath.Join(output, parsed.Output)
	if r.Opts.Dry {
		fmt.Fprintln(r.Out, style.Muted(fmt.Sprintf("would write %s (%d records)", outPath, len(exp.Records))))
		return
	}

	content, err := exp.Content()
	if err != nil {
		r.fileFailed(path, err, stats)
		return
	}
	if err := writeFile(outPath, content); err != nil {
		r.fileFailed(path, err, stats)
		return
	}
	stats.Written++
	r.Events.Publish(pubsub.GeneratedEvent, outPath)
	fmt.Fprintln(r.Out, style.Success("%s (%d records)", style.File(outPath), len(exp.Records)))
}

// ruleSet keeps a grammar file's rules together with its static table.
type ruleSet struct {
	source string
	rules  []*shapes.Rule
	table  statics.Table
}

// RunShapes loads shape grammars from input, then rewrites every matching
// shape document. Files no rule touches copy through unchanged.
func (r *Runner) RunShapes(ctx context.Context, input, output string) (*Stats, error) {
	_, span := r.Tracer.Start(ctx, "shapes",
		trace.WithAttributes(attribute.String("run.id", r.RunID), attribute.String("input", input)))
	defer span.End()

	grammars, others, err := scan.Split(input)
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	var sets []ruleSet
	for _, name := range grammars {
		path := filepath.Join(input, name)
		doc, err := docio.Load(path, r.Opts.Strict)
		if err != nil {
			r.fileFailed(path, err, stats)
			continue
		}
		rules, table, failed, err := shapes.ParseRules(doc)
		if err != nil {
			r.fileFailed(path, err, stats)
			continue
		}
		stats.Failed += len(failed)
		for _, fe := range failed {
			fmt.Fprintln(r.Out, style.Error("%s: %v", name, fe))
		}
		sets = append(sets, ruleSet{source: name, rules: rules, table: table})
	}

	for _, name := range others {
		r.shapeFile(name, input, output, sets, stats)
	}

	span.SetAttributes(attribute.Int("written", stats.Written), attribute.Int("failed", stats.Failed))
	log.Info(log.CatGen, "shapes pass complete", "input", input,
		"written", stats.Written, "copied", stats.Copied, "failed", stats.Failed)
	return stats, nil
}

// shapeFile applies every matching rule, in grammar order, to one target.
func (r *Runner) shapeFile(name, input, output string, sets []ruleSet, stats *Stats) {
	src := filepath.Join(input, name)
	dst := filepath.Join(output, name)

	if !scan.IsDocument(name) {
		r.copyThrough(src, dst, stats)
		return
	}

	doc, err := docio.Load(src, r.Opts.Strict)
	if err != nil {
		r.fileFailed(src, err, stats)
		return
	}
	shape, ok := doc.(map[string]any)
	if !ok {
		r.copyThrough(src, dst, stats)
		return
	}

	working := shape
	changed := false
	for _, set := range sets {
		for _, rule := range set.rules {
			if !rule.Matches(name) {
				continue
			}
			mutated, touched := rule.Apply(working, set.table)
			if touched {
				working = mutated
				changed = true
				log.Debug(log.CatShape, "rule applied", "rule", rule.Name, "file", name)
			}
		}
	}

	if !changed {
		r.copyThrough(src, dst, stats)
		return
	}

	if r.Opts.Dry {
		fmt.Fprintln(r.Out, style.Muted("would write "+dst))
		if r.Opts.Verbose {
			preview, err := shapes.DiffPreview(shape, working)
			if err == nil {
				fmt.Fprintln(r.Out, preview)
			}
		}
		return
	}

	data, err := json.MarshalIndent(working, "", "  ")
	if err != nil {
		r.fileFailed(src, err, stats)
		return
	}
	if err := writeFile(dst, append(data, '\n')); err != nil {
		r.fileFailed(src, err, stats)
		return
	}
	stats.Written++
	r.Events.Publish(pubsub.GeneratedEvent, dst)
	fmt.Fprintln(r.Out, style.Success("%s", style.File(dst)))
}

// copyThrough mirrors an untouched file into the output tree.
func (r *Runner) copyThrough(src, dst string, stats *Stats) {
	if r.Opts.Dry {
		stats.Copied++
		return
	}
	data, err := os.ReadFile(src) //nolint:gosec // G304: path comes from input scanning
	if err != nil {
		r.fileFailed(src, err, stats)
		return
	}
	if err := writeFile(dst, data); err != nil {
		r.fileFailed(src, err, stats)
		return
	}
	stats.Copied++
	log.Debug(log.CatGen, "copied through", "src", src, "dst", dst)
}

func (r *Runner) fileFailed(path string, err error, stats *Stats) {
	stats.Failed++
	log.ErrorErr(log.CatGen, "file failed", err, "path", path)
	fmt.Fprintln(r.Out, style.Error("%s: %v", path, err))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: generated assets are world-readable
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Close releases the runner's event broker.
func (r *Runner) Close() {
	r.Events.Close()
}
