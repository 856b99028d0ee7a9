package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hyomoto/vsgen/internal/config"
	"github.com/hyomoto/vsgen/internal/gen"
)

var shapesCmd = &cobra.Command{
	Use:   "shapes [input] [output]",
	Short: "Apply shape grammar overrides to model files",
	Long: `Loads the shape grammars in the input folder and rewrites every
matching model file into the output folder. Files no rule touches copy
through unchanged. Positional arguments override the configured input and
output paths.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runShapes,
}

func init() {
	rootCmd.AddCommand(shapesCmd)
}

func runShapes(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	input, output := resolvePaths(args)
	input, output = batchSubdir(input, output, config.GeneratorShapes)
	run := func(ctx context.Context) (*gen.Stats, error) {
		return runner.RunShapes(ctx, input, output)
	}
	return execute(cmd.Context(), "shapes", input, run)
}
