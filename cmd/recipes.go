package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hyomoto/vsgen/internal/config"
	"github.com/hyomoto/vsgen/internal/gen"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes [input] [output]",
	Short: "Expand recipe grammar documents",
	Long: `Expands every grammar document in the input folder into recipe
records and copies the remaining files through to the output folder.
Positional arguments override the configured input and output paths.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRecipes,
}

func init() {
	rootCmd.AddCommand(recipesCmd)
}

func runRecipes(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	input, output := resolvePaths(args)
	input, output = batchSubdir(input, output, config.GeneratorRecipes)
	run := func(ctx context.Context) (*gen.Stats, error) {
		return runner.RunRecipes(ctx, input, output)
	}
	return execute(cmd.Context(), "recipes", input, run)
}
