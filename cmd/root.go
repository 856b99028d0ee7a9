package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hyomoto/vsgen/internal/config"
	"github.com/hyomoto/vsgen/internal/gen"
	"github.com/hyomoto/vsgen/internal/log"
	"github.com/hyomoto/vsgen/internal/style"
	"github.com/hyomoto/vsgen/internal/tracing"
	"github.com/hyomoto/vsgen/internal/watcher"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config

	flagDry      bool
	flagVerbose  bool
	flagStrict   bool
	flagAbsolute bool
	flagWatch    bool
	flagDebug    bool
	flagBatch    bool
)

var rootCmd = &cobra.Command{
	Use:     "vsgen",
	Short:   "Grammar-driven asset generator",
	Long: `Expands grammar documents into game asset files: recipe grammars
become recipe records, shape grammars rewrite model files. Run a single
generator with the recipes or shapes subcommands, or the whole input tree
at once with no subcommand.`,
	Version: version,
	RunE:    runBatch,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"settings file (default: settings.yaml or settings.json)")
	rootCmd.PersistentFlags().BoolVarP(&flagDry, "dry-run", "n", false,
		"preview the run without writing anything")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"echo record codes and shape diffs")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false,
		"parse documents as plain JSON")
	rootCmd.PersistentFlags().BoolVar(&flagAbsolute, "absolute", false,
		"allow input/output paths outside the working directory")
	rootCmd.PersistentFlags().BoolVarP(&flagWatch, "watch", "w", false,
		"rerun when input documents change")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"log at debug level")
	rootCmd.PersistentFlags().BoolVar(&flagBatch, "batch", false,
		"treat input as a batch root holding per-generator subfolders")

	rootCmd.Flags().StringSlice("generators", nil,
		"restrict batch mode to the named generator subfolders")
	_ = viper.BindPFlag("generators", rootCmd.Flags().Lookup("generators"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("input", defaults.Input)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("absolute", defaults.Absolute)
	viper.SetDefault("strict", defaults.Strict)
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("log_file", defaults.LogFile)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Settings lookup order: settings.yaml then settings.json in the
		// working directory, then the user config directory.
		if _, err := os.Stat("settings.yaml"); err == nil {
			viper.SetConfigFile("settings.yaml")
		} else if _, err := os.Stat("settings.json"); err == nil {
			viper.SetConfigFile("settings.json")
		} else {
			home, _ := os.UserHomeDir()
			viper.SetConfigName("settings")
			viper.SetConfigType("yaml")
			viper.AddConfigPath(filepath.Join(home, ".config", "vsgen"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// First run: write a commented settings file and carry on.
			if writeErr := config.WriteDefaultConfig("settings.yaml"); writeErr == nil {
				viper.SetConfigFile("settings.yaml")
				_ = viper.ReadInConfig()
			}
		} else {
			fmt.Fprintln(os.Stderr, style.Warn("settings: %v", err))
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// applyFlags folds command-line overrides into the loaded settings.
func applyFlags() {
	if flagStrict {
		cfg.Strict = true
	}
	if flagAbsolute {
		cfg.Absolute = true
	}
}

// setup validates settings and initializes logging and tracing. The
// returned cleanup flushes both.
func setup() (*gen.Runner, func(), error) {
	applyFlags()
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	var closers []func()
	if cfg.LogFile != "" {
		closeLog, err := log.Init(cfg.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		closers = append(closers, closeLog)
		if !flagDebug {
			log.SetMinLevel(log.LevelInfo)
		}
	}

	// Verbose runs echo the structured log to the console as it is written.
	if flagVerbose && cfg.LogFile != "" {
		followCtx, cancel := context.WithCancel(context.Background())
		closers = append(closers, cancel)
		if entries := log.Follow(followCtx); entries != nil {
			go func() {
				for entry := range entries {
					fmt.Println(style.Muted(strings.TrimRight(entry.Payload, "\n")))
				}
			}()
		}
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, nil, fmt.Errorf("tracing: %w", err)
	}
	closers = append(closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	})

	runner := gen.NewRunner(gen.Options{
		Dry:     flagDry,
		Verbose: flagVerbose,
		Strict:  cfg.Strict,
	}, provider.Tracer(), os.Stdout)
	closers = append(closers, runner.Close)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return runner, cleanup, nil
}

// resolvePaths applies positional input/output overrides.
func resolvePaths(args []string) (string, string) {
	input, output := cfg.Input, cfg.Output
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	return input, output
}

// batchSubdir narrows a single generator to its subfolder when --batch marks
// the input as a batch root.
func batchSubdir(input, output, generator string) (string, string) {
	if !flagBatch {
		return input, output
	}
	return filepath.Join(input, generator), filepath.Join(output, generator)
}

func runBatch(cmd *cobra.Command, args []string) error {
	runner, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	input, output := resolvePaths(args)
	generators := viper.GetStringSlice("generators")

	run := func(ctx context.Context) (*gen.Stats, error) {
		return runner.RunBatch(ctx, input, output, generators)
	}
	return execute(cmd.Context(), "batch", input, run)
}

// execute runs one pass, then keeps rerunning on input changes when --watch
// is set.
func execute(ctx context.Context, title, input string, run func(context.Context) (*gen.Stats, error)) error {
	fmt.Println(style.Header("vsgen " + title))

	stats, err := run(ctx)
	if err != nil {
		return err
	}
	printSummary(stats)

	if !flagWatch {
		if stats.Failed > 0 {
			return fmt.Errorf("%d file(s) or entries failed", stats.Failed)
		}
		return nil
	}

	w, err := watcher.New(watcher.Config{
		Root:        input,
		DebounceDur: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	fmt.Println(style.Muted("watching " + input + " (ctrl-c to stop)"))
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			log.Info(log.CatWatch, "input changed, rerunning", "input", input)
			fmt.Println(style.Header("vsgen " + title + " (rerun)"))
			stats, err := run(ctx)
			if err != nil {
				fmt.Println(style.Error("%v", err))
				continue
			}
			printSummary(stats)
		}
	}
}

func printSummary(stats *gen.Stats) {
	fmt.Println(style.Summary(
		"written", fmt.Sprint(stats.Written),
		"copied", fmt.Sprint(stats.Copied),
		"records", fmt.Sprint(stats.Records),
		"failed", fmt.Sprint(stats.Failed),
		"skipped", fmt.Sprint(stats.Skipped),
	))
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
