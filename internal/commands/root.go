// Package commands implements the statement-analyzer command line.
package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/evaluator"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app is the state shared by every subcommand. Flags write into overrides,
// which are merged onto the loaded configuration before a command runs.
type app struct {
	configPath string
	overrides  config.Config
	cfg        *config.Config
	log        zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statement-analyzer",
		Short: "Reconstruct, classify and score bank statement transactions",
		Long: `Reads bank statement PDFs, rebuilds the transaction table from the
extracted rows, classifies every transaction and computes loan
eligibility metrics.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.overrides.Log.Level, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.overrides.Log.Format, "log-format", "", "log format (console, json)")

	rootCmd.AddCommand(newConvertCommand(a))
	rootCmd.AddCommand(newEvaluateCommand(a))
	rootCmd.AddCommand(newServeCommand(a))

	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Apply(a.overrides); err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

// addPipelineFlags registers the row pipeline overrides on cmd.
func (a *app) addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&a.overrides.Pipeline.EmptyThreshold, "empty-threshold", 0,
		"drop columns whose share of empty cells reaches this value (default from config, 0.9)")
	cmd.Flags().BoolVar(&a.overrides.Pipeline.FixTransactionDescription, "fix-description", false,
		"redistribute description cells holding line breaks onto the following empty rows")
}

func (a *app) evaluator() *evaluator.Evaluator {
	return evaluator.New(
		extractor.New(a.cfg.ExtractorOptions(), a.log),
		parser.New(a.cfg.ParserOptions(), a.log),
		a.cfg.Classifier(),
		evaluator.Config{
			Params:      a.cfg.ClassifyParams(),
			Categories:  a.cfg.Categories(),
			Weights:     a.cfg.Weights(),
			Concurrency: a.cfg.Batch.Concurrency,
		},
		a.log,
	)
}
