package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nps-insights-go/internal/aggregator"
	"nps-insights-go/internal/config"
	"nps-insights-go/internal/logger"
)

// Linker flags.
var (
	version = "dev"
	commit  = "none"
)

var rootCtx = context.Background()

// v collects defaults, .env, environment and flags.
var v = viper.New()

// cfg holds the validated configuration after sharedSetup.
var cfg = &config.Config{}

var log *logger.Logger

var rootCmd = &cobra.Command{
	Use:           "nps",
	Short:         "Compute Net Promoter Scores and group survey comments.",
	Long:          `nps reads a CSV or XLSX export of survey responses and reports NPS overall and per category, with comments grouped by sentiment or topic.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	// stdout carries reports
	if os.Getenv("LOG_OUTPUT") == "" {
		_ = os.Setenv("LOG_OUTPUT", "stderr")
	}
	log = logger.New()

	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("classifier", config.StrategySentiment, "comment classifier: sentiment or labels")
	pf.Float64("sentiment-threshold", 0.7, "compound score at or above which a comment is positive")
	pf.String("label-backend", config.BackendGazetteer, "label backend: gazetteer or llm")
	pf.String("label-model", "labels.json", "gazetteer vocabulary file")
	pf.Int("promoter", 5, "lowest rating counted as promoter")
	pf.Int("detractor", 3, "highest rating counted as detractor")

	bind := map[string]string{
		"LOG_LEVEL":                    "log-level",
		"CLASSIFIER_STRATEGY":          "classifier",
		"SENTIMENT_POSITIVE_THRESHOLD": "sentiment-threshold",
		"LABEL_BACKEND":                "label-backend",
		"LABEL_MODEL_PATH":             "label-model",
		"NPS_PROMOTER_THRESHOLD":       "promoter",
		"NPS_DETRACTOR_THRESHOLD":      "detractor",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(reportCmd, summaryCmd, versionCmd)
}

// sharedSetup resolves and validates configuration for commands that need it.
func sharedSetup(_ *cobra.Command, _ []string) error {
	loaded, err := config.LoadWith(v)
	if err != nil {
		return err
	}
	if err := aggregator.FromConfig(loaded.NPS).Validate(); err != nil {
		return err
	}
	*cfg = *loaded
	// package loggers read these directly
	_ = os.Setenv("LOG_LEVEL", cfg.Log.Level)
	_ = os.Setenv("ENVIRONMENT", cfg.Environment)
	log = logger.New()
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nps %s (%s)\n", version, commit)
	},
}
