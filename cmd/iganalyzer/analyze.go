package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"iganalyzer/pkg/analyzer"
	"iganalyzer/pkg/config"
	"iganalyzer/pkg/errors"
	"iganalyzer/pkg/logger"
	"iganalyzer/pkg/metrics"
	"iganalyzer/pkg/ui"
)

var (
	// Analyze command flags
	outputDir      string
	reportFile     string
	topN           int
	likesWeight    float64
	commentsWeight float64
	timezone       string
	location       string
	categoryFile   string
	metricsFile    string
	jsonOutput     bool
	notify         bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <input>",
	Short: "Analyze an export of Instagram post metadata",
	Long: `Analyze exported Instagram post metadata and write an analytics report.

The input may be:
  - A JSON array of post objects
  - A single post object
  - A GraphQL response with edges/node wrappers anywhere in the document
  - A directory of per-post JSON sidecar files

Records missing an id or timestamp are rejected and listed in the report's
diagnostics section; the remaining records are analyzed.`,
	Example: `  # Analyze a scraper export with default settings
  iganalyzer analyze posts.json

  # Write the report to a specific directory and rank the top 5 posts
  iganalyzer analyze posts.json --output-dir ./reports --top-n 5

  # Weight comments three times as much as likes
  iganalyzer analyze posts.json --comments-weight 3

  # Bucket posting hours in the creator's own timezone
  iganalyzer analyze ./sidecars --timezone local --location America/New_York

  # Print the report to stdout for piping into jq
  iganalyzer analyze posts.json --json | jq .summary`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	registerAnalyzeFlags(analyzeCmd)
}

func registerAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory the report is written to (default ./output)")
	cmd.Flags().StringVarP(&reportFile, "output", "o", "", "report file name or absolute path (default analytics_report.json)")
	cmd.Flags().IntVarP(&topN, "top-n", "n", 10, "number of top posts to rank")
	cmd.Flags().Float64Var(&likesWeight, "likes-weight", 1, "weight of likes in the engagement score")
	cmd.Flags().Float64Var(&commentsWeight, "comments-weight", 1, "weight of comments in the engagement score")
	cmd.Flags().StringVar(&timezone, "timezone", "utc", "timezone convention for hour and weekday buckets (utc, local)")
	cmd.Flags().StringVar(&location, "location", "", "IANA zone used with --timezone local (default host zone)")
	cmd.Flags().StringVar(&categoryFile, "categories", "", "YAML file mapping hashtags to theme categories")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report to stdout instead of a summary")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the analysis finishes")
}

// analyzeFlags collects the flags the user set explicitly, keyed the way
// config.MergeCommandLineFlags expects
func analyzeFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("output-dir") {
		flags["output-dir"] = outputDir
	}
	if changed("output") {
		flags["output"] = reportFile
	}
	if changed("top-n") {
		flags["top-n"] = topN
	}
	if changed("likes-weight") {
		flags["likes-weight"] = likesWeight
	}
	if changed("comments-weight") {
		flags["comments-weight"] = commentsWeight
	}
	if changed("timezone") {
		flags["timezone"] = timezone
	}
	if changed("location") {
		flags["location"] = location
	}
	if changed("categories") {
		flags["categories"] = categoryFile
	}
	if changed("metrics-file") {
		flags["metrics-file"] = metricsFile
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]

	cfg, err := config.Load(configFile, analyzeFlags(cmd))
	if err != nil {
		return errors.Config("failed to load configuration", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return errors.Config("failed to initialize logger", err)
	}
	logger.WithField("version", version).Info("iganalyzer starting")

	a, err := analyzer.New(cfg, logger.GetLogger(), metrics.NewCollector())
	if err != nil {
		return err
	}

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	ui.PrintInfo("Input", input)
	ui.PrintHighlight("[ANALYZING]")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r, err := a.Run(ctx, input)
	if err != nil {
		if r != nil && errors.IsSerialization(err) {
			// Show what was computed before failing
			ui.PrintSummary(r)
			ui.PrintWarning("Report could not be saved", cfg.ReportPath())
		}
		if notifier != nil {
			notifier.SendError("Analysis failed", err.Error())
		}
		return err
	}

	if jsonOutput {
		return r.Encode(cmd.OutOrStdout())
	}

	ui.PrintSummary(r)
	ui.PrintSuccess(fmt.Sprintf("[REPORT WRITTEN] %s", cfg.ReportPath()))
	if notifier != nil {
		notifier.SendSuccess("Analysis complete",
			fmt.Sprintf("%d posts analyzed, %d rejected", r.Diagnostics.Accepted, r.Diagnostics.Rejected))
	}
	return nil
}
