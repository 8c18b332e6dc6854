package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"iganalyzer/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iganalyzer",
	Short: "Engagement and posting pattern analytics for Instagram post exports",
	Long: `iganalyzer turns exported Instagram post metadata into a single analytics report.

Features:
  - Tolerant ingestion of scraper, GraphQL and sidecar exports
  - Engagement totals, averages and medians with explicit "undefined" values
  - Weekday, hour and monthly posting patterns
  - Hashtag, mention and caption keyword profiling with theme detection
  - Deterministic top-post ranking
  - Per-record rejection and warning diagnostics
  - Optional Prometheus textfile metrics`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuietMode(true)
		}
		if jsonOutput {
			// Stdout carries the report
			ui.SetOutput(os.Stderr)
		}
		if noColor {
			ui.SetColorEnabled(false)
		}

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && !jsonOutput {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./iganalyzer.yaml or $HOME/.iganalyzer.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`iganalyzer {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
