package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"iganalyzer/pkg/config"
	"iganalyzer/pkg/ui"
)

const defaultConfigPath = ".iganalyzer.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage iganalyzer configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGANALYZER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.iganalyzer.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources:
  - Environment variables
  - Configuration file
  - Default values`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Timezone convention and location
  - Category file accessibility`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# iganalyzer configuration file
#
# Every option can also be set with an environment variable prefixed with
# IGANALYZER_, for example IGANALYZER_TOP_N or IGANALYZER_TIMEZONE.

# Analysis parameters
analysis:
  # Number of posts in the top-post ranking
  top_n: 10

  # Engagement score = likes * likes_weight + comments * comments_weight
  score_weights:
    likes: 1
    comments: 1

  # Bucket posting hours and weekdays in utc or local time
  timezone_convention: "utc"

  # IANA zone used with the local convention (empty = host zone)
  location: ""

  # Hashtag to theme mapping; hashtags are matched case-insensitively
  hashtag_category_map:
    startup: "entrepreneurship"
    business: "entrepreneurship"
    mindset: "personal growth"
    productivity: "productivity"
    design: "creativity"
    learning: "education"

  # Optional YAML file with additional hashtag categories
  category_file: ""

  # Sizes of the hashtag, keyword and mention rankings
  top_k_hashtags: 10
  top_k_tokens: 10
  top_k_mentions: 10

  # Shortest caption word counted as a keyword
  min_token_length: 3

  # Average likes above which a creator is labelled high-engagement or growing
  tier_thresholds:
    high: 5000
    growing: 1000

# Input discovery
input:
  # Glob patterns skipped when the input is a directory
  skip:
    - "analytics_report*.json"

  # Number of sidecar files read concurrently
  workers: 4

# Output locations
output:
  # Directory the report is written to
  directory: "./output"

  # Report file name, or an absolute path
  report_file: "analytics_report.json"

  # Prometheus textfile metrics path (optional)
  metrics_file: ""

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""

  # Maximum log file size in MB
  max_size: 100

  # Maximum number of old log files to keep
  max_backups: 3

  # Maximum age of log files in days
  max_age: 7

  # Compress rotated log files
  compress: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		return fmt.Errorf("remove %s first to overwrite it", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created")
	ui.PrintInfo("Path", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration is invalid")
		return err
	}

	loc, _ := cfg.Analysis.ResolveLocation()
	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Report", cfg.ReportPath())
	ui.PrintInfo("Timezone", loc.String())
	return nil
}
