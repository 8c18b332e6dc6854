package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"iganalyzer/pkg/normalize"
)

// Timezone conventions for hour/weekday bucketing
const (
	TimezoneUTC   = "utc"
	TimezoneLocal = "local"
)

// Config holds all configuration options for the analyzer
type Config struct {
	// Analysis parameters
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Input settings
	Input InputConfig `yaml:"input" json:"input"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// AnalysisConfig holds the tunable parameters of the analytics engine
type AnalysisConfig struct {
	TopN               int               `yaml:"top_n" json:"top_n" validate:"gte=0"`
	ScoreWeights       ScoreWeights      `yaml:"score_weights" json:"score_weights"`
	TimezoneConvention string            `yaml:"timezone_convention" json:"timezone_convention" validate:"oneof=utc local"`
	Location           string            `yaml:"location" json:"location"`
	HashtagCategoryMap map[string]string `yaml:"hashtag_category_map" json:"hashtag_category_map,omitempty"`
	CategoryFile       string            `yaml:"category_file" json:"category_file,omitempty"`
	TopKHashtags       int               `yaml:"top_k_hashtags" json:"top_k_hashtags" validate:"gte=0"`
	TopKTokens         int               `yaml:"top_k_tokens" json:"top_k_tokens" validate:"gte=0"`
	TopKMentions       int               `yaml:"top_k_mentions" json:"top_k_mentions" validate:"gte=0"`
	MinTokenLength     int               `yaml:"min_token_length" json:"min_token_length" validate:"gte=1"`
	TierThresholds     TierThresholds    `yaml:"tier_thresholds" json:"tier_thresholds"`
}

// ScoreWeights are the coefficients of the engagement score
type ScoreWeights struct {
	Likes    float64 `yaml:"likes" json:"likes" validate:"gte=0"`
	Comments float64 `yaml:"comments" json:"comments" validate:"gte=0"`
}

// TierThresholds are the average-likes boundaries of the creator tier label
type TierThresholds struct {
	High    float64 `yaml:"high" json:"high" validate:"gtefield=Growing"`
	Growing float64 `yaml:"growing" json:"growing" validate:"gte=0"`
}

// InputConfig holds input discovery configuration
type InputConfig struct {
	Skip    []string `yaml:"skip" json:"skip"`
	Workers int      `yaml:"workers" json:"workers" validate:"gte=1,lte=64"`
}

// OutputConfig holds output location configuration
type OutputConfig struct {
	Directory   string `yaml:"directory" json:"directory" validate:"required"`
	ReportFile  string `yaml:"report_file" json:"report_file" validate:"required"`
	MetricsFile string `yaml:"metrics_file" json:"metrics_file,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" validate:"gte=0"`
	MaxAge     int    `yaml:"max_age" json:"max_age" validate:"gte=0"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			TopN: 10,
			ScoreWeights: ScoreWeights{
				Likes:    1,
				Comments: 1,
			},
			TimezoneConvention: TimezoneUTC,
			TopKHashtags:       10,
			TopKTokens:         10,
			TopKMentions:       10,
			MinTokenLength:     3,
			TierThresholds: TierThresholds{
				High:    5000,
				Growing: 1000,
			},
		},
		Input: InputConfig{
			Skip:    []string{"analytics_report*.json"},
			Workers: 4,
		},
		Output: OutputConfig{
			Directory:  "./output",
			ReportFile: "analytics_report.json",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if v := os.Getenv("IGANALYZER_TOP_N"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IGANALYZER_TOP_N: %w", err))
		} else {
			c.Analysis.TopN = n
		}
	}
	if v := os.Getenv("IGANALYZER_LIKES_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("IGANALYZER_LIKES_WEIGHT: %w", err))
		} else {
			c.Analysis.ScoreWeights.Likes = f
		}
	}
	if v := os.Getenv("IGANALYZER_COMMENTS_WEIGHT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("IGANALYZER_COMMENTS_WEIGHT: %w", err))
		} else {
			c.Analysis.ScoreWeights.Comments = f
		}
	}
	if v := os.Getenv("IGANALYZER_TIMEZONE"); v != "" {
		c.Analysis.TimezoneConvention = strings.ToLower(v)
	}
	if v := os.Getenv("IGANALYZER_LOCATION"); v != "" {
		c.Analysis.Location = v
	}
	if v := os.Getenv("IGANALYZER_CATEGORY_FILE"); v != "" {
		c.Analysis.CategoryFile = v
	}

	if v := os.Getenv("IGANALYZER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IGANALYZER_WORKERS: %w", err))
		} else {
			c.Input.Workers = n
		}
	}

	if v := os.Getenv("IGANALYZER_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("IGANALYZER_METRICS_FILE"); v != "" {
		c.Output.MetricsFile = v
	}

	if v := os.Getenv("IGANALYZER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("IGANALYZER_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadCategoryFile merges a YAML hashtag→category map into the analysis
// config. Keys are compared case-insensitively and without '#'. Entries
// already present in the config win; among file keys that match the same
// hashtag the first in sorted order wins.
func (c *Config) LoadCategoryFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read category file: %w", err)
	}

	var categories map[string]string
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return fmt.Errorf("failed to parse category file: %w", err)
	}

	if c.Analysis.HashtagCategoryMap == nil {
		c.Analysis.HashtagCategoryMap = make(map[string]string, len(categories))
	}
	taken := make(map[string]bool, len(c.Analysis.HashtagCategoryMap))
	for tag := range c.Analysis.HashtagCategoryMap {
		taken[foldTag(tag)] = true
	}

	tags := make([]string, 0, len(categories))
	for tag := range categories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for _, tag := range tags {
		key := foldTag(tag)
		if key == "" || taken[key] {
			continue
		}
		taken[key] = true
		c.Analysis.HashtagCategoryMap[key] = categories[tag]
	}
	return nil
}

func foldTag(tag string) string {
	return normalize.Fold(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".iganalyzer.yaml",
		".iganalyzer.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "iganalyzer", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "iganalyzer", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".iganalyzer.yaml"),
		filepath.Join(os.Getenv("HOME"), ".iganalyzer.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s: failed %q constraint", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	for _, v := range []struct {
		name  string
		value float64
	}{
		{"score_weights.likes", c.Analysis.ScoreWeights.Likes},
		{"score_weights.comments", c.Analysis.ScoreWeights.Comments},
		{"tier_thresholds.high", c.Analysis.TierThresholds.High},
		{"tier_thresholds.growing", c.Analysis.TierThresholds.Growing},
	} {
		if math.IsInf(v.value, 0) || math.IsNaN(v.value) {
			errs = append(errs, fmt.Errorf("%s must be a finite number", v.name))
		}
	}

	if c.Analysis.ScoreWeights.Likes == 0 && c.Analysis.ScoreWeights.Comments == 0 {
		errs = append(errs, errors.New("at least one score weight must be positive"))
	}

	if _, err := c.Analysis.ResolveLocation(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveLocation returns the zone used for hour and weekday bucketing.
// The utc convention always yields time.UTC; local uses Location when set and
// the host zone otherwise.
func (a AnalysisConfig) ResolveLocation() (*time.Location, error) {
	if strings.ToLower(a.TimezoneConvention) != TimezoneLocal {
		return time.UTC, nil
	}
	if a.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(a.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", a.Location, err)
	}
	return loc, nil
}

// ReportPath returns the full path of the report file
func (c *Config) ReportPath() string {
	if filepath.IsAbs(c.Output.ReportFile) {
		return c.Output.ReportFile
	}
	return filepath.Join(c.Output.Directory, c.Output.ReportFile)
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if topN, ok := flags["top-n"].(int); ok {
		c.Analysis.TopN = topN
	}
	if w, ok := flags["likes-weight"].(float64); ok {
		c.Analysis.ScoreWeights.Likes = w
	}
	if w, ok := flags["comments-weight"].(float64); ok {
		c.Analysis.ScoreWeights.Comments = w
	}
	if tz, ok := flags["timezone"].(string); ok && tz != "" {
		c.Analysis.TimezoneConvention = strings.ToLower(tz)
	}
	if loc, ok := flags["location"].(string); ok && loc != "" {
		c.Analysis.Location = loc
	}
	if file, ok := flags["categories"].(string); ok && file != "" {
		c.Analysis.CategoryFile = file
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.ReportFile = output
	}
	if metrics, ok := flags["metrics-file"].(string); ok && metrics != "" {
		c.Output.MetricsFile = metrics
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".iganalyzer.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	if config.Analysis.CategoryFile != "" {
		if err := config.LoadCategoryFile(config.Analysis.CategoryFile); err != nil {
			return nil, err
		}
	}

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
