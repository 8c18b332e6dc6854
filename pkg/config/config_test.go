package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)

	// Analysis defaults
	assert.Equal(t, 10, cfg.Analysis.TopN)
	assert.Equal(t, 1.0, cfg.Analysis.ScoreWeights.Likes)
	assert.Equal(t, 1.0, cfg.Analysis.ScoreWeights.Comments)
	assert.Equal(t, TimezoneUTC, cfg.Analysis.TimezoneConvention)
	assert.Empty(t, cfg.Analysis.Location)
	assert.Nil(t, cfg.Analysis.HashtagCategoryMap)
	assert.Equal(t, 10, cfg.Analysis.TopKHashtags)
	assert.Equal(t, 10, cfg.Analysis.TopKTokens)
	assert.Equal(t, 10, cfg.Analysis.TopKMentions)
	assert.Equal(t, 3, cfg.Analysis.MinTokenLength)
	assert.Equal(t, 5000.0, cfg.Analysis.TierThresholds.High)
	assert.Equal(t, 1000.0, cfg.Analysis.TierThresholds.Growing)

	// Output defaults
	assert.Equal(t, "./output", cfg.Output.Directory)
	assert.Equal(t, "analytics_report.json", cfg.Output.ReportFile)
	assert.Empty(t, cfg.Output.MetricsFile)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, 100, cfg.Logging.MaxSize)
	assert.Equal(t, 3, cfg.Logging.MaxBackups)
	assert.Equal(t, 7, cfg.Logging.MaxAge)
	assert.False(t, cfg.Logging.Compress)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGANALYZER_TOP_N", "5")
	t.Setenv("IGANALYZER_LIKES_WEIGHT", "0.5")
	t.Setenv("IGANALYZER_COMMENTS_WEIGHT", "2")
	t.Setenv("IGANALYZER_TIMEZONE", "LOCAL")
	t.Setenv("IGANALYZER_LOCATION", "Europe/Helsinki")
	t.Setenv("IGANALYZER_OUTPUT_DIR", "/tmp/reports")
	t.Setenv("IGANALYZER_METRICS_FILE", "/tmp/reports/run.prom")
	t.Setenv("IGANALYZER_LOG_LEVEL", "debug")
	t.Setenv("IGANALYZER_WORKERS", "8")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, 5, cfg.Analysis.TopN)
	assert.Equal(t, 0.5, cfg.Analysis.ScoreWeights.Likes)
	assert.Equal(t, 2.0, cfg.Analysis.ScoreWeights.Comments)
	assert.Equal(t, TimezoneLocal, cfg.Analysis.TimezoneConvention)
	assert.Equal(t, "Europe/Helsinki", cfg.Analysis.Location)
	assert.Equal(t, "/tmp/reports", cfg.Output.Directory)
	assert.Equal(t, "/tmp/reports/run.prom", cfg.Output.MetricsFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Input.Workers)
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("IGANALYZER_TOP_N", "ten")
	t.Setenv("IGANALYZER_LIKES_WEIGHT", "heavy")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "IGANALYZER_TOP_N")
	assert.Contains(t, err.Error(), "IGANALYZER_LIKES_WEIGHT")
	assert.Equal(t, 10, cfg.Analysis.TopN)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml file", func(t *testing.T) {
		tempDir := t.TempDir()
		configPath := filepath.Join(tempDir, "config.yaml")

		content := `
analysis:
  top_n: 3
  score_weights:
    likes: 1
    comments: 4
  timezone_convention: utc
  hashtag_category_map:
    gym: fitness
    travel: lifestyle
output:
  directory: /tmp/out
  report_file: report.json
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(configPath))

		assert.Equal(t, 3, cfg.Analysis.TopN)
		assert.Equal(t, 4.0, cfg.Analysis.ScoreWeights.Comments)
		assert.Equal(t, map[string]string{"gym": "fitness", "travel": "lifestyle"}, cfg.Analysis.HashtagCategoryMap)
		assert.Equal(t, "/tmp/out", cfg.Output.Directory)
		assert.Equal(t, "report.json", cfg.Output.ReportFile)
		assert.Equal(t, "warn", cfg.Logging.Level)

		// Untouched values keep their defaults
		assert.Equal(t, 10, cfg.Analysis.TopKHashtags)
	})

	t.Run("invalid yaml file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("analysis: [unclosed"), 0644))

		cfg := DefaultConfig()
		err := cfg.LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("config in current directory", func(t *testing.T) {
		tempDir := t.TempDir()
		oldDir, _ := os.Getwd()
		defer os.Chdir(oldDir)

		require.NoError(t, os.Chdir(tempDir))
		require.NoError(t, os.WriteFile(".iganalyzer.yaml", []byte("analysis:\n  top_n: 1\n"), 0644))

		cfg := DefaultConfig()
		assert.Equal(t, ".iganalyzer.yaml", cfg.findConfigFile())
	})

	t.Run("no config file found", func(t *testing.T) {
		tempDir := t.TempDir()
		oldDir, _ := os.Getwd()
		defer os.Chdir(oldDir)

		require.NoError(t, os.Chdir(tempDir))
		t.Setenv("HOME", tempDir)

		cfg := DefaultConfig()
		assert.Empty(t, cfg.findConfigFile())
	})
}

func TestLoadCategoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "\"#Gym\": fitness\nworkout: fitness\ntravel: lifestyle\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	cfg.Analysis.HashtagCategoryMap = map[string]string{"travel": "adventure"}
	require.NoError(t, cfg.LoadCategoryFile(path))

	assert.Equal(t, map[string]string{
		"gym":     "fitness",
		"workout": "fitness",
		"travel":  "adventure",
	}, cfg.Analysis.HashtagCategoryMap)
}

func TestLoadCategoryFile_CaseInsensitiveKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "travel: lifestyle\nTRAVEL: other\n\"#Hike\": outdoors\nhike: walking\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	for i := 0; i < 20; i++ {
		cfg := DefaultConfig()
		cfg.Analysis.HashtagCategoryMap = map[string]string{"Travel": "adventure"}
		require.NoError(t, cfg.LoadCategoryFile(path))

		assert.Equal(t, map[string]string{
			"Travel": "adventure",
			"hike":   "outdoors",
		}, cfg.Analysis.HashtagCategoryMap)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		setupConfig   func(*Config)
		expectError   bool
		errorContains []string
	}{
		{
			name:        "valid config",
			setupConfig: func(cfg *Config) {},
			expectError: false,
		},
		{
			name: "negative top n",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.TopN = -1
			},
			expectError:   true,
			errorContains: []string{"Analysis.TopN"},
		},
		{
			name: "unknown timezone convention",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.TimezoneConvention = "mars"
			},
			expectError:   true,
			errorContains: []string{"TimezoneConvention", "oneof"},
		},
		{
			name: "unknown location",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.TimezoneConvention = TimezoneLocal
				cfg.Analysis.Location = "Nowhere/Atlantis"
			},
			expectError:   true,
			errorContains: []string{"invalid location"},
		},
		{
			name: "zero weights",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.ScoreWeights = ScoreWeights{}
			},
			expectError:   true,
			errorContains: []string{"at least one score weight must be positive"},
		},
		{
			name: "negative weight",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.ScoreWeights.Comments = -2
			},
			expectError:   true,
			errorContains: []string{"ScoreWeights.Comments"},
		},
		{
			name: "infinite weight",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.ScoreWeights.Likes = math.Inf(1)
			},
			expectError:   true,
			errorContains: []string{"score_weights.likes must be a finite number"},
		},
		{
			name: "nan weight",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.ScoreWeights.Comments = math.NaN()
			},
			expectError:   true,
			errorContains: []string{"score_weights.comments must be a finite number"},
		},
		{
			name: "infinite tier threshold",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.TierThresholds.High = math.Inf(1)
			},
			expectError:   true,
			errorContains: []string{"tier_thresholds.high must be a finite number"},
		},
		{
			name: "tier thresholds inverted",
			setupConfig: func(cfg *Config) {
				cfg.Analysis.TierThresholds = TierThresholds{High: 10, Growing: 100}
			},
			expectError:   true,
			errorContains: []string{"TierThresholds.High"},
		},
		{
			name: "missing output settings",
			setupConfig: func(cfg *Config) {
				cfg.Output.Directory = ""
				cfg.Output.ReportFile = ""
			},
			expectError:   true,
			errorContains: []string{"Output.Directory", "Output.ReportFile"},
		},
		{
			name: "no readers",
			setupConfig: func(cfg *Config) {
				cfg.Input.Workers = 0
			},
			expectError:   true,
			errorContains: []string{"Input.Workers"},
		},
		{
			name: "invalid log level",
			setupConfig: func(cfg *Config) {
				cfg.Logging.Level = "invalid"
			},
			expectError:   true,
			errorContains: []string{"invalid log level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setupConfig(cfg)

			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				for _, contains := range tt.errorContains {
					assert.Contains(t, err.Error(), contains)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveLocation(t *testing.T) {
	a := DefaultConfig().Analysis

	loc, err := a.ResolveLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	a.TimezoneConvention = TimezoneLocal
	loc, err = a.ResolveLocation()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	a.Location = "Asia/Tokyo"
	loc, err = a.ResolveLocation()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"top-n":           3,
		"likes-weight":    0.25,
		"comments-weight": 5.0,
		"timezone":        "LOCAL",
		"output-dir":      "/tmp/flags",
		"output":          "flags.json",
		"metrics-file":    "/tmp/flags/run.prom",
		"log-level":       "error",
		"unknown-flag":    "ignored",
	})

	assert.Equal(t, 3, cfg.Analysis.TopN)
	assert.Equal(t, 0.25, cfg.Analysis.ScoreWeights.Likes)
	assert.Equal(t, 5.0, cfg.Analysis.ScoreWeights.Comments)
	assert.Equal(t, TimezoneLocal, cfg.Analysis.TimezoneConvention)
	assert.Equal(t, "/tmp/flags", cfg.Output.Directory)
	assert.Equal(t, "flags.json", cfg.Output.ReportFile)
	assert.Equal(t, "/tmp/flags/run.prom", cfg.Output.MetricsFile)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, filepath.Join("/tmp/flags", "flags.json"), cfg.ReportPath())
}

func TestReportPathAbsolute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.ReportFile = "/var/tmp/report.json"
	assert.Equal(t, "/var/tmp/report.json", cfg.ReportPath())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.TopN = 7
	cfg.Analysis.HashtagCategoryMap = map[string]string{"gym": "fitness"}
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))
	assert.Equal(t, 7, loaded.Analysis.TopN)
	assert.Equal(t, "fitness", loaded.Analysis.HashtagCategoryMap["gym"])
}

func TestLoadPrecedence(t *testing.T) {
	tempDir := t.TempDir()
	oldDir, _ := os.Getwd()
	defer os.Chdir(oldDir)
	require.NoError(t, os.Chdir(tempDir))
	t.Setenv("HOME", tempDir)

	configPath := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("analysis:\n  top_n: 3\n  top_k_tokens: 4\n"), 0644))
	t.Setenv("IGANALYZER_TOP_N", "6")

	cfg, err := Load(configPath, map[string]interface{}{"top-n": 8})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Analysis.TopN)
	assert.Equal(t, 4, cfg.Analysis.TopKTokens)

	cfg, err = Load(configPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Analysis.TopN)

	_, err = Load(configPath, map[string]interface{}{"top-n": -4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
