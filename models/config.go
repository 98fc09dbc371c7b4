// Package models defines data structures for configuration and frequency tables.
package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/weirdness/pkg/internalerr"
)

const (
	DefaultLanguage       = "eng"
	DefaultVersion        = "20120701"
	DefaultMarker         = "_"
	DefaultTopN           = 50
	DefaultMinWeirdness   = 1.0
	DefaultOutputTemplate = "%s_GoogleUnigrams.csv"
)

// BuildConfig holds runtime configuration for reference table builds.
type BuildConfig struct {
	Language    string   `yaml:"language"`
	Version     string   `yaml:"version"`
	Keys        []string `yaml:"keys"`
	Marker      string   `yaml:"marker"`
	SourceDir   string   `yaml:"source_dir"`
	BaseURL     string   `yaml:"base_url"`
	WorkerCount int      `yaml:"workers"`
	Output      string   `yaml:"output"`
	Strict      bool     `yaml:"strict"`
}

// ScoreConfig holds runtime configuration for weirdness scoring.
type ScoreConfig struct {
	Table         string  `yaml:"table"`
	TopN          int     `yaml:"top_n"`
	MinWeirdness  float64 `yaml:"min_weirdness"`
	DropStopwords bool    `yaml:"drop_stopwords"`
	Language      string  `yaml:"language"`
}

// Config is the optional YAML config file. CLI flags override its values.
type Config struct {
	Build BuildConfig `yaml:"build"`
	Score ScoreConfig `yaml:"score"`
	DB    string      `yaml:"db"`
}

// DefaultKeys returns the partition keys a..z.
func DefaultKeys() []string {
	keys := make([]string, 0, 26)
	for r := 'a'; r <= 'z'; r++ {
		keys = append(keys, string(r))
	}
	return keys
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			Language: DefaultLanguage,
			Version:  DefaultVersion,
			Keys:     DefaultKeys(),
			Marker:   DefaultMarker,
			Output:   fmt.Sprintf(DefaultOutputTemplate, strings.ToUpper(DefaultLanguage)),
		},
		Score: ScoreConfig{
			TopN:         DefaultTopN,
			MinWeirdness: DefaultMinWeirdness,
			Language:     DefaultLanguage,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the build section.
func (b *BuildConfig) Validate() error {
	if len(b.Keys) == 0 {
		return fmt.Errorf("%w: no partition keys", internalerr.ErrInvalidConfig)
	}
	if b.Language == "" {
		return fmt.Errorf("%w: language is required", internalerr.ErrInvalidConfig)
	}
	if b.Marker == "" {
		return fmt.Errorf("%w: multi-token marker must not be empty", internalerr.ErrInvalidConfig)
	}
	if b.WorkerCount < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", internalerr.ErrInvalidConfig, b.WorkerCount)
	}
	if b.Output == "" {
		return fmt.Errorf("%w: output path is required", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Validate checks the score section.
func (s *ScoreConfig) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("%w: reference table path is required", internalerr.ErrInvalidConfig)
	}
	return nil
}
