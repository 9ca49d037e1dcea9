// Package config provides configuration loading and structs for the sgns tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	sgns "github.com/n0madic/go-sgns"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Training   TrainingConfig   `yaml:"training"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
}

// TrainingConfig holds the skip-gram hyperparameters.
type TrainingConfig struct {
	EmbeddingDim     int     `yaml:"embedding_dim"`
	WindowSize       *int    `yaml:"window_size"`
	NegativeRate     int     `yaml:"negative_rate"`
	MinCount         *int    `yaml:"min_count"`
	BatchSize        int     `yaml:"batch_size"`
	Epochs           int     `yaml:"epochs"`
	LearningRate     float64 `yaml:"learning_rate"`
	Epsilon          float64 `yaml:"epsilon"`
	KeepPartialBatch bool    `yaml:"keep_partial_batch"`
	Seed             int64   `yaml:"seed"`
}

// WindowSizeOrDefault returns the context window; an explicit 0 yields no pairs.
func (t *TrainingConfig) WindowSizeOrDefault() int {
	if t.WindowSize != nil {
		return *t.WindowSize
	}
	return sgns.WINDOW_SIZE
}

// MinCountOrDefault returns the pruning threshold; an explicit 0 disables pruning.
func (t *TrainingConfig) MinCountOrDefault() int {
	if t.MinCount != nil {
		return *t.MinCount
	}
	return sgns.MIN_COUNT
}

// ToSGNS converts the section to trainer hyperparameters.
func (t *TrainingConfig) ToSGNS() sgns.Config {
	return sgns.Config{
		EmbeddingDim:     t.EmbeddingDim,
		WindowSize:       t.WindowSizeOrDefault(),
		NegativeRate:     t.NegativeRate,
		MinCount:         t.MinCountOrDefault(),
		BatchSize:        t.BatchSize,
		Epochs:           t.Epochs,
		LearningRate:     t.LearningRate,
		Epsilon:          t.Epsilon,
		KeepPartialBatch: t.KeepPartialBatch,
		Seed:             t.Seed,
	}
}

// SimilarityConfig holds query settings.
type SimilarityConfig struct {
	OOVValue float64 `yaml:"oov_value"`
	TopK     int     `yaml:"top_k"`
}

// StorageConfig selects where trained models are kept.
type StorageConfig struct {
	Backend string `yaml:"backend"` // dir or sqlite
	Path    string `yaml:"path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.Storage.Path = expandPath(cfg.Storage.Path, filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the sections that are not checked by the trainer itself.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "dir", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q (want dir or sqlite)", c.Storage.Backend)
	}
	if c.Similarity.TopK <= 0 {
		return fmt.Errorf("similarity.top_k must be positive, got %d", c.Similarity.TopK)
	}
	return c.Training.ToSGNS().Validate()
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
