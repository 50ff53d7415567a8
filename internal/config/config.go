package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EmbedderConfig configures the Gemini embeddings client.
type EmbedderConfig struct {
	Model             string  `yaml:"model"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Dimension         int     `yaml:"dimension" validate:"gt=0"`
	BatchSize         int     `yaml:"batch_size" validate:"gt=0"`
	TimeoutSecs       int     `yaml:"timeout_secs" validate:"gt=0"`
	MaxAttempts       int     `yaml:"max_attempts" validate:"gt=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
}

// CompleterConfig configures the Claude completion client.
type CompleterConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=1"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gt=0"`
}

// ChunkerConfig configures how documents are split into passages.
type ChunkerConfig struct {
	TargetSize int `yaml:"target_size" validate:"gt=0"`
	Overlap    int `yaml:"overlap" validate:"gte=0"`
	MaxChunks  int `yaml:"max_chunks" validate:"gt=0"`
}

// StoreConfig locates the durable vector store.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// SearchConfig carries retrieval tuning. The similarity floor and top-K are
// empirically tuned configuration.
type SearchConfig struct {
	TopK            int     `yaml:"top_k" validate:"gt=0"`
	MinSimilarity   float64 `yaml:"min_similarity" validate:"gte=0,lte=1"`
	ContextBudget   int     `yaml:"context_budget" validate:"gt=0"`
	AnswerMaxTokens int     `yaml:"answer_max_tokens" validate:"gt=0"`
}

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"gt=0,lte=65535"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Completer CompleterConfig `yaml:"completer"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Store     StoreConfig     `yaml:"store"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/aigist/config.yaml.
// If neither exists, it writes defaults to ~/.config/aigist/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if cfg.Chunker.Overlap >= cfg.Chunker.TargetSize {
		return fmt.Errorf("chunker overlap %d must be smaller than target size %d",
			cfg.Chunker.Overlap, cfg.Chunker.TargetSize)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aigist", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "gemini-embedding-001"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "GEMINI_API_KEY"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = 1536
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 64
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Embedder.MaxAttempts == 0 {
		cfg.Embedder.MaxAttempts = 4
	}
	if cfg.Embedder.RequestsPerSecond == 0 {
		cfg.Embedder.RequestsPerSecond = 5
	}

	if cfg.Completer.Model == "" {
		cfg.Completer.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Completer.APIKeyEnv == "" {
		cfg.Completer.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
	if cfg.Completer.Temperature == 0 {
		cfg.Completer.Temperature = 0.7
	}
	if cfg.Completer.TimeoutSecs == 0 {
		cfg.Completer.TimeoutSecs = 60
	}

	if cfg.Chunker.TargetSize == 0 {
		cfg.Chunker.TargetSize = 1000
	}
	if cfg.Chunker.Overlap == 0 {
		cfg.Chunker.Overlap = 100
	}
	if cfg.Chunker.MaxChunks == 0 {
		cfg.Chunker.MaxChunks = 2000
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = "data/aigist.db"
	}

	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 4
	}
	if cfg.Search.MinSimilarity == 0 {
		cfg.Search.MinSimilarity = 0.25
	}
	if cfg.Search.ContextBudget == 0 {
		cfg.Search.ContextBudget = 8000
	}
	if cfg.Search.AnswerMaxTokens == 0 {
		cfg.Search.AnswerMaxTokens = 500
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
}
