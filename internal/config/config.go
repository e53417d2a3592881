package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoggingConfig controls log level and output format.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DocsConfig configures document ingestion and chunking.
type DocsConfig struct {
	Path         string `yaml:"path"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Strategy     string `yaml:"strategy"`
}

// EmbedderConfig configures the embedding capability.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeneratorConfig configures the text-generation capability and its retry
// behavior under rate limiting.
type GeneratorConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
	MaxAttempts int     `yaml:"max_attempts"`
	RetryBaseMS int     `yaml:"retry_base_ms"`
	RetryMaxMS  int     `yaml:"retry_max_ms"`
}

// ClassifierConfig selects the intent classifier implementation.
type ClassifierConfig struct {
	Type string `yaml:"type"`
}

// IndexConfig locates the persisted vector index artifact.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// RetrievalConfig configures top-k retrieval and snippet rendering.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k"`
	SnippetMaxChars int `yaml:"snippet_max_chars"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Docs       DocsConfig       `yaml:"docs"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Index      IndexConfig      `yaml:"index"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
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
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragrouter/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragrouter/config.yaml and returns them.
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

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragrouter", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		Docs: DocsConfig{
			Path:         "data/source_docs",
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Strategy:     "window",
		},
		Embedder: EmbedderConfig{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "text-embedding-3-small",
			BatchSize:   32,
			TimeoutSecs: 30,
		},
		Generator: GeneratorConfig{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   512,
			TimeoutSecs: 15,
			MaxAttempts: 5,
			RetryBaseMS: 1000,
			RetryMaxMS:  10000,
		},
		Classifier: ClassifierConfig{Type: "llm"},
		Index:      IndexConfig{Path: "data/index.json"},
		Retrieval:  RetrievalConfig{TopK: 3, SnippetMaxChars: 300},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Docs.ChunkSize == 0 {
		cfg.Docs.ChunkSize = def.Docs.ChunkSize
		if cfg.Docs.ChunkOverlap == 0 {
			cfg.Docs.ChunkOverlap = def.Docs.ChunkOverlap
		}
	}
	if cfg.Docs.Strategy == "" {
		cfg.Docs.Strategy = def.Docs.Strategy
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = def.Embedder.APIKeyEnv
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = def.Embedder.Model
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = def.Embedder.BatchSize
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = def.Embedder.TimeoutSecs
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = def.Generator.APIKeyEnv
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = def.Generator.Model
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = def.Generator.MaxTokens
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = def.Generator.TimeoutSecs
	}
	if cfg.Generator.MaxAttempts == 0 {
		cfg.Generator.MaxAttempts = def.Generator.MaxAttempts
	}
	if cfg.Generator.RetryBaseMS == 0 {
		cfg.Generator.RetryBaseMS = def.Generator.RetryBaseMS
	}
	if cfg.Generator.RetryMaxMS == 0 {
		cfg.Generator.RetryMaxMS = def.Generator.RetryMaxMS
	}
	if cfg.Classifier.Type == "" {
		cfg.Classifier.Type = def.Classifier.Type
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = def.Index.Path
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.SnippetMaxChars == 0 {
		cfg.Retrieval.SnippetMaxChars = def.Retrieval.SnippetMaxChars
	}
}
