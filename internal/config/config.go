package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	caseerr "github.com/caselens/caselens/internal/errors"
)

// Config represents the complete CaseLens configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Chunking   ChunkingConfig   `yaml:"chunking" json:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// SearchConfig configures hybrid search parameters.
// Weights are configurable via:
//  1. User config (~/.config/caselens/config.yaml)
//  2. Project config (.caselens.yaml)
//  3. Env vars (CASELENS_LEXICAL_WEIGHT, CASELENS_SEMANTIC_WEIGHT) - highest priority
type SearchConfig struct {
	// LexicalWeight is the weight applied to normalized BM25 scores.
	LexicalWeight float64 `yaml:"lexical_weight" json:"lexical_weight"`

	// SemanticWeight is the weight applied to normalized vector similarities.
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`

	// TopK is the default number of fused results returned.
	TopK int `yaml:"top_k" json:"top_k"`

	// SemanticTimeout bounds a single semantic backend call. On expiry the
	// engine degrades to lexical-only results.
	SemanticTimeout Duration `yaml:"semantic_timeout" json:"semantic_timeout"`

	// BM25K1 and BM25B are the Okapi BM25 tuning parameters.
	BM25K1 float64 `yaml:"bm25_k1" json:"bm25_k1"`
	BM25B  float64 `yaml:"bm25_b" json:"bm25_b"`
}

// ChunkingConfig configures judgment chunking.
type ChunkingConfig struct {
	// MinTokens and MaxTokens bound the size of a chunk. Paragraphs are
	// buffered until the window is full, long paragraphs are sentence-split.
	MinTokens int `yaml:"min_tokens" json:"min_tokens"`
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Encoding is the tiktoken encoding used for token counting.
	Encoding string `yaml:"encoding" json:"encoding"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedding backend: "openai" or "static".
	// Empty defaults to "static" which needs no external service.
	Provider string `yaml:"provider" json:"provider"`

	// Host is the base URL for OpenAI-compatible embedding servers.
	Host string `yaml:"host" json:"host"`

	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
	BatchSize  int    `yaml:"batch_size" json:"batch_size"`

	// CacheSize is the LRU cache capacity for embedded texts.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// StorageConfig configures on-disk state.
type StorageConfig struct {
	// DataDir is the root directory for the document store, the vector
	// index snapshot, and the rebuild lock. Defaults to ~/.caselens.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// IndexWorkers bounds concurrent embedding during ingest.
	IndexWorkers int `yaml:"index_workers" json:"index_workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchConfig{
			// Semantic similarity carries more signal for legal prose,
			// lexical matching anchors exact citations and statute names.
			LexicalWeight:   0.4,
			SemanticWeight:  0.6,
			TopK:            5,
			SemanticTimeout: Duration(2 * time.Second),
			BM25K1:          1.5,
			BM25B:           0.75,
		},
		Chunking: ChunkingConfig{
			MinTokens: 200,
			MaxTokens: 400,
			Encoding:  "cl100k_base",
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "static",
			Host:       "",
			Model:      "all-MiniLM-L6-v2",
			Dimensions: 384,
			BatchSize:  32,
			CacheSize:  4096,
		},
		Storage: StorageConfig{
			DataDir:      defaultDataDir(),
			IndexWorkers: 4,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8190,
		},
		Logging: LoggingConfig{
			Level:     "info",
			FilePath:  "",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// defaultDataDir returns the default on-disk state directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".caselens")
	}
	return filepath.Join(home, ".caselens")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows the XDG Base Directory convention:
//   - $XDG_CONFIG_HOME/caselens/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/caselens/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "caselens", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "caselens", "config.yaml")
	}
	return filepath.Join(home, ".config", "caselens", "config.yaml")
}

// loadUserConfig loads the user configuration file if it exists.
// Returns nil config and nil error when the file is absent.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration from the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/caselens/config.yaml)
//  3. Project config (.caselens.yaml in dir)
//  4. Environment variables (CASELENS_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .caselens.yaml or .caselens.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".caselens.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".caselens.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine, defaults apply.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return caseerr.New(caseerr.ErrCodeConfigNotFound, fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return caseerr.New(caseerr.ErrCodeConfigInvalid, fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Search. Zero is not a practical value for weights, so only non-zero
	// values merge; explicit zero weights go through env vars.
	if other.Search.LexicalWeight != 0 {
		c.Search.LexicalWeight = other.Search.LexicalWeight
	}
	if other.Search.SemanticWeight != 0 {
		c.Search.SemanticWeight = other.Search.SemanticWeight
	}
	if other.Search.TopK != 0 {
		c.Search.TopK = other.Search.TopK
	}
	if other.Search.SemanticTimeout != 0 {
		c.Search.SemanticTimeout = other.Search.SemanticTimeout
	}
	if other.Search.BM25K1 != 0 {
		c.Search.BM25K1 = other.Search.BM25K1
	}
	if other.Search.BM25B != 0 {
		c.Search.BM25B = other.Search.BM25B
	}

	// Chunking
	if other.Chunking.MinTokens != 0 {
		c.Chunking.MinTokens = other.Chunking.MinTokens
	}
	if other.Chunking.MaxTokens != 0 {
		c.Chunking.MaxTokens = other.Chunking.MaxTokens
	}
	if other.Chunking.Encoding != "" {
		c.Chunking.Encoding = other.Chunking.Encoding
	}

	// Embeddings
	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Host != "" {
		c.Embeddings.Host = other.Embeddings.Host
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	// Storage
	if other.Storage.DataDir != "" {
		c.Storage.DataDir = other.Storage.DataDir
	}
	if other.Storage.IndexWorkers != 0 {
		c.Storage.IndexWorkers = other.Storage.IndexWorkers
	}

	// Server
	if other.Server.Host != "" {
		c.Server.Host = other.Server.Host
	}
	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies CASELENS_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Weights accept explicit zero values via env vars.
	if v := os.Getenv("CASELENS_LEXICAL_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w >= 0 {
			c.Search.LexicalWeight = w
		}
	}
	if v := os.Getenv("CASELENS_SEMANTIC_WEIGHT"); v != "" {
		if w, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && w >= 0 {
			c.Search.SemanticWeight = w
		}
	}
	if v := os.Getenv("CASELENS_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Search.TopK = k
		}
	}
	if v := os.Getenv("CASELENS_SEMANTIC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Search.SemanticTimeout = Duration(d)
		}
	}

	if v := os.Getenv("CASELENS_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("CASELENS_EMBEDDINGS_HOST"); v != "" {
		c.Embeddings.Host = v
	}
	if v := os.Getenv("CASELENS_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}

	if v := os.Getenv("CASELENS_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("CASELENS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CASELENS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.LexicalWeight < 0 {
		return caseerr.New(caseerr.ErrCodeInvalidWeights,
			fmt.Sprintf("lexical_weight must be non-negative, got %f", c.Search.LexicalWeight), nil)
	}
	if c.Search.SemanticWeight < 0 {
		return caseerr.New(caseerr.ErrCodeInvalidWeights,
			fmt.Sprintf("semantic_weight must be non-negative, got %f", c.Search.SemanticWeight), nil)
	}
	// Both weights zero would make every fused score zero.
	if math.Abs(c.Search.LexicalWeight)+math.Abs(c.Search.SemanticWeight) == 0 {
		return caseerr.New(caseerr.ErrCodeInvalidWeights, "at least one fusion weight must be positive", nil)
	}
	if c.Search.TopK <= 0 {
		return caseerr.ConfigError(fmt.Sprintf("search.top_k must be positive, got %d", c.Search.TopK), nil)
	}
	if c.Search.BM25K1 <= 0 {
		return caseerr.ConfigError(fmt.Sprintf("search.bm25_k1 must be positive, got %f", c.Search.BM25K1), nil)
	}
	if c.Search.BM25B < 0 || c.Search.BM25B > 1 {
		return caseerr.ConfigError(fmt.Sprintf("search.bm25_b must be in [0,1], got %f", c.Search.BM25B), nil)
	}

	if c.Chunking.MinTokens <= 0 || c.Chunking.MaxTokens <= 0 {
		return caseerr.ConfigError("chunking token bounds must be positive", nil)
	}
	if c.Chunking.MinTokens > c.Chunking.MaxTokens {
		return caseerr.ConfigError(fmt.Sprintf("chunking.min_tokens (%d) exceeds max_tokens (%d)",
			c.Chunking.MinTokens, c.Chunking.MaxTokens), nil)
	}

	switch strings.ToLower(c.Embeddings.Provider) {
	case "", "static", "openai":
	default:
		return caseerr.ConfigError(fmt.Sprintf("embeddings.provider must be 'static' or 'openai', got %s", c.Embeddings.Provider), nil)
	}
	if c.Embeddings.Dimensions <= 0 {
		return caseerr.ConfigError(fmt.Sprintf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions), nil)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return caseerr.ConfigError(fmt.Sprintf("server.port must be in 1-65535, got %d", c.Server.Port), nil)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return caseerr.ConfigError(fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level), nil)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
