// Package config loads kbdb configuration from a TOML file with
// environment-variable overrides. Credentials are never embedded in code:
// they arrive via the file or via KBDB_* variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

// Config is the complete process configuration.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Database   DatabaseConfig   `toml:"database"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Search     SearchConfig     `toml:"search"`
	Modalities []ModalityConfig `toml:"modalities"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig selects and configures the document store backend.
type DatabaseConfig struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver string `toml:"driver"`

	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"sslmode"`

	// Path is the SQLite database file, used when Driver is "sqlite".
	Path string `toml:"path"`
}

// DSN returns the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// LogString returns a connection description safe for logging.
func (c DatabaseConfig) LogString() string {
	if c.Driver == "sqlite" {
		return fmt.Sprintf("sqlite:%s", c.Path)
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", c.User, c.Host, c.Port, c.Name)
}

// EmbeddingConfig configures the outbound embedding service client.
type EmbeddingConfig struct {
	// Endpoint is the base URL of an OpenAI-compatible embeddings API.
	Endpoint string `toml:"endpoint"`

	APIKey string `toml:"api_key"`

	// Dimensions is the system-fixed vector width. On the Postgres
	// backend it must match the vector(N) column width of the deployed
	// schema; the initial migration creates vector(768).
	Dimensions int `toml:"dimensions"`

	// TimeoutSeconds bounds a single embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// RequestsPerSecond throttles outbound calls; 0 disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Timeout returns the embedding request timeout.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SearchConfig bounds the per-request blocking operations.
type SearchConfig struct {
	EmbedTimeoutSeconds int `toml:"embed_timeout_seconds"`
	QueryTimeoutSeconds int `toml:"query_timeout_seconds"`
}

// ModalityConfig declares one registry entry. When any modalities are
// configured they replace the built-in table wholesale.
type ModalityConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Model       string `toml:"model"`
	Prefix      string `toml:"prefix"`
	Suffix      string `toml:"suffix"`
	Metric      string `toml:"metric"`
}

// Load reads the TOML file at path (skipped when absent), applies defaults
// and environment overrides, and returns the merged configuration.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = getEnv("KBDB_CONFIG", "kbdb.toml")
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decoding config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	overrideByEnv(cfg)
	return cfg, nil
}

// ModalityTable converts the configured modalities into registry entries,
// falling back to the built-in table when none are configured.
func (c *Config) ModalityTable() []domain.Modality {
	if len(c.Modalities) == 0 {
		return domain.DefaultModalities()
	}

	out := make([]domain.Modality, 0, len(c.Modalities))
	for _, m := range c.Modalities {
		out = append(out, domain.Modality{
			Name:        m.Name,
			Description: m.Description,
			Strategy: domain.Strategy{
				Model:  m.Model,
				Prefix: m.Prefix,
				Suffix: m.Suffix,
			},
			Metric: domain.Metric(m.Metric),
		})
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "127.0.0.1",
			Port:    5432,
			Name:    "kbdb",
			User:    "kbdb",
			SSLMode: "disable",
			Path:    "kbdb.db",
		},
		Embedding: EmbeddingConfig{
			Endpoint:       "http://127.0.0.1:11434/v1",
			Dimensions:     768,
			TimeoutSeconds: 30,
		},
		Search: SearchConfig{
			EmbedTimeoutSeconds: 30,
			QueryTimeoutSeconds: 10,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.Log.Level = getEnv("KBDB_LOG_LEVEL", cfg.Log.Level)

	cfg.Database.Driver = getEnv("KBDB_DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = getEnv("KBDB_DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvAsInt("KBDB_DB_PORT", cfg.Database.Port)
	cfg.Database.Name = getEnv("KBDB_DB_NAME", cfg.Database.Name)
	cfg.Database.User = getEnv("KBDB_DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("KBDB_DB_PASSWORD", cfg.Database.Password)
	cfg.Database.SSLMode = getEnv("KBDB_DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.Path = getEnv("KBDB_DB_PATH", cfg.Database.Path)

	cfg.Embedding.Endpoint = getEnv("KBDB_EMBEDDING_ENDPOINT", cfg.Embedding.Endpoint)
	cfg.Embedding.APIKey = getEnv("KBDB_EMBEDDING_API_KEY", cfg.Embedding.APIKey)
	cfg.Embedding.Dimensions = getEnvAsInt("KBDB_EMBEDDING_DIMENSIONS", cfg.Embedding.Dimensions)
	cfg.Embedding.TimeoutSeconds = getEnvAsInt("KBDB_EMBEDDING_TIMEOUT_SECONDS", cfg.Embedding.TimeoutSeconds)
	cfg.Embedding.RequestsPerSecond = getEnvAsFloat("KBDB_EMBEDDING_REQUESTS_PER_SECOND", cfg.Embedding.RequestsPerSecond)

	cfg.Search.EmbedTimeoutSeconds = getEnvAsInt("KBDB_SEARCH_EMBED_TIMEOUT_SECONDS", cfg.Search.EmbedTimeoutSeconds)
	cfg.Search.QueryTimeoutSeconds = getEnvAsInt("KBDB_SEARCH_QUERY_TIMEOUT_SECONDS", cfg.Search.QueryTimeoutSeconds)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
