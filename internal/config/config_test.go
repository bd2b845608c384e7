package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kbdb.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 768, cfg.Embedding.Dimensions)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("reads toml values", func(t *testing.T) {
		path := writeConfig(t, `
[log]
level = "debug"

[database]
driver = "sqlite"
path = "/tmp/test.db"

[embedding]
endpoint = "http://embedder:8080/v1"
dimensions = 384
requests_per_second = 2.5
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
		assert.Equal(t, "http://embedder:8080/v1", cfg.Embedding.Endpoint)
		assert.Equal(t, 384, cfg.Embedding.Dimensions)
		assert.Equal(t, 2.5, cfg.Embedding.RequestsPerSecond)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, `
[database]
host = "db.internal"
`)
		t.Setenv("KBDB_DB_HOST", "db.override")
		t.Setenv("KBDB_DB_PASSWORD", "hunter2")
		t.Setenv("KBDB_EMBEDDING_API_KEY", "sk-test")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "db.override", cfg.Database.Host)
		assert.Equal(t, "hunter2", cfg.Database.Password)
		assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	})

	t.Run("environment overrides rate limit and search timeouts", func(t *testing.T) {
		t.Setenv("KBDB_EMBEDDING_REQUESTS_PER_SECOND", "4.5")
		t.Setenv("KBDB_SEARCH_EMBED_TIMEOUT_SECONDS", "60")
		t.Setenv("KBDB_SEARCH_QUERY_TIMEOUT_SECONDS", "5")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, 4.5, cfg.Embedding.RequestsPerSecond)
		assert.Equal(t, 60, cfg.Search.EmbedTimeoutSeconds)
		assert.Equal(t, 5, cfg.Search.QueryTimeoutSeconds)
	})

	t.Run("unparseable numeric override keeps the fallback", func(t *testing.T) {
		t.Setenv("KBDB_EMBEDDING_DIMENSIONS", "lots")
		t.Setenv("KBDB_EMBEDDING_REQUESTS_PER_SECOND", "fast")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, 768, cfg.Embedding.Dimensions)
		assert.Equal(t, 0.0, cfg.Embedding.RequestsPerSecond)
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		path := writeConfig(t, "[database\nhost=")
		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "localhost", Port: 5432, Name: "kbdb",
		User: "kb", Password: "secret", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 dbname=kbdb user=kb password=secret sslmode=disable",
		cfg.DSN())

	// Password never appears in the loggable form.
	assert.NotContains(t, cfg.LogString(), "secret")
}

func TestConfig_ModalityTable(t *testing.T) {
	t.Run("empty config falls back to built-ins", func(t *testing.T) {
		cfg := &Config{}
		table := cfg.ModalityTable()
		require.Len(t, table, 4)
	})

	t.Run("configured modalities replace built-ins", func(t *testing.T) {
		path := writeConfig(t, `
[[modalities]]
name = "legal"
description = "Search statutes and case law"
model = "nomic-embed-text:v1.5"
prefix = "search_document: "
metric = "inner_product"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		table := cfg.ModalityTable()
		require.Len(t, table, 1)
		assert.Equal(t, "legal", table[0].Name)
		assert.Equal(t, domain.MetricInnerProduct, table[0].Metric)

		// The table feeds straight into registry validation.
		_, err = domain.NewRegistry(table)
		assert.NoError(t, err)
	})
}
