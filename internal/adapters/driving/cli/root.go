// Package cli implements the kbdb command line interface.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kbdb-labs/kbdb/internal/adapters/driven/embedding/openai"
	"github.com/kbdb-labs/kbdb/internal/adapters/driven/storage/postgres"
	"github.com/kbdb-labs/kbdb/internal/adapters/driven/storage/sqlite"
	"github.com/kbdb-labs/kbdb/internal/config"
	"github.com/kbdb-labs/kbdb/internal/core/domain"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driven"
	"github.com/kbdb-labs/kbdb/internal/core/ports/driving"
	"github.com/kbdb-labs/kbdb/internal/core/services"
	"github.com/kbdb-labs/kbdb/internal/logger"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string

	appConfig *config.Config
	appLogger *zap.Logger

	searchService driving.SearchService

	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:   "kbdb",
	Short: "Multi-modality knowledge base retrieval",
	Long: `kbdb answers natural language queries against a chunked document
store. Each search modality pairs an embedding strategy with a distance
metric; the query is embedded once and matched against stored chunk
embeddings tagged with the same model and task.

The same retrieval engine backs the command line and the MCP server.`,
	SilenceUsage: true,
}

// Execute runs the root command and releases any opened resources.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default: $KBDB_CONFIG or kbdb.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// ensureServices builds the service graph on first use. Commands that only
// print static information never pay the bootstrap cost, and tests inject
// their own service before executing.
func ensureServices(ctx context.Context) error {
	if searchService != nil {
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	appConfig = cfg

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	appLogger = log
	closers = append(closers, func() error {
		log.Sync() //nolint:errcheck
		return nil
	})

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, store.Close)

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	embedder := openai.NewEmbeddingService(openai.Config{
		BaseURL:           cfg.Embedding.Endpoint,
		APIKey:            cfg.Embedding.APIKey,
		Dimensions:        cfg.Embedding.Dimensions,
		Timeout:           cfg.Embedding.Timeout(),
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	closers = append(closers, embedder.Close)

	registry, err := domain.NewRegistry(cfg.ModalityTable())
	if err != nil {
		return fmt.Errorf("building modality registry: %w", err)
	}

	timeouts := services.Timeouts{
		Embed: time.Duration(cfg.Search.EmbedTimeoutSeconds) * time.Second,
		Query: time.Duration(cfg.Search.QueryTimeoutSeconds) * time.Second,
	}
	searchService = services.NewSearchService(registry, embedder, store, timeouts, log)

	log.Debug("services ready",
		zap.String("database", cfg.Database.LogString()),
		zap.String("embedding_endpoint", cfg.Embedding.Endpoint))
	return nil
}

func openStore(cfg *config.Config, log *zap.Logger) (driven.DocumentStore, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		store, err := sqlite.NewStore(cfg.Database.Path, log)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case "", "postgres":
		store, err := postgres.NewStore(cfg.Database.DSN(), log)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func shutdown() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]() //nolint:errcheck
	}
	closers = nil
}
