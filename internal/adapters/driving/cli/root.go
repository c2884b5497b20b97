// Package cli provides the cobra command surface for clubby.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cachememory "github.com/pavilion-labs/clubby/internal/adapters/driven/cache/memory"
	configfile "github.com/pavilion-labs/clubby/internal/adapters/driven/config/file"
	embeddinglocal "github.com/pavilion-labs/clubby/internal/adapters/driven/embedding/local"
	embeddingopenai "github.com/pavilion-labs/clubby/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/pavilion-labs/clubby/internal/adapters/driven/llm/openai"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/bolt"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/disk"
	storagememory "github.com/pavilion-labs/clubby/internal/adapters/driven/storage/memory"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/sqlite"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/storage/tiered"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/vector/boltcache"
	"github.com/pavilion-labs/clubby/internal/adapters/driven/vector/brute"
	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
	"github.com/pavilion-labs/clubby/internal/core/services"
	"github.com/pavilion-labs/clubby/internal/logger"
	"github.com/pavilion-labs/clubby/internal/upstream/playsport"
)

var (
	verboseFlag bool
	configFlag  string

	// Wired components, constructed once in wire() and treated as
	// read-only by commands.
	appConfig    *configfile.Config
	docStore     driven.DocumentStore
	queryRouter  *services.Router
	indexService *services.IndexService
)

var rootCmd = &cobra.Command{
	Use:   "clubby",
	Short: "Sports-club assistant query pipeline",
	Long: `Clubby answers free-text questions about a sports club by combining
a semantic index of club documents with the live competition data API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if cmd.Name() == "version" {
			return nil
		}
		return wire(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default ~/.clubby/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// wire constructs the component graph once per invocation. Components
// are passed explicitly; there is no hidden global state beyond this
// package's wiring variables.
func wire(cmd *cobra.Command) error {
	cfg, err := configfile.Load(configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = cfg

	// Storage tiers, fastest first.
	sqliteStore, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("sqlite tier: %w", err)
	}
	boltStore, err := bolt.NewStore(filepath.Join(cfg.DataDir, "documents.bolt"))
	if err != nil {
		return fmt.Errorf("bolt tier: %w", err)
	}
	diskStore, err := disk.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("disk tier: %w", err)
	}
	// Durable chain, fastest first. The in-process map is a read cache
	// only, so every write lands on disk somewhere.
	store := tiered.NewStore(sqliteStore, boltStore, diskStore)
	store.SetReadCache(storagememory.NewStore())
	docStore = store

	// Embeddings: OpenAI when configured, deterministic local otherwise.
	var embedder driven.EmbeddingService
	if cfg.Embedding.APIKey != "" {
		embedder, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
		if err != nil {
			return fmt.Errorf("embedding service: %w", err)
		}
	} else {
		logger.Info("No embedding API key, using local embedder")
		embedder = embeddinglocal.NewEmbeddingService()
	}

	// LLM is optional; classification and summarisation degrade without it.
	var llm driven.LLMService
	if cfg.LLM.APIKey != "" {
		llm, err = llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return fmt.Errorf("llm service: %w", err)
		}
	} else {
		logger.Info("No LLM API key, rule-based classification only")
	}

	// Upstream client is optional; handlers degrade without it.
	var upstream driven.SportsDataClient
	if cfg.Upstream.BaseURL != "" && cfg.Upstream.APIKey != "" {
		client, err := playsport.NewClient(playsport.Config{
			BaseURL: cfg.Upstream.BaseURL,
			APIKey:  cfg.Upstream.APIKey,
			Tenant:  cfg.Upstream.Tenant,
		})
		if err != nil {
			return fmt.Errorf("upstream client: %w", err)
		}
		upstream = client
	} else {
		logger.Info("Upstream API not configured, live fallback disabled")
	}

	index := brute.NewIndex(embedder, docStore)
	vecCache, err := boltcache.NewCache(filepath.Join(cfg.DataDir, "embeddings.bolt"))
	if err != nil {
		// Hydration falls back to re-embedding without the cache.
		logger.Warn("Embedding cache unavailable: %v", err)
	} else {
		index.SetVectorCache(vecCache)
	}
	if err := index.Hydrate(cmd.Context()); err != nil {
		logger.Warn("Index hydration failed: %v", err)
	}

	cache := cachememory.NewCache(cfg.CacheTTL())
	resolver := services.NewTeamResolver(cfg.Teams)
	classifier := services.NewIntentClassifier(llm)
	redactor := services.NewRedactor(cfg.PrivacyMode())

	queryRouter = services.NewRouter(cache, classifier, resolver, index, index, upstream, llm, redactor)
	queryRouter.SetFreshness(cfg.FreshnessWindow())
	indexService = services.NewIndexService(index)

	return nil
}
