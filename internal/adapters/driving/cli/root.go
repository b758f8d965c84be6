// Package cli implements the quarry command-line interface.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/adapters/driven/config/file"
	"github.com/quarrylabs/quarry/internal/adapters/driven/embedding/ollama"
	"github.com/quarrylabs/quarry/internal/adapters/driven/embedding/openai"
	"github.com/quarrylabs/quarry/internal/adapters/driven/files/local"
	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/sqlite"
	"github.com/quarrylabs/quarry/internal/chunker"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/core/services"
	"github.com/quarrylabs/quarry/internal/extractors"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Version is set at build time.
var version = "dev"

// Services wired by initServices and used by the commands.
var (
	documentService driving.DocumentService
	projectService  driving.ProjectService
	store           *sqlite.Store
	embedder        driven.EmbeddingService
	cfg             file.Config
)

var (
	verboseFlag    bool
	configPathFlag string
)

// defaultUserID identifies the local user in a single-user CLI
// install.
const defaultUserID = "local"

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Document ingestion and semantic retrieval",
	Long: `Quarry ingests documents, splits them into overlapping chunks,
embeds each chunk, and retrieves the most relevant chunks for a query
with optional chat, project, and user filters.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "config file (default ~/.quarry/config.toml)")
}

// Execute runs the root command.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}

// initServices loads the configuration and wires the stores, the
// embedding provider, and the core services.
func initServices() error {
	if documentService != nil {
		return nil
	}

	configPath := configPathFlag
	if configPath == "" {
		var err error
		configPath, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	var err error
	cfg, err = file.Load(configPath)
	if err != nil {
		return err
	}

	store, err = sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	fileStore, err := local.NewFileStore(fileStoreDir())
	if err != nil {
		return fmt.Errorf("opening file store: %w", err)
	}

	embedder, err = newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	chunkerOpts := []chunker.Option{}
	if cfg.Chunking.WindowSize > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithWindowSize(cfg.Chunking.WindowSize))
	}
	if cfg.Chunking.Overlap > 0 {
		chunkerOpts = append(chunkerOpts, chunker.WithOverlap(cfg.Chunking.Overlap))
	}
	textChunker, err := chunker.New(chunkerOpts...)
	if err != nil {
		return fmt.Errorf("configuring chunker: %w", err)
	}

	registry := services.NewExtractorRegistry(
		extractors.NewPlainText(),
		extractors.NewPDF(),
	)

	documentService = services.NewDocumentService(
		store.DocumentStore(),
		store.ChunkStore(),
		store.ProjectStore(),
		fileStore,
		embedder,
		registry,
		textChunker,
	)
	projectService = services.NewProjectService(store.ProjectStore())

	logger.Debug("Services initialized (provider %s, store %s)",
		cfg.Embedding.Provider, store.Path())
	return nil
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "ollama", "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// fileStoreDir places stored files next to the database.
func fileStoreDir() string {
	if cfg.DataDir == "" {
		return "" // the file store falls back to ~/.quarry/files
	}
	return filepath.Join(cfg.DataDir, "files")
}

// closeServices releases resources held by the wired services.
func closeServices() {
	if embedder != nil {
		if err := embedder.Close(); err != nil {
			logger.Warn("Failed to close embedder: %v", err)
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close store: %v", err)
		}
	}
}
