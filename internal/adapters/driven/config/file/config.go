// Package file loads and persists the Quarry configuration as a TOML
// file in the user's config directory.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted application configuration.
type Config struct {
	// DataDir is where the SQLite database and stored files live.
	// Empty means ~/.quarry.
	DataDir string `toml:"data_dir,omitempty"`

	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Watch     WatchConfig     `toml:"watch"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the embedding model name. Empty uses the provider
	// default.
	Model string `toml:"model,omitempty"`

	// APIKey authenticates against hosted providers.
	APIKey string `toml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url,omitempty"`

	// Dimensions overrides the embedding vector size.
	Dimensions int `toml:"dimensions,omitempty"`
}

// ChunkingConfig tunes the text chunker.
type ChunkingConfig struct {
	// WindowSize is the chunk size in tokens. Zero uses the default.
	WindowSize int `toml:"window_size,omitempty"`

	// Overlap is the token overlap between consecutive chunks.
	Overlap int `toml:"overlap,omitempty"`
}

// WatchConfig configures the inbox watcher.
type WatchConfig struct {
	// InboxDir is the directory watched for new files. Empty means
	// ~/.quarry/inbox.
	InboxDir string `toml:"inbox_dir,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{Provider: "ollama"},
	}
}

// DefaultPath returns the default config file location,
// ~/.quarry/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".quarry", "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields the
// defaults, not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories
// as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
