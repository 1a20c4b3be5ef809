// Package config loads menu-cache configuration from defaults, a YAML file,
// a .env file and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete menu-cache configuration.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Places    PlacesConfig   `yaml:"places"`
	Generator ProviderConfig `yaml:"generator"`
	Embedder  ProviderConfig `yaml:"embedder"`
	Store     StoreConfig    `yaml:"store"`
	Cache     CacheConfig    `yaml:"cache"`
	Menu      MenuConfig     `yaml:"menu"`
	Log       LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080", or ":$PORT").
	Addr string `yaml:"addr"`
	// AllowOrigins lists CORS origins. Empty or "*" allows all.
	AllowOrigins []string `yaml:"allow_origins,omitempty"`
}

// PlacesConfig configures the review source.
type PlacesConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// ProviderConfig selects a generative or embedding provider. An empty
// Provider disables it.
type ProviderConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StoreConfig selects the cache backend.
type StoreConfig struct {
	// Backend is one of "sqlite", "firestore", "memory" or "none".
	Backend string `yaml:"backend"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
	// ProjectID and Collection configure Firestore.
	ProjectID  string `yaml:"project_id"`
	Collection string `yaml:"collection"`
}

// CacheConfig configures freshness.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// MenuConfig tunes the orchestrator.
type MenuConfig struct {
	InitialBatch     int     `yaml:"initial_batch"`
	PersistTemplates bool    `yaml:"persist_templates"`
	NoveltyThreshold float64 `yaml:"novelty_threshold"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Store backends.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
	BackendNone      = "none"
)

var (
	backends           = []string{BackendSQLite, BackendFirestore, BackendMemory, BackendNone}
	generatorProviders = []string{"", "cohere", "openai", "gemini"}
	embedderProviders  = []string{"", "cohere", "openai", "ollama"}
	logLevels          = []string{"debug", "info", "warn", "error"}
	logFormats         = []string{"text", "json"}
)

// DefaultDBPath returns ~/.menu-cache/menu.db.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".menu-cache", "menu.db")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Places: PlacesConfig{
			Timeout: 10 * time.Second,
		},
		Generator: ProviderConfig{
			Provider: "cohere",
			Timeout:  10 * time.Second,
		},
		Embedder: ProviderConfig{
			Provider: "cohere",
			Timeout:  10 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    DefaultDBPath(),
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Menu: MenuConfig{
			InitialBatch:     5,
			NoveltyThreshold: 0.8,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("store.backend must be one of %s", strings.Join(backends, ", "))
	}
	if c.Store.Backend == BackendSQLite && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite backend")
	}
	if c.Store.Backend == BackendFirestore && c.Store.ProjectID == "" {
		return fmt.Errorf("store.project_id is required for the firestore backend")
	}
	if !slices.Contains(generatorProviders, c.Generator.Provider) {
		return fmt.Errorf("generator.provider %q is not supported", c.Generator.Provider)
	}
	if !slices.Contains(embedderProviders, c.Embedder.Provider) {
		return fmt.Errorf("embedder.provider %q is not supported", c.Embedder.Provider)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Menu.InitialBatch <= 0 {
		return fmt.Errorf("menu.initial_batch must be positive")
	}
	if c.Menu.NoveltyThreshold <= 0 || c.Menu.NoveltyThreshold > 1 {
		return fmt.Errorf("menu.novelty_threshold must be in (0, 1]")
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %s", strings.Join(logLevels, ", "))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be text or json")
	}
	return nil
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch l.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
