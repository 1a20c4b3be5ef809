package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is looked up in the working directory when no path
	// is given.
	ProjectConfigFile = "menu-cache.yaml"
	// EnvConfigPath names the config file path variable.
	EnvConfigPath = "MENU_CACHE_CONFIG"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
	getenv func(string) string
	dotenv []string
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, getenv: os.Getenv, dotenv: []string{".env"}}
}

// Load builds the configuration with layered precedence:
//  1. DefaultConfig
//  2. YAML file (path, $MENU_CACHE_CONFIG, or ./menu-cache.yaml)
//  3. .env file, if present
//  4. environment variables
//
// An explicitly named file that cannot be read is an error.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := l.getenv(EnvConfigPath); env != "" {
			path, explicit = env, true
		} else {
			path = ProjectConfigFile
		}
	}

	config := DefaultConfig()
	fileConfig, err := LoadFromFile(path)
	switch {
	case err == nil:
		l.logger.Debug("Loaded config file", slog.String("path", path))
		config = fileConfig
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, err
	default:
		l.logger.Debug("No config file found", slog.String("path", path))
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(l.dotenv...); err == nil {
		l.logger.Debug("Loaded .env")
	}

	if err := l.applyEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// providerKeys maps provider names to their API key variable.
var providerKeys = map[string]string{
	"cohere": "COHERE_API_KEY",
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

func (l *Loader) applyEnv(c *Config) error {
	set := func(dst *string, names ...string) {
		for _, name := range names {
			if v := l.getenv(name); v != "" {
				*dst = v
				return
			}
		}
	}

	if port := l.getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}

	set(&c.Places.APIKey, "GOOGLE_PLACES_API_KEY", "GOOGLE_MAPS_API_KEY")

	set(&c.Generator.Provider, "MENU_CACHE_GENERATOR")
	set(&c.Generator.Model, "MENU_CACHE_GENERATOR_MODEL")
	if key, ok := providerKeys[c.Generator.Provider]; ok {
		set(&c.Generator.APIKey, key)
	}

	set(&c.Embedder.Provider, "MENU_CACHE_EMBEDDER")
	set(&c.Embedder.Model, "MENU_CACHE_EMBEDDER_MODEL")
	if c.Embedder.Provider == "ollama" {
		set(&c.Embedder.BaseURL, "OLLAMA_HOST")
	} else if key, ok := providerKeys[c.Embedder.Provider]; ok {
		set(&c.Embedder.APIKey, key)
	}

	set(&c.Store.Backend, "MENU_CACHE_STORE")
	set(&c.Store.Path, "MENU_CACHE_DB")
	set(&c.Store.ProjectID, "FIRESTORE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")

	if v := l.getenv("MENU_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MENU_CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	if v := l.getenv("MENU_CACHE_PERSIST_TEMPLATES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MENU_CACHE_PERSIST_TEMPLATES: %w", err)
		}
		c.Menu.PersistTemplates = b
	}

	set(&c.Log.Level, "MENU_CACHE_LOG_LEVEL")
	set(&c.Log.Format, "MENU_CACHE_LOG_FORMAT")
	return nil
}
