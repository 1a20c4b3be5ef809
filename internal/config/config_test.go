package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLoader(env map[string]string) *Loader {
	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.getenv = func(k string) string { return env[k] }
	l.dotenv = []string{filepath.Join(os.TempDir(), "menu-cache-no-such.env")}
	return l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, 24*time.Hour, c.Cache.TTL)
	assert.Equal(t, 5, c.Menu.InitialBatch)
	assert.Equal(t, 0.8, c.Menu.NoveltyThreshold)
	assert.Equal(t, BackendSQLite, c.Store.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "redis" }, "store.backend"},
		{"firestore without project", func(c *Config) { c.Store.Backend = BackendFirestore }, "store.project_id"},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"unknown generator", func(c *Config) { c.Generator.Provider = "claude" }, "generator.provider"},
		{"unknown embedder", func(c *Config) { c.Embedder.Provider = "gemini" }, "embedder.provider"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"zero batch", func(c *Config) { c.Menu.InitialBatch = 0 }, "menu.initial_batch"},
		{"threshold above one", func(c *Config) { c.Menu.NoveltyThreshold = 1.5 }, "menu.novelty_threshold"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, "menu-cache.yaml", `
server:
  addr: ":9090"
  allow_origins: ["http://localhost:3000"]
generator:
  provider: openai
  model: gpt-4o-mini
  timeout: 20s
cache:
  ttl: 1h
menu:
  persist_templates: true
`)
	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, c.Server.AllowOrigins)
	assert.Equal(t, "openai", c.Generator.Provider)
	assert.Equal(t, 20*time.Second, c.Generator.Timeout)
	assert.Equal(t, time.Hour, c.Cache.TTL)
	assert.True(t, c.Menu.PersistTemplates)
	// untouched sections keep defaults
	assert.Equal(t, 5, c.Menu.InitialBatch)
	assert.Equal(t, "cohere", c.Embedder.Provider)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, "bad.yaml", "server: [unclosed")
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestSaveToFileRoundTrip(t *testing.T) {
	c := DefaultConfig()
	c.Store.Backend = BackendMemory
	path := filepath.Join(t.TempDir(), "nested", "menu-cache.yaml")
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "menu-cache.yaml", "server:\n  addr: \":9090\"\nstore:\n  path: /tmp/file.db\n")
	l := testLoader(map[string]string{
		"PORT":                  "7000",
		"GOOGLE_MAPS_API_KEY":   "maps-key",
		"COHERE_API_KEY":        "co-key",
		"OPENAI_API_KEY":        "oa-key",
		"MENU_CACHE_DB":         "/tmp/env.db",
		"MENU_CACHE_TTL":        "2h",
		"MENU_CACHE_LOG_FORMAT": "json",
	})

	c, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Server.Addr)
	assert.Equal(t, "maps-key", c.Places.APIKey)
	assert.Equal(t, "co-key", c.Generator.APIKey)
	assert.Equal(t, "co-key", c.Embedder.APIKey)
	assert.Equal(t, "/tmp/env.db", c.Store.Path)
	assert.Equal(t, 2*time.Hour, c.Cache.TTL)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoaderPlacesKeyPrecedence(t *testing.T) {
	l := testLoader(map[string]string{
		"GOOGLE_PLACES_API_KEY": "places-key",
		"GOOGLE_MAPS_API_KEY":   "maps-key",
	})
	c, err := l.Load(writeFile(t, "c.yaml", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "places-key", c.Places.APIKey)
}

func TestLoaderProviderSelectsKey(t *testing.T) {
	l := testLoader(map[string]string{
		"MENU_CACHE_GENERATOR": "gemini",
		"MENU_CACHE_EMBEDDER":  "openai",
		"COHERE_API_KEY":       "co-key",
		"GEMINI_API_KEY":       "gm-key",
		"OPENAI_API_KEY":       "oa-key",
	})
	c, err := l.Load(writeFile(t, "c.yaml", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", c.Generator.Provider)
	assert.Equal(t, "gm-key", c.Generator.APIKey)
	assert.Equal(t, "oa-key", c.Embedder.APIKey)
}

func TestLoaderFirestoreFromEnv(t *testing.T) {
	l := testLoader(map[string]string{
		"MENU_CACHE_STORE":     BackendFirestore,
		"FIRESTORE_PROJECT_ID": "menus-prod",
	})
	c, err := l.Load(writeFile(t, "c.yaml", "{}"))
	require.NoError(t, err)
	assert.Equal(t, BackendFirestore, c.Store.Backend)
	assert.Equal(t, "menus-prod", c.Store.ProjectID)
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	_, err := testLoader(nil).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	l := testLoader(map[string]string{EnvConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	_, err = l.Load("")
	assert.Error(t, err)
}

func TestLoaderInvalidEnv(t *testing.T) {
	_, err := testLoader(map[string]string{"MENU_CACHE_TTL": "soon"}).Load(writeFile(t, "c.yaml", "{}"))
	assert.ErrorContains(t, err, "MENU_CACHE_TTL")

	_, err = testLoader(map[string]string{"MENU_CACHE_STORE": "redis"}).Load(writeFile(t, "c.yaml", "{}"))
	assert.ErrorContains(t, err, "store.backend")
}

func TestLoaderReadsDotenv(t *testing.T) {
	const key = "MENU_CACHE_GENERATOR_MODEL"
	require.Empty(t, os.Getenv(key))
	t.Cleanup(func() { os.Unsetenv(key) })

	l := NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.dotenv = []string{writeFile(t, ".env", key+"=command-r-plus\n")}

	c, err := l.Load(writeFile(t, "c.yaml", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "command-r-plus", c.Generator.Model)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
