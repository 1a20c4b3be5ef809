package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rcliao/menu-cache/internal/config"
	"github.com/rcliao/menu-cache/internal/embedding"
	"github.com/rcliao/menu-cache/internal/extract"
	"github.com/rcliao/menu-cache/internal/llm"
	"github.com/rcliao/menu-cache/internal/menu"
	"github.com/rcliao/menu-cache/internal/novelty"
	"github.com/rcliao/menu-cache/internal/places"
	"github.com/rcliao/menu-cache/internal/server"
	"github.com/rcliao/menu-cache/internal/store"
)

// app holds the wired pipeline.
type app struct {
	orchestrator *menu.Orchestrator
	store        store.Store
	providers    server.Providers
}

func (a *app) Close() error {
	return a.store.Close()
}

// newApp wires every collaborator from cfg. Missing credentials disable the
// matching collaborator instead of failing.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*app, error) {
	gen, err := llm.New(llm.Options{
		Provider: cfg.Generator.Provider,
		Model:    cfg.Generator.Model,
		BaseURL:  cfg.Generator.BaseURL,
		APIKey:   cfg.Generator.APIKey,
		Timeout:  cfg.Generator.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		logger.Warn("Store unavailable, serving without cache", "backend", cfg.Store.Backend, "error", err)
		s = store.DisabledStore{Reason: err.Error()}
	}

	placesClient := places.NewClient(places.Options{
		BaseURL: cfg.Places.BaseURL,
		APIKey:  cfg.Places.APIKey,
		Timeout: cfg.Places.Timeout,
		Logger:  logger,
	})
	if !placesClient.Configured() {
		logger.Warn("No places API key; every uncached request falls back to the generic menu")
	}

	extractor := extract.New(gen, logger)
	if !extractor.Available() {
		logger.Warn("No generator configured; menus come from templates")
	}

	cache := store.NewCache(s, cfg.Cache.TTL, store.WithLogger(logger))
	orch := menu.New(cache, placesClient, extractor,
		novelty.New(emb, cfg.Menu.NoveltyThreshold, logger),
		menuConfig(cfg),
		menu.WithLogger(logger),
		menu.WithMetrics(menu.NewMetrics(reg)),
	)

	providers := server.Providers{Places: placesClient.Configured(), Store: cfg.Store.Backend}
	if gen != nil {
		providers.Generator = gen.Name()
	}
	if emb != nil {
		providers.Embedder = cfg.Embedder.Provider
	}
	if _, ok := s.(store.DisabledStore); ok {
		providers.Store = config.BackendNone
	}

	return &app{orchestrator: orch, store: s, providers: providers}, nil
}

func menuConfig(cfg *config.Config) menu.Config {
	mc := menu.DefaultConfig()
	mc.InitialBatch = cfg.Menu.InitialBatch
	mc.PersistTemplates = cfg.Menu.PersistTemplates
	return mc
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	emb, err := embedding.New(embedding.Options{
		Provider: cfg.Embedder.Provider,
		Model:    cfg.Embedder.Model,
		BaseURL:  cfg.Embedder.BaseURL,
		APIKey:   cfg.Embedder.APIKey,
		Timeout:  cfg.Embedder.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	return emb, nil
}
