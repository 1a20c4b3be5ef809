// Package cli implements the menu-cache CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/config"
	"github.com/rcliao/menu-cache/internal/store"
)

var (
	configPath string
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "menu-cache",
	Short: "Review-derived restaurant menus, cached",
	Long: "Builds a per-restaurant menu from customer reviews with a generative model, " +
		"caches it, and refreshes it incrementally as new reviews arrive.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $MENU_CACHE_CONFIG or ./menu-cache.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $MENU_CACHE_DB or ~/.menu-cache/menu.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// loadConfig resolves the layered configuration and installs the default
// logger. Flags win over every other layer.
func loadConfig() *config.Config {
	cfg, err := config.NewLoader(nil).Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = dbPath
	}
	slog.SetDefault(cfg.Log.NewLogger(os.Stderr))
	return cfg
}

// openStore opens the configured backend. A backend that cannot be opened
// is replaced by a DisabledStore so the pipeline still serves menus.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return store.NewSQLiteStore(cfg.Store.Path)
	case config.BackendFirestore:
		return store.NewFirestoreStore(ctx, cfg.Store.ProjectID, cfg.Store.Collection)
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return store.DisabledStore{Reason: "disabled by configuration"}, nil
	}
}

// mustOpenStore is openStore for the cache maintenance commands, which have
// nothing to do without a store.
func mustOpenStore(ctx context.Context) store.Store {
	s, err := openStore(ctx, loadConfig())
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

func textFormat() bool {
	return formatFlag == "text"
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
