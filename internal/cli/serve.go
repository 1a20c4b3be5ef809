package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve menus over HTTP",
		Long:  "Serve GET /menu/:restaurantId, GET /health and GET /metrics.",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: server.addr or :$PORT)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		exitErr("init", err)
	}
	defer a.Close()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(a.orchestrator, server.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		Providers:    a.providers,
		Gatherer:     reg,
		Logger:       logger,
	})

	if err := server.Run(ctx, cfg.Server.Addr, router, logger); err != nil {
		exitErr("serve", err)
	}
}
