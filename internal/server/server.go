// Package server exposes the menu pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/menu-cache/internal/menu"
	"github.com/rcliao/menu-cache/internal/model"
)

const (
	// HeaderMenuSource carries the record's provenance.
	HeaderMenuSource = "X-Menu-Source"
	// HeaderRequestID is read from the request and echoed on the response.
	HeaderRequestID = "X-Request-ID"
)

// MenuService produces a menu for a restaurant id and never fails.
type MenuService interface {
	Menu(ctx context.Context, restaurantID string) (*model.CachedMenuRecord, menu.Outcome)
}

// Providers reports which collaborators are configured.
type Providers struct {
	Places    bool   `json:"places"`
	Generator string `json:"generator"`
	Embedder  string `json:"embedder"`
	Store     string `json:"store"`
}

// Options configures the router.
type Options struct {
	AllowOrigins []string
	Providers    Providers
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

// NewRouter builds the gin engine.
func NewRouter(svc MenuService, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(opts.Logger))
	r.Use(cors.New(corsConfig(opts.AllowOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"providers": opts.Providers,
		})
	})

	r.GET("/menu/:restaurantId", func(c *gin.Context) {
		id := c.Param("restaurantId")
		ctx := menu.WithRequestID(c.Request.Context(), c.GetString("requestID"))

		rec, out := svc.Menu(ctx, id)
		c.Header(HeaderMenuSource, string(rec.Source))
		c.Set("outcome", out.Result)
		c.JSON(http.StatusOK, rec)
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{HeaderMenuSource, HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"request_id", c.GetString("requestID"),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if outcome := c.GetString("outcome"); outcome != "" {
			attrs = append(attrs, "outcome", outcome)
		}
		logger.Info("HTTP request", attrs...)
	}
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
