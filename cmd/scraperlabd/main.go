package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scraperlab/scraperlab/api"
	"github.com/scraperlab/scraperlab/cache"
	"github.com/scraperlab/scraperlab/config"
	"github.com/scraperlab/scraperlab/domains"
	"github.com/scraperlab/scraperlab/provider"
	"github.com/scraperlab/scraperlab/runlog"
	"github.com/scraperlab/scraperlab/scraper"
	"github.com/scraperlab/scraperlab/strategy"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("scraperlab starting",
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"defaultProvider", cfg.Providers.Default,
		"domains", len(cfg.Domains),
	)

	// ── 3. Build fetch providers ────────────────────────────────────
	reg := buildProviders(cfg.Providers)

	// ── 4. Outcome cache ────────────────────────────────────────────
	var cc *cache.Cache
	if cfg.Cache.Enabled {
		cc = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	// ── 5. Run recorder (log sink plus optional webhook) ────────────
	var recorder runlog.Recorder = runlog.SlogRecorder{}
	if cfg.Webhook.URL != "" {
		recorder = runlog.Multi{
			runlog.SlogRecorder{},
			&runlog.WebhookRecorder{URL: cfg.Webhook.URL, Secret: cfg.Webhook.Secret},
		}
		slog.Info("webhook recorder enabled", "url", cfg.Webhook.URL)
	}

	// ── 6. Metrics ──────────────────────────────────────────────────
	var metrics *scraper.Metrics
	if cfg.Metrics.Enabled {
		metrics = scraper.NewMetrics()
	}

	// ── 7. Assemble the extraction service ──────────────────────────
	svc := scraper.New(scraper.Options{
		Registry:        strategy.DefaultRegistry(),
		Providers:       reg,
		Domains:         domains.NewStaticStore(cfg.Domains),
		Cache:           cc,
		Recorder:        recorder,
		Metrics:         metrics,
		DefaultProvider: cfg.Providers.Default,
	})

	// ── 8. Setup router and start HTTP server ───────────────────────
	startTime := time.Now()
	router := api.NewRouter(svc, cfg.Server.Mode, startTime)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("scraperlab stopped")
}

// buildProviders registers every provider the configuration carries
// credentials for. Direct is always available as a fallback.
func buildProviders(cfg config.ProvidersConfig) *provider.Registry {
	providers := []provider.Provider{provider.NewDirect(cfg.Timeout)}

	if cfg.ScraperAPI.APIKey != "" {
		providers = append(providers, provider.NewScraperAPI(cfg.ScraperAPI.APIKey, cfg.Timeout))
	}
	if cfg.Oxylabs.Username != "" && cfg.Oxylabs.Password != "" {
		providers = append(providers, provider.NewOxylabs(cfg.Oxylabs.Username, cfg.Oxylabs.Password, cfg.Timeout))
	}

	return provider.NewRegistry(providers...)
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
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

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
