// Command scrape runs a single extraction from the command line and
// prints the result as JSON.
//
// Usage:
//
//	scrape -url https://www.exito.com/producto/p
//	scrape -url https://automercado.cr/buscar -type searchSpecific \
//	    -receipt "SALCHICHA SUST BEY 400 g 10.950,00"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/scraperlab/scraperlab/config"
	"github.com/scraperlab/scraperlab/domains"
	"github.com/scraperlab/scraperlab/models"
	"github.com/scraperlab/scraperlab/provider"
	"github.com/scraperlab/scraperlab/scraper"
	"github.com/scraperlab/scraperlab/strategy"
)

func main() {
	var (
		rawURL      = flag.String("url", "", "target page URL (required)")
		extractType = flag.String("type", "", "extraction type: detail, search, searchSpecific (default per site)")
		receiptLine = flag.String("receipt", "", "raw receipt line for searchSpecific extractions")
		timeout     = flag.Duration("timeout", 90*time.Second, "overall extraction timeout")
	)
	flag.Parse()

	if *rawURL == "" {
		fmt.Fprintln(os.Stderr, "scrape: -url is required")
		flag.Usage()
		os.Exit(2)
	}

	// Keep stdout clean for the JSON result.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scrape: %v\n", err)
		os.Exit(1)
	}

	providers := []provider.Provider{provider.NewDirect(cfg.Providers.Timeout)}
	if cfg.Providers.ScraperAPI.APIKey != "" {
		providers = append(providers, provider.NewScraperAPI(cfg.Providers.ScraperAPI.APIKey, cfg.Providers.Timeout))
	}
	if cfg.Providers.Oxylabs.Username != "" && cfg.Providers.Oxylabs.Password != "" {
		providers = append(providers, provider.NewOxylabs(cfg.Providers.Oxylabs.Username, cfg.Providers.Oxylabs.Password, cfg.Providers.Timeout))
	}

	svc := scraper.New(scraper.Options{
		Registry:        strategy.DefaultRegistry(),
		Providers:       provider.NewRegistry(providers...),
		Domains:         domains.NewStaticStore(cfg.Domains),
		DefaultProvider: cfg.Providers.Default,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp := svc.Extract(ctx, &models.ExtractRequest{
		URL:         *rawURL,
		Type:        models.ExtractionType(*extractType),
		ReceiptLine: *receiptLine,
		NoCache:     true,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "scrape: encode result: %v\n", err)
		os.Exit(1)
	}

	if !resp.Success {
		os.Exit(1)
	}
}
